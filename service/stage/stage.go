// Package stage runs proposal work on the far side of a task queue. A turn
// that needs generation or revision is published as a TaskRequest; a worker
// pool consumes requests, resolves the session, dispatches to the named
// action service and publishes a TaskResponse. Queues may be in-process or
// filesystem backed, so the worker can live in a separate process.
package stage

import (
	"errors"

	"github.com/itinera/itinera/model/trip"
)

// Task lifecycle statuses reported back to the caller.
const (
	StatusWorking   = "working"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Failure codes carried across the queue so the caller can distinguish
// recoverable conditions without parsing error strings.
const (
	CodeUnclassifiableFeedback = "unclassifiable_feedback"
	CodeGenerationFailure      = "generation_failure"
)

// ErrTimeout is returned by the client when no response arrives in time.
var ErrTimeout = errors.New("stage task timed out")

// TaskRequest asks a stage worker to run one action method against a
// session. SessionToken may be empty when the token travels in-band inside
// the payload instead.
type TaskRequest struct {
	ID           string `json:"id"`
	SessionToken string `json:"sessionToken,omitempty"`
	OwnerID      string `json:"ownerId,omitempty"`
	Service      string `json:"service"`
	Method       string `json:"method"`
	Payload      string `json:"payload"`
}

// TaskResponse reports the outcome of a TaskRequest.
type TaskResponse struct {
	TaskID    string `json:"taskId"`
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	Artifact  string `json:"artifact,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
	Section   string `json:"section,omitempty"`
}

// Input is the envelope handed to every action method: the resolved
// session plus the request payload with any session marker stripped.
type Input struct {
	Session *trip.Session
	Payload string
}

// Output is the envelope action methods fill in.
type Output struct {
	Artifact string
}

// Failure lets an action attach a failure code and affected section to the
// error it returns, which the worker copies onto the TaskResponse.
type Failure struct {
	Code    string
	Section trip.SectionKind
	Err     error
}

func (f *Failure) Error() string { return f.Err.Error() }

func (f *Failure) Unwrap() error { return f.Err }

// NewFailure wraps err with a response code and the section it concerns.
func NewFailure(code string, section trip.SectionKind, err error) *Failure {
	return &Failure{Code: code, Section: section, Err: err}
}
