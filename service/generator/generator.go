// Package generator defines the external text-generation capability the
// workflow depends on. The engine treats it as opaque and fallible: a
// structured request in, free-form text out, with no determinism or latency
// guarantees.
package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/itinera/itinera/model/trip"
)

// ContentRequest is the structured prompt for generating or revising one
// proposal section.
type ContentRequest struct {
	Kind    trip.SectionKind `json:"kind"`
	Request trip.TripRequest `json:"request"`
	// Prior holds already-generated sections so later steps can stay
	// consistent with earlier ones (accommodation near the route, etc.).
	Prior map[trip.SectionKind]string `json:"prior,omitempty"`
	// Previous carries the immediately preceding content of Kind on a
	// revision, biasing generation toward a minimal targeted diff.
	Previous    string `json:"previous,omitempty"`
	Instruction string `json:"instruction,omitempty"`
}

// IsRevision reports whether the request revises existing content.
func (r *ContentRequest) IsRevision() bool {
	return r.Instruction != ""
}

// Service is the generator capability consumed by the composer and revisor.
type Service interface {
	Generate(ctx context.Context, request *ContentRequest) (string, error)
}

// Settings configures the concrete generator implementation.
type Settings struct {
	Provider string `yaml:"provider" json:"provider"`
	Model    string `yaml:"model" json:"model"`
	APIKey   string `yaml:"apiKey" json:"apiKey"`
	BaseURL  string `yaml:"baseUrl" json:"baseUrl"`
}

// New builds a generator from settings; an empty or "mock" provider yields
// the deterministic mock used for local runs and tests.
func New(settings *Settings) (Service, error) {
	if settings == nil || settings.Provider == "" || strings.EqualFold(settings.Provider, "mock") {
		return &Mock{}, nil
	}
	switch strings.ToLower(settings.Provider) {
	case "openai":
		return NewOpenAI(settings)
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s", settings.Provider)
	}
}

// StepError identifies the section whose generation step failed; the
// pipeline halts at the failing step and remains resumable there.
type StepError struct {
	Kind trip.SectionKind
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("generate %s section: %v", e.Kind, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// NewStepError wraps err with the failing section kind.
func NewStepError(kind trip.SectionKind, err error) *StepError {
	return &StepError{Kind: kind, Err: err}
}
