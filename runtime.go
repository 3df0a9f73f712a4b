package itinera

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/itinera/itinera/model/trip"
	"github.com/itinera/itinera/service/composer"
	"github.com/itinera/itinera/service/gate"
	"github.com/itinera/itinera/service/memory"
	"github.com/itinera/itinera/service/session"
	"github.com/itinera/itinera/service/stage"
	"github.com/itinera/itinera/tracing"
)

// Runtime drives the proposal workflow turn by turn.
type Runtime struct {
	sessions     *session.Manager
	processor    *stage.Processor
	client       *stage.Client
	memoryStore  memory.Store
	memoryPolicy memory.Policy
}

// Turn is the outcome of one conversational turn.
type Turn struct {
	SessionID string
	Status    trip.Status
	Reply     string
}

// Start launches the stage workers and the response consumer.
func (r *Runtime) Start(ctx context.Context) error {
	r.processor.Start(ctx)
	r.client.Start(ctx)
	return nil
}

// Shutdown stops the runtime and releases the memory store.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.client.Shutdown()
	r.processor.Shutdown()
	if r.memoryStore != nil {
		return r.memoryStore.Close()
	}
	return nil
}

// HandleTurn processes one user turn against a session. An empty token
// starts a new session unless the text carries an in-band session marker.
// Turns against the same session run one at a time.
func (r *Runtime) HandleTurn(ctx context.Context, token, text string) (turn *Turn, err error) {
	ctx, span := tracing.StartSpan(ctx, "runtime.HandleTurn", "SERVER")
	defer func() { tracing.EndSpan(span, err) }()

	if token == "" {
		token, text = session.ExtractToken(text)
	}
	aSession, err := r.sessions.Resolve(ctx, token, "")
	if err != nil {
		return nil, err
	}
	unlock := r.sessions.Lock(aSession.ID)
	defer unlock()

	// reload under the lock so this turn sees the previous turn's writes
	aSession, err = r.sessions.Resolve(ctx, aSession.ID, aSession.OwnerID)
	if err != nil {
		return nil, err
	}
	span.WithAttributes(map[string]string{"session.id": aSession.ID})

	state := aSession.State
	if state.Status == trip.StatusRevising {
		// a previous turn died mid-revision; fall back to the pending
		// proposal and let this turn decide again
		gate.AbortRevision(state)
	}

	switch state.Status {
	case trip.StatusEmpty, trip.StatusGenerating:
		// a decision needs a pending proposal; there is nothing to approve
		// or reject yet
		if decision, _ := gate.ParseDecision(text); decision != gate.DecisionUnknown {
			err = fmt.Errorf("session %s: %w", aSession.ID, gate.ErrNoPendingProposal)
			return nil, err
		}
		if state.Status == trip.StatusEmpty && isRecallRequest(text) {
			return r.recallTurn(ctx, aSession)
		}
		return r.dispatch(ctx, aSession, "proposal", "generate", text)

	case trip.StatusPendingApproval:
		decision, reason := gate.ParseDecision(text)
		switch decision {
		case gate.DecisionApprove:
			rendered := composer.Render(state)
			if err = gate.Approve(state, rendered); err != nil {
				return nil, err
			}
			if err = r.sessions.Persist(ctx, aSession); err != nil {
				return nil, err
			}
			r.remember(ctx, aSession)
			return &Turn{
				SessionID: aSession.ID,
				Status:    state.Status,
				Reply:     "Trip approved. Final itinerary:\n\n" + state.Final,
			}, nil
		case gate.DecisionReject:
			if reason == "" {
				return &Turn{
					SessionID: aSession.ID,
					Status:    state.Status,
					Reply:     "What should change? Tell me which part to revise, e.g. \"reject: need cheaper hotels\".",
				}, nil
			}
			return r.dispatch(ctx, aSession, "revision", "revise", reason)
		default:
			return &Turn{
				SessionID: aSession.ID,
				Status:    state.Status,
				Reply:     "I didn't catch a decision. " + composer.InstructionLine,
			}, nil
		}

	case trip.StatusFinalized:
		// a finalized proposal is frozen; decisions against it error, a
		// fresh trip request starts a new session
		if decision, _ := gate.ParseDecision(text); decision != gate.DecisionUnknown {
			err = fmt.Errorf("session %s: %w", aSession.ID, gate.ErrNoPendingProposal)
			return nil, err
		}
		fresh, freshErr := r.sessions.Resolve(ctx, "", aSession.OwnerID)
		if freshErr != nil {
			return nil, freshErr
		}
		return r.dispatch(ctx, fresh, "proposal", "generate", text)

	default:
		err = fmt.Errorf("session %s in unexpected status %s", aSession.ID, state.Status)
		return nil, err
	}
}

// dispatch runs a stage task for the session and shapes the reply from its
// response. The session is reloaded afterwards since the worker persists
// its own copy of the state.
func (r *Runtime) dispatch(ctx context.Context, aSession *trip.Session, service, method, payload string) (*Turn, error) {
	response, err := r.client.Call(ctx, &stage.TaskRequest{
		SessionToken: aSession.ID,
		OwnerID:      aSession.OwnerID,
		Service:      service,
		Method:       method,
		Payload:      payload,
	})
	if err != nil {
		if errors.Is(err, stage.ErrTimeout) {
			return nil, fmt.Errorf("%s.%s for session %s is taking longer than expected; the session was saved, send another message to resume: %w", service, method, aSession.ID, err)
		}
		return nil, fmt.Errorf("%s.%s for session %s: %w", service, method, aSession.ID, err)
	}
	reloaded, err := r.sessions.Resolve(ctx, aSession.ID, aSession.OwnerID)
	if err != nil {
		return nil, err
	}

	if response.Status == stage.StatusFailed {
		if response.Code == stage.CodeUnclassifiableFeedback {
			return &Turn{
				SessionID: reloaded.ID,
				Status:    reloaded.State.Status,
				Reply:     "Please tell me which part to change: route, accommodation or activities.",
			}, nil
		}
		if response.Code == stage.CodeGenerationFailure {
			return nil, fmt.Errorf("generation failed at the %s section, try again to resume: %s", response.Section, response.Error)
		}
		return nil, fmt.Errorf("%s.%s failed: %s", service, method, response.Error)
	}

	r.remember(ctx, reloaded)
	return &Turn{
		SessionID: reloaded.ID,
		Status:    reloaded.State.Status,
		Reply:     response.Artifact,
	}, nil
}

func (r *Runtime) remember(ctx context.Context, aSession *trip.Session) {
	if r.memoryStore == nil || !r.memoryPolicy.ShouldPersist(aSession.State.Status) {
		return
	}
	if err := r.memoryStore.AddSessionToMemory(ctx, aSession); err != nil {
		log.Printf("memory: add session %s: %v", aSession.ID, err)
	}
}

// recallPhrases mark an intake turn as a memory lookup rather than a new
// trip request.
var recallPhrases = []string{
	"show my plan", "show my plans", "show my trip", "show my trips",
	"my past trips", "my previous trips", "what did we plan",
}

func isRecallRequest(text string) bool {
	normalized := strings.ToLower(text)
	for _, phrase := range recallPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	return false
}

func (r *Runtime) recallTurn(ctx context.Context, aSession *trip.Session) (*Turn, error) {
	facts, err := r.Recall(ctx, aSession.OwnerID, "")
	if err != nil {
		return nil, err
	}
	reply := "No remembered trips yet."
	if len(facts) > 0 {
		var b strings.Builder
		b.WriteString("Remembered trips:\n")
		for _, fact := range facts {
			b.WriteString("- " + fact.Summary + "\n")
		}
		reply = strings.TrimRight(b.String(), "\n")
	}
	return &Turn{SessionID: aSession.ID, Status: aSession.State.Status, Reply: reply}, nil
}

// Recall searches long-term memory for past trips.
func (r *Runtime) Recall(ctx context.Context, ownerID, query string) ([]*memory.Fact, error) {
	if r.memoryStore == nil {
		return nil, nil
	}
	return r.memoryStore.SearchMemory(ctx, ownerID, query)
}

// Session returns the session for an ID.
func (r *Runtime) Session(ctx context.Context, id string) (*trip.Session, error) {
	return r.sessions.Resolve(ctx, id, "")
}
