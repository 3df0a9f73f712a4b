// Package revision exposes feedback-driven proposal revision as a stage
// action.
package revision

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/itinera/itinera/model/trip"
	"github.com/itinera/itinera/model/types"
	"github.com/itinera/itinera/service/composer"
	"github.com/itinera/itinera/service/gate"
	"github.com/itinera/itinera/service/generator"
	"github.com/itinera/itinera/service/revisor"
	"github.com/itinera/itinera/service/router"
	"github.com/itinera/itinera/service/stage"
)

const name = "revision"

// Service revises the sections a piece of rejection feedback targets.
type Service struct {
	revisor *revisor.Service
}

// New creates the revision action over the supplied revisor.
func New(rev *revisor.Service) *Service {
	return &Service{revisor: rev}
}

// Name returns the service name.
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods.
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "revise",
			Description: "routes rejection feedback to its sections, revises them and re-renders the proposal",
			Input:       reflect.TypeOf(&stage.Input{}),
			Output:      reflect.TypeOf(&stage.Output{}),
		},
	}
}

// Method returns the executable for a method name.
func (s *Service) Method(name string) (types.Executable, error) {
	switch name {
	case "revise":
		return s.revise, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

// revise classifies the feedback before any state transition so
// unclassifiable feedback leaves the proposal pending. Each targeted
// section is revised against the same unrevised baseline, then all results
// are applied and the proposal re-rendered.
func (s *Service) revise(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*stage.Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*stage.Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}

	state := input.Session.State
	feedback := input.Payload
	targets, err := router.Classify(feedback)
	if err != nil {
		if errors.Is(err, router.ErrUnclassifiable) {
			return stage.NewFailure(stage.CodeUnclassifiableFeedback, "", err)
		}
		return err
	}

	if err := gate.Reject(state, feedback); err != nil {
		return err
	}
	if len(targets) == 1 {
		state.LastFeedback.Target = targets[0].Kind
	}

	baseline := state.Clone()
	type result struct {
		kind    trip.SectionKind
		content string
	}
	var results []result
	for _, target := range targets {
		content, _, revErr := s.revisor.Revise(ctx, target.Kind, baseline, target.Instruction)
		if revErr != nil {
			gate.AbortRevision(state)
			var stepErr *generator.StepError
			if errors.As(revErr, &stepErr) {
				return stage.NewFailure(stage.CodeGenerationFailure, stepErr.Kind, revErr)
			}
			return fmt.Errorf("revise %s section: %w", target.Kind, revErr)
		}
		results = append(results, result{kind: target.Kind, content: content})
	}
	for _, r := range results {
		state.SetSection(r.kind, r.content, feedback)
	}

	if err := gate.CompleteRevision(state); err != nil {
		return err
	}
	output.Artifact = composer.Render(state)
	return nil
}
