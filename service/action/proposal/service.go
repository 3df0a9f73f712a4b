// Package proposal exposes proposal generation as a stage action.
package proposal

import (
	"context"
	"errors"
	"reflect"

	"github.com/itinera/itinera/model/trip"
	"github.com/itinera/itinera/model/types"
	"github.com/itinera/itinera/service/composer"
	"github.com/itinera/itinera/service/gate"
	"github.com/itinera/itinera/service/generator"
	"github.com/itinera/itinera/service/session"
	"github.com/itinera/itinera/service/stage"
)

const name = "proposal"

// Service generates a full trip proposal for a session and submits it for
// approval.
type Service struct {
	composer *composer.Service
}

// New creates the proposal action over the supplied composer.
func New(comp *composer.Service) *Service {
	return &Service{composer: comp}
}

// Name returns the service name.
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods.
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "generate",
			Description: "generates all proposal sections and submits the proposal for approval",
			Input:       reflect.TypeOf(&stage.Input{}),
			Output:      reflect.TypeOf(&stage.Output{}),
		},
	}
}

// Method returns the executable for a method name.
func (s *Service) Method(name string) (types.Executable, error) {
	switch name {
	case "generate":
		return s.generate, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

// generate fills every empty section in pipeline order, then moves the
// proposal to pending approval and renders it. A rerun after a partial
// failure resumes at the failing section.
func (s *Service) generate(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*stage.Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*stage.Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}

	state := input.Session.State
	if state.Status == trip.StatusEmpty {
		state.Request = session.ParseTripRequest(input.Payload)
	}
	if err := s.composer.GenerateAll(ctx, state); err != nil {
		var stepErr *generator.StepError
		if errors.As(err, &stepErr) {
			return stage.NewFailure(stage.CodeGenerationFailure, stepErr.Kind, err)
		}
		return err
	}
	if err := gate.Submit(state); err != nil {
		return err
	}
	output.Artifact = composer.Render(state)
	return nil
}
