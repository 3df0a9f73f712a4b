// Package composer runs the sequential generation pipeline and renders the
// proposal into its fixed human-readable document format.
package composer

import (
	"context"
	"strings"

	"github.com/itinera/itinera/model/trip"
	"github.com/itinera/itinera/service/generator"
	"github.com/itinera/itinera/tracing"
)

// Service generates all proposal sections through the generator capability.
type Service struct {
	generator generator.Service
}

// New creates a composer backed by the supplied generator.
func New(gen generator.Service) *Service {
	return &Service{generator: gen}
}

// GenerateAll runs the generation steps in fixed order: route,
// accommodation, activities. Each successful step is written into the
// section store immediately so a later failure never loses earlier
// progress; sections that already hold content are skipped, which makes
// the pipeline resumable at the failing step. The first failure halts the
// pipeline with a StepError naming the failed section and leaves the
// status at StatusGenerating.
func (s *Service) GenerateAll(ctx context.Context, state *trip.ProposalState) (err error) {
	ctx, span := tracing.StartSpan(ctx, "composer.GenerateAll", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	state.Status = trip.StatusGenerating
	for _, kind := range trip.Kinds() {
		if !state.Sections[kind].IsEmpty() {
			continue
		}
		content, genErr := s.generator.Generate(ctx, &generator.ContentRequest{
			Kind:    kind,
			Request: state.Request,
			Prior:   state.Contents(),
		})
		if genErr != nil {
			err = generator.NewStepError(kind, genErr)
			return err
		}
		state.SetSection(kind, strings.TrimSpace(content), "")
	}
	return nil
}
