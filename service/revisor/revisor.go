// Package revisor regenerates a single proposal section against an
// instruction, leaving every other section untouched. Revise is pure with
// respect to the baseline state: callers apply the returned content
// themselves, which lets multi-section feedback run each revision against
// the same unrevised baseline before merging.
package revisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/itinera/itinera/model/trip"
	"github.com/itinera/itinera/service/generator"
)

// Service revises sections through a content generator.
type Service struct {
	generator generator.Service
}

// New returns a revisor backed by the supplied generator.
func New(gen generator.Service) *Service {
	return &Service{generator: gen}
}

// Revise produces revised content for one section of the baseline proposal,
// plus a unified diff against the previous content for audit display. The
// baseline is read only; an empty target section is an error since there is
// nothing to revise.
func (s *Service) Revise(ctx context.Context, kind trip.SectionKind, baseline *trip.ProposalState, instruction string) (string, string, error) {
	previous := baseline.Content(kind)
	if previous == "" {
		return "", "", fmt.Errorf("cannot revise empty %s section", kind)
	}

	prior := map[trip.SectionKind]string{}
	for _, other := range trip.Kinds() {
		if other == kind {
			continue
		}
		if content := baseline.Content(other); content != "" {
			prior[other] = content
		}
	}

	content, err := s.generator.Generate(ctx, &generator.ContentRequest{
		Kind:        kind,
		Request:     baseline.Request,
		Prior:       prior,
		Previous:    previous,
		Instruction: instruction,
	})
	if err != nil {
		return "", "", generator.NewStepError(kind, err)
	}
	content = strings.TrimSpace(content)

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(previous),
		B:        difflib.SplitLines(content),
		FromFile: "previous",
		ToFile:   "revised",
		Context:  2,
	})
	if err != nil {
		return "", "", fmt.Errorf("diff %s section: %w", kind, err)
	}
	return content, diff, nil
}
