package composer

import (
	"fmt"
	"strings"

	"github.com/itinera/itinera/model/trip"
)

// Rendered proposal format: a banner with the trip parameters, each section
// under its uppercase header, a fixed-width rule between blocks and a
// trailing instruction line. The format is machine-parseable; Extract
// round-trips the section bodies. The rendering is for display only —
// stages exchange the structured state, never re-parse the prose.

const (
	// RuleLine separates the rendered blocks.
	RuleLine = "========================================================================"

	// InstructionLine tells the human how to decide.
	InstructionLine = `Reply "approve" to accept, or "reject: <reason>" to request changes.`
)

// Header returns the rendered header line for a section kind.
func Header(kind trip.SectionKind) string {
	return kind.Title() + ":"
}

// Render composes the proposal document from the current section store.
func Render(state *trip.ProposalState) string {
	request := state.Request
	var b strings.Builder
	b.WriteString(RuleLine + "\n")
	fmt.Fprintf(&b, "TRIP PROPOSAL: %s to %s\n", request.StartLocation, request.Destination)
	fmt.Fprintf(&b, "Duration: %d days\n", request.DurationDays)
	fmt.Fprintf(&b, "Preferences: %s\n", request.Preferences)
	for _, kind := range trip.Kinds() {
		b.WriteString(RuleLine + "\n")
		b.WriteString(Header(kind) + "\n")
		b.WriteString(state.Content(kind) + "\n")
		if section, ok := state.Sections[kind]; ok && section.RevisionNote != "" {
			fmt.Fprintf(&b, "(revised: %s)\n", section.RevisionNote)
		}
	}
	b.WriteString(RuleLine + "\n")
	b.WriteString(InstructionLine + "\n")
	return b.String()
}

// Extract re-parses a rendered proposal back into its section texts. It is
// the inverse of Render for trimmed section content and exists for the
// degraded mode where a stage only receives the rendered artifact.
func Extract(rendered string) (map[trip.SectionKind]string, error) {
	sections := make(map[trip.SectionKind]string)
	lines := strings.Split(rendered, "\n")

	var current trip.SectionKind
	var body []string
	flush := func() {
		if current == "" {
			return
		}
		content := strings.TrimSpace(strings.Join(body, "\n"))
		// strip the trailing revision marker, it is display-only
		if idx := strings.LastIndex(content, "\n(revised: "); idx >= 0 && strings.HasSuffix(content, ")") {
			content = strings.TrimSpace(content[:idx])
		}
		sections[current] = content
		current, body = "", nil
	}

	headers := make(map[string]trip.SectionKind, 3)
	for _, kind := range trip.Kinds() {
		headers[Header(kind)] = kind
	}
	for _, line := range lines {
		switch {
		case line == RuleLine:
			flush()
		case headers[line] != "":
			flush()
			current = headers[line]
		case current != "":
			body = append(body, line)
		}
	}
	flush()

	for _, kind := range trip.Kinds() {
		if _, ok := sections[kind]; !ok {
			return nil, fmt.Errorf("rendered proposal is missing the %s section", kind)
		}
	}
	return sections, nil
}
