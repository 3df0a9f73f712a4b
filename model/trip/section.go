package trip

import "strings"

// SectionKind identifies one independently revisable part of a proposal.
// The set is closed; use Kinds for exhaustive iteration in generation order.
type SectionKind string

const (
	KindRoute         SectionKind = "route"
	KindAccommodation SectionKind = "accommodation"
	KindActivities    SectionKind = "activities"
)

// Kinds returns all section kinds in their fixed generation and render order.
// Later sections may reference earlier ones, so the order is part of the contract.
func Kinds() []SectionKind {
	return []SectionKind{KindRoute, KindAccommodation, KindActivities}
}

// kindAliases maps tolerated spellings to their canonical kind.
var kindAliases = map[string]SectionKind{
	"route":          KindRoute,
	"routes":         KindRoute,
	"accommodation":  KindAccommodation,
	"accommodations": KindAccommodation,
	"activity":       KindActivities,
	"activities":     KindActivities,
}

// ParseSectionKind maps a free-form tag to a SectionKind.
func ParseSectionKind(value string) (SectionKind, bool) {
	kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(value))]
	return kind, ok
}

// Title returns the uppercase header used when rendering the section.
func (k SectionKind) Title() string {
	return strings.ToUpper(string(k))
}

// Section holds the current text of one proposal part.
type Section struct {
	Content string `json:"content"`
	// RevisionNote records the feedback that produced the current content,
	// empty for first-pass generation.
	RevisionNote string `json:"revisionNote,omitempty"`
}

// IsEmpty reports whether the section has no generated content yet.
func (s *Section) IsEmpty() bool {
	return s == nil || strings.TrimSpace(s.Content) == ""
}
