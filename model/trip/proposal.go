package trip

// Status represents the approval-gate state of a proposal.
type Status string

const (
	StatusEmpty           Status = "empty"
	StatusGenerating      Status = "generating"
	StatusPendingApproval Status = "pendingApproval"
	StatusRevising        Status = "revising"
	StatusFinalized       Status = "finalized"
)

// Feedback records the most recent rejection feedback and, once routed,
// the section it targeted.
type Feedback struct {
	Text   string      `json:"text"`
	Target SectionKind `json:"target,omitempty"`
}

// ProposalState is the single mutable unit of workflow state for one session.
// It is threaded explicitly through every stage call; stages never share it
// through globals.
type ProposalState struct {
	Request      TripRequest               `json:"request"`
	Sections     map[SectionKind]*Section  `json:"sections"`
	Status       Status                    `json:"status"`
	LastFeedback *Feedback                 `json:"lastFeedback,omitempty"`
	// Final holds the frozen rendered proposal once the status reaches
	// StatusFinalized; it is never mutated afterwards.
	Final string `json:"final,omitempty"`
}

// NewProposalState creates an empty proposal for the supplied request.
func NewProposalState(request TripRequest) *ProposalState {
	return &ProposalState{
		Request:  request,
		Sections: make(map[SectionKind]*Section),
		Status:   StatusEmpty,
	}
}

// Section returns the section of the given kind, creating it when absent.
func (p *ProposalState) Section(kind SectionKind) *Section {
	if p.Sections == nil {
		p.Sections = make(map[SectionKind]*Section)
	}
	section, ok := p.Sections[kind]
	if !ok {
		section = &Section{}
		p.Sections[kind] = section
	}
	return section
}

// SetSection overwrites the content of exactly one section. All other
// sections are left untouched.
func (p *ProposalState) SetSection(kind SectionKind, content, revisionNote string) {
	section := p.Section(kind)
	section.Content = content
	section.RevisionNote = revisionNote
}

// Content returns the current text of a section, empty when not generated yet.
func (p *ProposalState) Content(kind SectionKind) string {
	if section, ok := p.Sections[kind]; ok {
		return section.Content
	}
	return ""
}

// Contents returns the non-empty section texts keyed by kind.
func (p *ProposalState) Contents() map[SectionKind]string {
	ret := make(map[SectionKind]string, len(p.Sections))
	for kind, section := range p.Sections {
		if !section.IsEmpty() {
			ret[kind] = section.Content
		}
	}
	return ret
}

// Complete reports whether all three sections hold generated content,
// a precondition for entering StatusPendingApproval.
func (p *ProposalState) Complete() bool {
	for _, kind := range Kinds() {
		if p.Sections[kind].IsEmpty() {
			return false
		}
	}
	return true
}

// Clone creates a deep copy so the caller can mutate it without affecting
// the original instance.
func (p *ProposalState) Clone() *ProposalState {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Sections = make(map[SectionKind]*Section, len(p.Sections))
	for kind, section := range p.Sections {
		copied := *section
		clone.Sections[kind] = &copied
	}
	if p.LastFeedback != nil {
		feedback := *p.LastFeedback
		clone.LastFeedback = &feedback
	}
	return &clone
}
