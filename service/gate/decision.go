package gate

import "strings"

// Decision is the parsed outcome of a human reply to a pending proposal.
type Decision int

const (
	DecisionUnknown Decision = iota
	DecisionApprove
	DecisionReject
)

// approvals are matched against the whole (normalized) reply.
var approvals = map[string]bool{
	"approve": true, "approved": true, "yes": true, "ok": true,
	"okay": true, "lgtm": true, "looks good": true, "go ahead": true,
	"proceed": true, "accept": true, "accepted": true, "confirm": true,
	"confirmed": true,
}

// rejections may stand alone or prefix a reason, either as
// "reject: <reason>" or "reject <reason>".
var rejections = []string{
	"reject", "rejected", "no", "deny", "revise", "change", "modify", "fix",
}

// ParseDecision classifies a free-text reply. For rejections the returned
// reason is the text following the keyword, preserved in its original case
// for display; an unrecognized reply yields DecisionUnknown so the caller
// can ask for an explicit approve/reject instead of guessing.
func ParseDecision(text string) (Decision, string) {
	trimmed := strings.TrimSpace(text)
	normalized := strings.ToLower(strings.TrimRight(trimmed, ".!"))

	if approvals[normalized] {
		return DecisionApprove, ""
	}
	for _, keyword := range rejections {
		if normalized == keyword {
			return DecisionReject, ""
		}
		for _, sep := range []string{":", " "} {
			if strings.HasPrefix(normalized, keyword+sep) {
				reason := strings.TrimSpace(strings.TrimPrefix(trimmed[len(keyword):], sep))
				return DecisionReject, reason
			}
		}
	}
	return DecisionUnknown, ""
}
