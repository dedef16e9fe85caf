package domain

import "strings"

// Quality is the derived three-level engagement tag. It is recomputed per
// read and never stored on the lead record.
type Quality string

const (
	QualityHot  Quality = "Hot"
	QualityWarm Quality = "Warm"
	QualityCold Quality = "Cold"
)

// Classify derives the quality tag from assignment and next-action state.
// Evaluation order matters and the first match wins:
//   - assignee set, next-action description present and pending: Hot
//   - one or two of {assignee set, next-action present}: Warm
//   - neither: Cold
func Classify(lead Lead) Quality {
	hasAssignee := lead.AssigneeID != ""
	hasNextAction := strings.TrimSpace(lead.NextAction.Description) != ""
	isPending := strings.EqualFold(lead.NextAction.Status, "pending")

	if hasAssignee && hasNextAction && isPending {
		return QualityHot
	}
	if hasAssignee || hasNextAction {
		return QualityWarm
	}
	return QualityCold
}
