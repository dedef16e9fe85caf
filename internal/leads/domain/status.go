package domain

import "strings"

// CanonicalStatus is the finite-vocabulary status key a lead classifies into,
// independent of how the raw status was spelled.
type CanonicalStatus string

const (
	StatusNew             CanonicalStatus = "new"
	StatusContacted       CanonicalStatus = "contacted"
	StatusFollowUp        CanonicalStatus = "follow_up"
	StatusAppointment     CanonicalStatus = "appointment"
	StatusConverted       CanonicalStatus = "converted"
	StatusLost            CanonicalStatus = "lost"
	StatusCycleConversion CanonicalStatus = "cycle_conversion"
)

// statusSynonyms maps key-form raw statuses to their canonical status.
// Keys are produced by statusKey, so casing and separator variants of the
// same phrase share one entry.
var statusSynonyms = map[string]CanonicalStatus{
	"new":                StatusNew,
	"new_lead":           StatusNew,
	"fresh":              StatusNew,
	"contacted":          StatusContacted,
	"attempted_contact":  StatusContacted,
	"qualified":          StatusContacted,
	"in_contact":         StatusContacted,
	"follow_up":          StatusFollowUp,
	"follow_ups":         StatusFollowUp,
	"followup":           StatusFollowUp,
	"followups":          StatusFollowUp,
	"appointment":        StatusAppointment,
	"appointment_booked": StatusAppointment,
	"demo":               StatusAppointment,
	"demo_scheduled":     StatusAppointment,
	"presentation":       StatusAppointment,
	"converted":          StatusConverted,
	"closed":             StatusConverted,
	"closed_won":         StatusConverted,
	"won":                StatusConverted,
	"registered":         StatusConverted,
	"lost":               StatusLost,
	"closed_lost":        StatusLost,
	"dead":               StatusLost,
	"not_interested":     StatusLost,
	"cycle_conversion":   StatusCycleConversion,
	"cycle":              StatusCycleConversion,
}

// NormalizeStatus maps an arbitrary raw status string to a canonical status.
// It is total and deterministic: any input outside the known synonym table,
// including the empty string, maps to StatusNew. Misclassifying an unknown
// lead as new keeps it visible and actionable; dropping it would not.
func NormalizeStatus(raw string) CanonicalStatus {
	key := statusKey(raw)
	if key == "" {
		return StatusNew
	}
	if status, ok := statusSynonyms[key]; ok {
		return status
	}
	return StatusNew
}

// statusKey lower-cases the input and collapses runs of whitespace, hyphens
// and underscores into single underscores. ASCII-only lowering avoids
// locale-dependent casing surprises.
func statusKey(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	pendingSep := false
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r == ' ' || r == '\t' || r == '-' || r == '_':
			pendingSep = true
		default:
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
