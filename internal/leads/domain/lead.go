// Package domain provides core business rules for the leads bounded context:
// the lead model, status normalization, stage matching and quality derivation.
package domain

import (
	"strings"
	"time"
)

// NextAction describes the agreed follow-up for a lead.
type NextAction struct {
	Type        string `json:"type,omitempty"`
	Status      string `json:"status,omitempty"`
	Description string `json:"description,omitempty"`
}

// Lead is the central entity of the pipeline. The remote collection service
// owns the record; this model is the canonical in-memory projection of it.
type Lead struct {
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Email      string     `json:"email,omitempty"`
	RawStatus  string     `json:"status"`
	Source     string     `json:"source,omitempty"`
	SubSource  string     `json:"subSource,omitempty"`
	Department string     `json:"department,omitempty"`
	AssigneeID string     `json:"assigneeId,omitempty"`
	NextAction NextAction `json:"nextAction"`
	Archived   bool       `json:"archived,omitempty"`
	CreatedAt  time.Time  `json:"createdAt,omitempty"`

	// Optional appointment slot; zero AppointmentAt means none booked.
	AppointmentAt   time.Time `json:"appointmentAt,omitempty"`
	AppointmentSlot string    `json:"appointmentSlot,omitempty"`
}

// Status returns the canonical status for the lead's raw status string.
func (l Lead) Status() CanonicalStatus {
	return NormalizeStatus(l.RawStatus)
}

// Active reports whether the lead participates in active projections.
func (l Lead) Active() bool {
	return !l.Archived
}

// idPrefixes are stylistic prefixes the remote service attaches to lead ids.
// "#123", "LN-123", "LD-123" and "123" all identify the same lead.
var idPrefixes = []string{"#", "LN-", "LD-"}

// NormalizeLeadID strips stylistic id prefixes so every spelling of an id
// compares equal. The bare id is returned trimmed.
func NormalizeLeadID(id string) string {
	trimmed := strings.TrimSpace(id)
	for _, prefix := range idPrefixes {
		if rest, ok := strings.CutPrefix(trimmed, prefix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return trimmed
}

// SameLead reports whether two id spellings identify the same lead.
func SameLead(a, b string) bool {
	return NormalizeLeadID(a) == NormalizeLeadID(b)
}
