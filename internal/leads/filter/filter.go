// Package filter applies structured, AND-composed criteria to lead
// collections. Every view renders through the same Apply so the table, board
// and list can never disagree on what a filter means.
package filter

import (
	"time"

	"leadboard_backend/internal/leads/domain"
)

// Criteria is an immutable filter description. A zero-valued field imposes no
// constraint on its dimension.
type Criteria struct {
	Department string                 `json:"department,omitempty"`
	Assignee   string                 `json:"assignee,omitempty"`
	Status     domain.CanonicalStatus `json:"status,omitempty"`
	Quality    domain.Quality         `json:"quality,omitempty"`
	Source     string                 `json:"source,omitempty"`
	DateFrom   time.Time              `json:"dateFrom,omitempty"`
	DateTo     time.Time              `json:"dateTo,omitempty"`
}

// IsZero reports whether the criteria constrains nothing.
func (c Criteria) IsZero() bool {
	return c.Department == "" && c.Assignee == "" && c.Status == "" &&
		c.Quality == "" && c.Source == "" && c.DateFrom.IsZero() && c.DateTo.IsZero()
}

// Apply returns the leads matching every set criterion, preserving input
// order. The input slice is never mutated; with zero criteria the result
// holds the same elements in the same order.
func Apply(leads []domain.Lead, c Criteria) []domain.Lead {
	out := make([]domain.Lead, 0, len(leads))
	for _, lead := range leads {
		if Matches(lead, c) {
			out = append(out, lead)
		}
	}
	return out
}

// Matches evaluates the criteria against one lead. Predicates are
// independent: each set field must hold, unset fields always hold.
func Matches(lead domain.Lead, c Criteria) bool {
	if c.IsZero() {
		return true
	}
	if c.Department != "" && lead.Department != c.Department {
		return false
	}
	if c.Assignee != "" && lead.AssigneeID != c.Assignee {
		return false
	}
	if c.Status != "" && lead.Status() != c.Status {
		return false
	}
	if c.Quality != "" && domain.Classify(lead) != c.Quality {
		return false
	}
	if c.Source != "" && lead.Source != c.Source {
		return false
	}
	if !c.DateFrom.IsZero() || !c.DateTo.IsZero() {
		// A lead without a timestamp cannot satisfy a date constraint.
		if lead.CreatedAt.IsZero() {
			return false
		}
		if !c.DateFrom.IsZero() && lead.CreatedAt.Before(startOfDay(c.DateFrom)) {
			return false
		}
		if !c.DateTo.IsZero() && lead.CreatedAt.After(endOfDay(c.DateTo)) {
			return false
		}
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
