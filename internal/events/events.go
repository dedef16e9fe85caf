// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadboard_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// Invalidation kinds carried by cross-view signals.
const (
	InvalidationDeleted = "deleted"
	InvalidationUpdated = "updated"
)

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadDeleted is published when a lead is removed from the canonical store
// after the remote collection service accepted the delete.
type LeadDeleted struct {
	BaseEvent
	LeadID string `json:"leadId"`
	Kind   string `json:"kind"`
}

// NewLeadDeleted builds the invalidation signal for a removed lead.
func NewLeadDeleted(leadID string) LeadDeleted {
	return LeadDeleted{BaseEvent: NewBaseEvent(), LeadID: leadID, Kind: InvalidationDeleted}
}

func (e LeadDeleted) EventName() string { return "leads.lead.deleted" }

// LeadUpdated is published when a lead record changed in the canonical store
// (archive flag flip or reassignment). Views holding shadow copies resync on
// receipt; delivery is fire-and-forget with no replay for late subscribers.
type LeadUpdated struct {
	BaseEvent
	LeadID string `json:"leadId"`
	Kind   string `json:"kind"`
}

// NewLeadUpdated builds the invalidation signal for a changed lead record.
func NewLeadUpdated(leadID string) LeadUpdated {
	return LeadUpdated{BaseEvent: NewBaseEvent(), LeadID: leadID, Kind: InvalidationUpdated}
}

func (e LeadUpdated) EventName() string { return "leads.lead.updated" }

// StoreRefreshed is published after a bulk refetch replaced the canonical
// store contents.
type StoreRefreshed struct {
	BaseEvent
	LeadCount int `json:"leadCount"`
}

func (e StoreRefreshed) EventName() string { return "leads.store.refreshed" }

// =============================================================================
// Call Dialog Events
// =============================================================================

// CallRequested is published when a component asks the shared call dialog to
// open for a lead. This replaces the old module-level setter bridge: any
// mounted dialog provider subscribes, unmounted providers simply never hear it.
type CallRequested struct {
	BaseEvent
	LeadID string `json:"leadId"`
	Phone  string `json:"phone,omitempty"`
}

func (e CallRequested) EventName() string { return "calls.call.requested" }
