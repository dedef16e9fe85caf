// Package calls routes "open the call dialog" requests over the event bus.
// Requesters publish; whichever dialog provider is currently mounted answers.
// An unmounted provider simply never hears the request, so there is no
// shared setter to reset and no stale reference to guard against.
package calls

import (
	"context"
	"sync"

	"leadboard_backend/internal/events"
	"leadboard_backend/internal/leads/store"
	"leadboard_backend/platform/apperr"
	"leadboard_backend/platform/logger"
	"leadboard_backend/platform/phone"
)

// Provider is a mounted call dialog. Open is invoked on the bus delivery
// goroutine and should hand off quickly.
type Provider interface {
	Open(ctx context.Context, leadID, phoneNumber string) error
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, leadID, phoneNumber string) error

func (f ProviderFunc) Open(ctx context.Context, leadID, phoneNumber string) error {
	return f(ctx, leadID, phoneNumber)
}

// Service validates call requests against the canonical store and publishes
// them. The registry side delivers to at most one mounted provider.
// registration wraps a provider so unregister can compare identities even
// when the provider itself is a func value.
type registration struct {
	provider Provider
}

type Service struct {
	mu      sync.Mutex
	current *registration

	store *store.Store
	bus   events.Bus
	log   *logger.Logger
}

func NewService(st *store.Store, bus events.Bus, log *logger.Logger) *Service {
	s := &Service{store: st, bus: bus, log: log}
	bus.Subscribe(events.CallRequested{}.EventName(), events.HandlerFunc(s.deliver))
	return s
}

// Register mounts a dialog provider, replacing any previous one, and
// returns an unregister function. Unregistering a provider that was
// already replaced is a no-op.
func (s *Service) Register(p Provider) func() {
	reg := &registration{provider: p}
	s.mu.Lock()
	s.current = reg
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		if s.current == reg {
			s.current = nil
		}
		s.mu.Unlock()
	}
}

// Request asks the mounted dialog to open for a lead. The lead must exist
// in the canonical store; its phone number is normalized to E.164 when
// possible, raw otherwise.
func (s *Service) Request(ctx context.Context, leadID string) error {
	lead, ok := s.store.Get(leadID)
	if !ok {
		return apperr.NotFound("lead not found").WithOp("calls.Request")
	}

	number := phone.NormalizeE164(lead.Phone)

	s.bus.Publish(ctx, events.CallRequested{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Phone:     number,
	})
	return nil
}

func (s *Service) deliver(ctx context.Context, e events.Event) error {
	req, ok := e.(events.CallRequested)
	if !ok {
		return nil
	}

	s.mu.Lock()
	reg := s.current
	s.mu.Unlock()

	if reg == nil {
		if s.log != nil {
			s.log.Warn("call requested with no dialog mounted", "lead_id", req.LeadID)
		}
		return nil
	}
	return reg.provider.Open(ctx, req.LeadID, req.Phone)
}
