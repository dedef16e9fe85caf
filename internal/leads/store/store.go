// Package store holds the canonical in-memory lead collection, the single
// source of truth every view projects from. The only writers are the bulk
// fetch path and the mutation coordinator's success handlers; view-local
// state is never authoritative.
package store

import (
	"context"
	"sort"
	"sync"

	"leadboard_backend/internal/events"
	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/internal/leads/remote"
	"leadboard_backend/platform/logger"

	"golang.org/x/sync/singleflight"
)

// Subscriber receives the full post-change snapshot. Callbacks run outside
// the store lock and must not call back into mutating store methods.
type Subscriber func(snapshot []domain.Lead)

// Store is the canonical lead collection.
type Store struct {
	mu    sync.RWMutex
	leads map[string]domain.Lead
	order map[string]int // arrival order, stable across upserts
	next  int

	subMu sync.Mutex
	subs  map[int]Subscriber
	subID int

	remote  remote.API
	bus     events.Bus
	log     *logger.Logger
	refresh singleflight.Group
}

// New creates an empty store backed by the remote collection service.
func New(remoteAPI remote.API, bus events.Bus, log *logger.Logger) *Store {
	return &Store{
		leads:  make(map[string]domain.Lead),
		order:  make(map[string]int),
		subs:   make(map[int]Subscriber),
		remote: remoteAPI,
		bus:    bus,
		log:    log,
	}
}

// Refresh replaces the store contents from the remote collection. Concurrent
// callers collapse into a single remote call.
func (s *Store) Refresh(ctx context.Context) error {
	_, err, _ := s.refresh.Do("refresh", func() (interface{}, error) {
		leads, err := s.remote.FetchAll(ctx)
		if err != nil {
			return nil, err
		}
		s.ReplaceAll(leads)
		if s.bus != nil {
			s.bus.Publish(ctx, events.StoreRefreshed{
				BaseEvent: events.NewBaseEvent(),
				LeadCount: len(leads),
			})
		}
		return nil, nil
	})
	return err
}

// ReplaceAll swaps in a freshly fetched collection.
func (s *Store) ReplaceAll(leads []domain.Lead) {
	s.mu.Lock()
	s.leads = make(map[string]domain.Lead, len(leads))
	s.order = make(map[string]int, len(leads))
	s.next = 0
	for _, lead := range leads {
		id := domain.NormalizeLeadID(lead.ID)
		lead.ID = id
		if _, seen := s.leads[id]; !seen {
			s.order[id] = s.next
			s.next++
		}
		s.leads[id] = lead
	}
	s.mu.Unlock()
	s.notify()
}

// Upsert inserts or replaces one lead record.
func (s *Store) Upsert(lead domain.Lead) {
	id := domain.NormalizeLeadID(lead.ID)
	lead.ID = id
	s.mu.Lock()
	if _, seen := s.leads[id]; !seen {
		s.order[id] = s.next
		s.next++
	}
	s.leads[id] = lead
	s.mu.Unlock()
	s.notify()
}

// Remove deletes a lead from the store. Removing an absent id is a no-op.
func (s *Store) Remove(id string) {
	id = domain.NormalizeLeadID(id)
	s.mu.Lock()
	_, existed := s.leads[id]
	delete(s.leads, id)
	delete(s.order, id)
	s.mu.Unlock()
	if existed {
		s.notify()
	}
}

// SetArchived flips the archived flag. The lead stays in the store either
// way; archival only removes it from active projections.
func (s *Store) SetArchived(id string, archived bool) {
	id = domain.NormalizeLeadID(id)
	s.mu.Lock()
	lead, ok := s.leads[id]
	if ok {
		lead.Archived = archived
		s.leads[id] = lead
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
}

// Get returns the lead for any spelling of the id.
func (s *Store) Get(id string) (domain.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lead, ok := s.leads[domain.NormalizeLeadID(id)]
	return lead, ok
}

// Snapshot returns the collection in arrival order. The slice is the
// caller's to keep.
func (s *Store) Snapshot() []domain.Lead {
	s.mu.RLock()
	out := make([]domain.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		out = append(out, lead)
	}
	order := s.order
	sort.Slice(out, func(i, j int) bool {
		return order[out[i].ID] < order[out[j].ID]
	})
	s.mu.RUnlock()
	return out
}

// Len returns the number of leads in the store, archived included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads)
}

// Subscribe registers a snapshot callback and returns an unsubscribe
// function. The callback does not fire for events before registration.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.subMu.Lock()
	id := s.subID
	s.subID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	snapshot := s.Snapshot()

	s.subMu.Lock()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
