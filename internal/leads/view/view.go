// Package view maintains the per-view projections (table, kanban board,
// list) over the canonical store. Each view derives its rows from the store
// snapshot plus its own optimistic archive patches; the patches exist only
// for immediate feedback and are dropped as soon as the store speaks again.
package view

import (
	"context"
	"sync"

	"leadboard_backend/internal/events"
	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/internal/leads/filter"
	"leadboard_backend/internal/leads/store"
)

// Mode identifies one of the three dashboard views.
type Mode string

const (
	ModeTable Mode = "table"
	ModeBoard Mode = "board"
	ModeList  Mode = "list"
)

// Row is a projected lead with its derived classifications, ready to render.
type Row struct {
	Lead    domain.Lead            `json:"lead"`
	Status  domain.CanonicalStatus `json:"status"`
	Quality domain.Quality         `json:"quality"`
}

// Page is one page of a view projection.
type Page struct {
	Rows       []Row `json:"rows"`
	TotalRows  int   `json:"totalRows"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// Query describes one projection request. Criteria, tab and page travel with
// the request so concurrent callers cannot see each other's filters.
type Query struct {
	Criteria filter.Criteria
	// ActiveOnly excludes archived leads. The board ignores false here;
	// it never shows archived leads.
	ActiveOnly bool
	Page       int
	PageSize   int
}

const defaultPageSize = 25

// View is one mounted projection. It subscribes to the store on creation;
// Close detaches, after which any late notification or patch is a no-op.
// Reads are stateless: Project computes a page from the query alone.
type View struct {
	mu     sync.Mutex
	mode   Mode
	closed bool

	snapshot []domain.Lead
	overlay  map[string]bool // optimistic archived patches by lead id

	store      *store.Store
	unsubStore func()
}

// New mounts a view over the store.
func New(st *store.Store, mode Mode) *View {
	v := &View{
		mode:     mode,
		snapshot: st.Snapshot(),
		overlay:  make(map[string]bool),
		store:    st,
	}

	v.unsubStore = st.Subscribe(v.onStoreChange)

	return v
}

// Mode returns the view's kind.
func (v *View) Mode() Mode {
	return v.mode
}

// ApplyArchived records an optimistic archive patch so the projection
// reflects the mutation before the network round-trip completes. The patch
// is discarded on the next store notification; the store stays authoritative.
func (v *View) ApplyArchived(leadID string, archived bool) {
	v.mu.Lock()
	if !v.closed {
		v.overlay[domain.NormalizeLeadID(leadID)] = archived
	}
	v.mu.Unlock()
}

// Resync re-derives the projection from the current store snapshot,
// dropping all optimistic patches.
func (v *View) Resync() {
	v.onStoreChange(v.store.Snapshot())
}

// Project computes one page under a single lock acquisition, so the result
// reflects exactly the query it was asked for.
func (v *View) Project(q Query) Page {
	if v.mode == ModeBoard {
		q.ActiveOnly = true
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	matched := make([]Row, 0, len(v.snapshot))
	for _, lead := range v.snapshot {
		if patched, ok := v.overlay[lead.ID]; ok {
			lead.Archived = patched
		}
		if q.ActiveOnly && !lead.Active() {
			continue
		}
		if !filter.Matches(lead, q.Criteria) {
			continue
		}
		matched = append(matched, Row{
			Lead:    lead,
			Status:  lead.Status(),
			Quality: domain.Classify(lead),
		})
	}

	total := len(matched)
	totalPages := (total + q.PageSize - 1) / q.PageSize
	if totalPages == 0 {
		totalPages = 1
	}
	page := q.Page
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * q.PageSize
	end := start + q.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Rows:       matched[start:end],
		TotalRows:  total,
		Page:       page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}
}

// Close unmounts the view. Store notifications and optimistic patches
// arriving afterwards are ignored.
func (v *View) Close() {
	v.mu.Lock()
	alreadyClosed := v.closed
	v.closed = true
	v.mu.Unlock()

	if !alreadyClosed && v.unsubStore != nil {
		v.unsubStore()
	}
}

func (v *View) onStoreChange(snapshot []domain.Lead) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.snapshot = snapshot
	// The store has spoken; optimistic patches are stale by definition.
	v.overlay = make(map[string]bool)
	v.mu.Unlock()
}

// Manager owns the three mounted dashboard views, fans optimistic patches
// out to them and holds the single bus subscription for invalidation
// signals. It satisfies the coordinator's Optimistic interface. Individual
// views never subscribe to the bus, so closing a view releases it fully.
type Manager struct {
	mu    sync.Mutex
	views map[Mode]*View
}

// NewManager mounts the three standard views. Invalidation signals force a
// resync outside the store subscription path; a view mounted after a signal
// was sent relies on its construction-time snapshot instead, there is no
// replay.
func NewManager(st *store.Store, bus events.Bus) *Manager {
	m := &Manager{
		views: map[Mode]*View{
			ModeTable: New(st, ModeTable),
			ModeBoard: New(st, ModeBoard),
			ModeList:  New(st, ModeList),
		},
	}

	if bus != nil {
		resync := events.HandlerFunc(func(ctx context.Context, e events.Event) error {
			m.resyncAll()
			return nil
		})
		bus.Subscribe(events.LeadDeleted{}.EventName(), resync)
		bus.Subscribe(events.LeadUpdated{}.EventName(), resync)
	}

	return m
}

// View returns the projection for a mode, nil for unknown modes.
func (m *Manager) View(mode Mode) *View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.views[mode]
}

// ApplyArchived forwards an optimistic patch to every mounted view.
func (m *Manager) ApplyArchived(leadID string, archived bool) {
	for _, v := range m.snapshotViews() {
		v.ApplyArchived(leadID, archived)
	}
}

// Close unmounts all views.
func (m *Manager) Close() {
	for _, v := range m.snapshotViews() {
		v.Close()
	}
}

func (m *Manager) resyncAll() {
	for _, v := range m.snapshotViews() {
		v.Resync()
	}
}

func (m *Manager) snapshotViews() []*View {
	m.mu.Lock()
	defer m.mu.Unlock()
	views := make([]*View, 0, len(m.views))
	for _, v := range m.views {
		views = append(views, v)
	}
	return views
}
