package view

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"leadboard_backend/internal/events"
	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/internal/leads/filter"
	"leadboard_backend/internal/leads/store"
)

type fakeRemote struct{}

func (fakeRemote) FetchAll(ctx context.Context) ([]domain.Lead, error) { return nil, nil }
func (fakeRemote) DeleteOne(ctx context.Context, id string) error      { return nil }
func (fakeRemote) UpdateOne(ctx context.Context, id string, full domain.Lead) (domain.Lead, error) {
	return full, nil
}
func (fakeRemote) SetFlag(ctx context.Context, id string, archived bool) error { return nil }

func seededStore(leads ...domain.Lead) *store.Store {
	st := store.New(fakeRemote{}, nil, nil)
	for _, l := range leads {
		st.Upsert(l)
	}
	return st
}

func TestProjectExcludesArchivedWhenActiveOnly(t *testing.T) {
	st := seededStore(
		domain.Lead{ID: "1", RawStatus: "new"},
		domain.Lead{ID: "2", RawStatus: "contacted", Archived: true},
	)
	v := New(st, ModeTable)
	defer v.Close()

	page := v.Project(Query{ActiveOnly: true})
	if page.TotalRows != 1 || page.Rows[0].Lead.ID != "1" {
		t.Fatalf("active-only projection = %+v, want only lead 1", page)
	}

	if got := v.Project(Query{}).TotalRows; got != 2 {
		t.Errorf("full projection has %d rows, want 2", got)
	}
}

func TestBoardAlwaysExcludesArchived(t *testing.T) {
	st := seededStore(
		domain.Lead{ID: "1", RawStatus: "new"},
		domain.Lead{ID: "2", RawStatus: "contacted", Archived: true},
	)
	v := New(st, ModeBoard)
	defer v.Close()

	// The archived tab does not exist on the board; a query asking for it
	// still gets the active set.
	page := v.Project(Query{ActiveOnly: false})
	if page.TotalRows != 1 || page.Rows[0].Lead.ID != "1" {
		t.Errorf("board projection with ActiveOnly=false = %+v, want only lead 1", page)
	}
}

func TestProjectDerivesStatusAndQuality(t *testing.T) {
	st := seededStore(domain.Lead{
		ID:         "1",
		RawStatus:  "Follow Up",
		AssigneeID: "u1",
		NextAction: domain.NextAction{Description: "call back tomorrow", Status: "pending"},
	})
	v := New(st, ModeTable)
	defer v.Close()

	row := v.Project(Query{}).Rows[0]
	if row.Status != domain.StatusFollowUp {
		t.Errorf("Status = %q, want %q", row.Status, domain.StatusFollowUp)
	}
	if row.Quality != domain.QualityHot {
		t.Errorf("Quality = %q, want %q", row.Quality, domain.QualityHot)
	}
}

func TestStoreChangeReachesMountedView(t *testing.T) {
	st := seededStore(domain.Lead{ID: "1", RawStatus: "new"})
	v := New(st, ModeList)
	defer v.Close()

	st.Upsert(domain.Lead{ID: "2", RawStatus: "contacted"})

	if got := v.Project(Query{}).TotalRows; got != 2 {
		t.Errorf("projection has %d rows after upsert, want 2", got)
	}
}

func TestOptimisticPatchVisibleThenDroppedOnStoreChange(t *testing.T) {
	st := seededStore(domain.Lead{ID: "1", RawStatus: "new"})
	v := New(st, ModeTable)
	defer v.Close()

	v.ApplyArchived("LN-1", true)
	if got := v.Project(Query{ActiveOnly: true}).TotalRows; got != 0 {
		t.Fatalf("patched lead still visible in active projection, %d rows", got)
	}

	// Any store notification supersedes optimistic state.
	st.Upsert(domain.Lead{ID: "1", RawStatus: "new"})
	if got := v.Project(Query{ActiveOnly: true}).TotalRows; got != 1 {
		t.Errorf("patch survived a store notification, %d rows", got)
	}
}

func TestBusInvalidationDropsOptimisticPatches(t *testing.T) {
	st := seededStore(domain.Lead{ID: "1", RawStatus: "new"})
	bus := events.NewInMemoryBus(nil)
	m := NewManager(st, bus)
	defer m.Close()

	m.ApplyArchived("1", true)
	if err := bus.PublishSync(context.Background(), events.NewLeadUpdated("1")); err != nil {
		t.Fatalf("PublishSync: %v", err)
	}

	if got := m.View(ModeTable).Project(Query{ActiveOnly: true}).TotalRows; got != 1 {
		t.Errorf("invalidation did not resync the view, %d rows", got)
	}
}

func TestCriteriaAndPagination(t *testing.T) {
	leads := make([]domain.Lead, 0, 30)
	for i := 0; i < 30; i++ {
		dept := "sales"
		if i%3 == 0 {
			dept = "support"
		}
		leads = append(leads, domain.Lead{
			ID:         fmt.Sprintf("%d", i),
			RawStatus:  "new",
			Department: dept,
		})
	}
	v := New(seededStore(leads...), ModeTable)
	defer v.Close()

	page := v.Project(Query{
		Criteria: filter.Criteria{Department: "sales"},
		Page:     2,
		PageSize: 15,
	})
	if page.TotalRows != 20 {
		t.Fatalf("TotalRows = %d, want 20", page.TotalRows)
	}
	if page.TotalPages != 2 || page.Page != 2 {
		t.Errorf("pagination = page %d of %d, want 2 of 2", page.Page, page.TotalPages)
	}
	if len(page.Rows) != 5 {
		t.Errorf("second page holds %d rows, want 5", len(page.Rows))
	}
}

func TestPageBeyondEndClampsToLastPage(t *testing.T) {
	v := New(seededStore(domain.Lead{ID: "1", RawStatus: "new"}), ModeTable)
	defer v.Close()

	page := v.Project(Query{Page: 9, PageSize: 10})
	if page.Page != 1 || len(page.Rows) != 1 {
		t.Errorf("out-of-range page = %+v, want clamped to page 1", page)
	}
}

// Concurrent requests against the same mounted view carry their own criteria;
// no projection may ever contain a row belonging to another caller's filter.
func TestConcurrentProjectionsKeepTheirCriteria(t *testing.T) {
	leads := make([]domain.Lead, 0, 40)
	for i := 0; i < 40; i++ {
		dept := "sales"
		if i%2 == 0 {
			dept = "support"
		}
		leads = append(leads, domain.Lead{
			ID:         fmt.Sprintf("%d", i),
			RawStatus:  "new",
			Department: dept,
		})
	}
	v := New(seededStore(leads...), ModeTable)
	defer v.Close()

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for _, dept := range []string{"sales", "support", "sales", "support", "sales", "support", "sales", "support"} {
		wg.Add(1)
		go func(dept string) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				page := v.Project(Query{
					Criteria: filter.Criteria{Department: dept},
					Page:     1,
					PageSize: 50,
				})
				if page.TotalRows != 20 {
					errs <- fmt.Sprintf("%s projection counted %d rows, want 20", dept, page.TotalRows)
					return
				}
				for _, row := range page.Rows {
					if row.Lead.Department != dept {
						errs <- fmt.Sprintf("%s projection leaked lead %s from %s", dept, row.Lead.ID, row.Lead.Department)
						return
					}
				}
			}
		}(dept)
	}
	wg.Wait()
	close(errs)

	if msg, ok := <-errs; ok {
		t.Fatal(msg)
	}
}

func TestCloseMakesLateNotificationsNoOps(t *testing.T) {
	st := seededStore(domain.Lead{ID: "1", RawStatus: "new"})
	v := New(st, ModeTable)
	v.Close()

	st.Upsert(domain.Lead{ID: "2", RawStatus: "new"})
	v.ApplyArchived("1", true)

	page := v.Project(Query{ActiveOnly: true})
	if page.TotalRows != 1 || page.Rows[0].Lead.ID != "1" {
		t.Errorf("closed view changed, %+v", page)
	}

	v.Close() // second close must not panic
}

func TestManagerFansOutPatches(t *testing.T) {
	st := seededStore(domain.Lead{ID: "1", RawStatus: "new"})
	m := NewManager(st, nil)
	defer m.Close()

	m.ApplyArchived("1", true)

	for _, mode := range []Mode{ModeTable, ModeBoard, ModeList} {
		if got := m.View(mode).Project(Query{ActiveOnly: true}).TotalRows; got != 0 {
			t.Errorf("%s view still shows the patched lead", mode)
		}
	}
	if m.View(Mode("grid")) != nil {
		t.Errorf("unknown mode returned a view")
	}
}

func TestClosedViewHoldsNoSubscriptions(t *testing.T) {
	st := seededStore(domain.Lead{ID: "1", RawStatus: "new"})
	bus := events.NewInMemoryBus(nil)
	m := NewManager(st, bus)
	defer m.Close()

	// Mounting and unmounting an extra view must not accumulate handlers on
	// the bus; only the manager itself subscribes.
	before := bus.HandlerCount(events.LeadUpdated{}.EventName())
	for i := 0; i < 3; i++ {
		v := New(st, ModeList)
		v.Close()
	}
	if after := bus.HandlerCount(events.LeadUpdated{}.EventName()); after != before {
		t.Errorf("bus handler count grew from %d to %d across mount cycles", before, after)
	}
}
