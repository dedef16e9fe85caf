package prefs

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/internal/leads/filter"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewService(rdb, nil), mr
}

func TestGetReturnsDefaultsWhenUnset(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != Defaults() {
		t.Errorf("Get = %+v, want defaults %+v", got, Defaults())
	}
}

func TestSetThenGetRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	want := Preferences{
		Filters: filter.Criteria{
			Department: "sales",
			Quality:    domain.QualityHot,
		},
		ActiveTab: TabArchived,
		ViewMode:  "board",
	}
	if err := svc.Set(ctx, "u1", want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestPreferencesAreScopedPerUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Set(ctx, "u1", Preferences{ActiveTab: TabArchived, ViewMode: "list"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	other, err := svc.Get(ctx, "u2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if other != Defaults() {
		t.Errorf("u2 inherited u1's preferences, %+v", other)
	}
}

func TestCorruptBlobFallsBackToDefaults(t *testing.T) {
	svc, mr := newTestService(t)

	mr.Set(key("u1"), "{not json")

	got, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("corrupt blob surfaced an error: %v", err)
	}
	if got != Defaults() {
		t.Errorf("corrupt blob produced %+v, want defaults", got)
	}
}

func TestUnknownTabAndEmptyModeAreRepaired(t *testing.T) {
	svc, mr := newTestService(t)

	mr.Set(key("u1"), `{"activeTab":"trash","viewMode":""}`)

	got, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ActiveTab != TabActive {
		t.Errorf("ActiveTab = %q, want %q", got.ActiveTab, TabActive)
	}
	if got.ViewMode != "table" {
		t.Errorf("ViewMode = %q, want table", got.ViewMode)
	}
}

func TestGetStoreDownReturnsDefaultsAndError(t *testing.T) {
	svc, mr := newTestService(t)
	mr.Close()

	got, err := svc.Get(context.Background(), "u1")
	if err == nil {
		t.Fatalf("expected an error when redis is down")
	}
	if got != Defaults() {
		t.Errorf("store-down Get = %+v, want defaults", got)
	}
}
