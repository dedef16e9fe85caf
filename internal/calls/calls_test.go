package calls

import (
	"context"
	"sync"
	"testing"
	"time"

	"leadboard_backend/internal/events"
	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/internal/leads/store"
	"leadboard_backend/platform/apperr"
)

type fakeRemote struct{}

func (fakeRemote) FetchAll(ctx context.Context) ([]domain.Lead, error) { return nil, nil }
func (fakeRemote) DeleteOne(ctx context.Context, id string) error      { return nil }
func (fakeRemote) UpdateOne(ctx context.Context, id string, full domain.Lead) (domain.Lead, error) {
	return full, nil
}
func (fakeRemote) SetFlag(ctx context.Context, id string, archived bool) error { return nil }

type capturingProvider struct {
	mu     sync.Mutex
	opened []string
	phones []string
}

func (p *capturingProvider) Open(ctx context.Context, leadID, phoneNumber string) error {
	p.mu.Lock()
	p.opened = append(p.opened, leadID)
	p.phones = append(p.phones, phoneNumber)
	p.mu.Unlock()
	return nil
}

func newCallFixture(t *testing.T, leads ...domain.Lead) (*Service, *store.Store) {
	t.Helper()
	bus := events.NewInMemoryBus(nil)
	st := store.New(fakeRemote{}, bus, nil)
	for _, l := range leads {
		st.Upsert(l)
	}
	return NewService(st, bus, nil), st
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func waitSettle(t *testing.T) {
	t.Helper()
	time.Sleep(50 * time.Millisecond)
}

func TestRequestReachesMountedProvider(t *testing.T) {
	svc, _ := newCallFixture(t, domain.Lead{ID: "7", RawStatus: "new", Phone: "(202) 555-0143"})

	p := &capturingProvider{}
	unregister := svc.Register(p)
	defer unregister()

	if err := svc.Request(context.Background(), "LN-7"); err != nil {
		t.Fatalf("Request: %v", err)
	}

	waitFor(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return len(p.opened) == 1
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.opened[0] != "7" {
		t.Errorf("provider opened for %q, want 7", p.opened[0])
	}
	if p.phones[0] != "+12025550143" {
		t.Errorf("phone = %q, want E.164 +12025550143", p.phones[0])
	}
}

func TestRequestUnknownLeadIsNotFound(t *testing.T) {
	svc, _ := newCallFixture(t)

	err := svc.Request(context.Background(), "missing")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Request(unknown) = %v, want KindNotFound", err)
	}
}

func TestUnregisteredProviderHearsNothing(t *testing.T) {
	svc, _ := newCallFixture(t, domain.Lead{ID: "1", RawStatus: "new"})

	p := &capturingProvider{}
	unregister := svc.Register(p)
	unregister()

	if err := svc.Request(context.Background(), "1"); err != nil {
		t.Fatalf("Request: %v", err)
	}

	// Delivery is async; the absence of a call can only be observed after
	// giving the bus a chance to fan out.
	waitSettle(t)
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.opened) != 0 {
		t.Errorf("unmounted provider was called %d times", len(p.opened))
	}
}

func TestLaterProviderReplacesEarlierOne(t *testing.T) {
	svc, _ := newCallFixture(t, domain.Lead{ID: "1", RawStatus: "new"})

	first := &capturingProvider{}
	second := &capturingProvider{}
	unregisterFirst := svc.Register(first)
	svc.Register(second)
	// Late unregister of the replaced provider must not unmount the new one.
	unregisterFirst()

	if err := svc.Request(context.Background(), "1"); err != nil {
		t.Fatalf("Request: %v", err)
	}

	waitFor(t, func() bool {
		second.mu.Lock()
		defer second.mu.Unlock()
		return len(second.opened) == 1
	})

	first.mu.Lock()
	defer first.mu.Unlock()
	if len(first.opened) != 0 {
		t.Errorf("replaced provider was still called")
	}
}
