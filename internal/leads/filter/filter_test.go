package filter

import (
	"testing"
	"time"

	"leadboard_backend/internal/leads/domain"
)

func sampleLeads() []domain.Lead {
	jan10 := time.Date(2026, 1, 10, 14, 30, 0, 0, time.UTC)
	feb2 := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	return []domain.Lead{
		{
			ID: "1", RawStatus: "Follow-Ups", Department: "sales", AssigneeID: "agent-a",
			Source: "Referral", CreatedAt: jan10,
			NextAction: domain.NextAction{Description: "Call patient", Status: "pending"},
		},
		{
			ID: "2", RawStatus: "new", Department: "sales", Source: "Web", CreatedAt: feb2,
		},
		{
			ID: "3", RawStatus: "Closed Won", Department: "support", AssigneeID: "agent-b",
			Source: "Referral",
		},
	}
}

func TestIsZero(t *testing.T) {
	if !(Criteria{}).IsZero() {
		t.Error("empty criteria reported as constraining")
	}
	if (Criteria{Department: "sales"}).IsZero() {
		t.Error("department criteria reported as zero")
	}
	if (Criteria{DateFrom: time.Now()}).IsZero() {
		t.Error("date criteria reported as zero")
	}
}

func TestApplyNoCriteriaReturnsSameElementsInOrder(t *testing.T) {
	leads := sampleLeads()
	got := Apply(leads, Criteria{})

	if len(got) != len(leads) {
		t.Fatalf("expected %d leads, got %d", len(leads), len(got))
	}
	for i := range leads {
		if got[i].ID != leads[i].ID {
			t.Errorf("element %d: got id %q, want %q", i, got[i].ID, leads[i].ID)
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	leads := sampleLeads()
	before := make([]string, len(leads))
	for i, l := range leads {
		before[i] = l.ID
	}

	_ = Apply(leads, Criteria{Department: "sales"})

	for i, l := range leads {
		if l.ID != before[i] {
			t.Fatalf("input slice mutated at %d", i)
		}
	}
}

func TestApplySingleFieldPredicates(t *testing.T) {
	leads := sampleLeads()

	cases := []struct {
		name     string
		criteria Criteria
		wantIDs  []string
	}{
		{"department", Criteria{Department: "sales"}, []string{"1", "2"}},
		{"assignee", Criteria{Assignee: "agent-b"}, []string{"3"}},
		{"status canonical", Criteria{Status: domain.StatusFollowUp}, []string{"1"}},
		{"status via synonym", Criteria{Status: domain.StatusConverted}, []string{"3"}},
		{"quality hot", Criteria{Quality: domain.QualityHot}, []string{"1"}},
		{"quality cold", Criteria{Quality: domain.QualityCold}, []string{"2"}},
		{"source", Criteria{Source: "Referral"}, []string{"1", "3"}},
	}

	for _, tc := range cases {
		got := Apply(leads, tc.criteria)
		if len(got) != len(tc.wantIDs) {
			t.Errorf("%s: got %d leads, want %d", tc.name, len(got), len(tc.wantIDs))
			continue
		}
		for i, id := range tc.wantIDs {
			if got[i].ID != id {
				t.Errorf("%s: element %d = %q, want %q", tc.name, i, got[i].ID, id)
			}
		}
	}
}

func TestApplySequentialEqualsSimultaneous(t *testing.T) {
	leads := sampleLeads()

	dept := Criteria{Department: "sales"}
	src := Criteria{Source: "Referral"}
	both := Criteria{Department: "sales", Source: "Referral"}

	seq := Apply(Apply(leads, dept), src)
	seqReversed := Apply(Apply(leads, src), dept)
	sim := Apply(leads, both)

	if len(seq) != len(sim) || len(seqReversed) != len(sim) {
		t.Fatalf("sequential (%d/%d) and simultaneous (%d) filter results differ",
			len(seq), len(seqReversed), len(sim))
	}
	for i := range sim {
		if seq[i].ID != sim[i].ID || seqReversed[i].ID != sim[i].ID {
			t.Errorf("element %d differs across application orders", i)
		}
	}
}

func TestApplyDateBounds(t *testing.T) {
	leads := sampleLeads()

	jan1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	jan10 := time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)
	jan31 := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	// Inclusive lower bound: lead 1 created Jan 10 at 14:30 matches a
	// DateFrom of Jan 10 regardless of the bound's time of day.
	got := Apply(leads, Criteria{DateFrom: jan10})
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Fatalf("DateFrom jan10: got %v", ids(got))
	}

	// Inclusive upper bound covers the whole end day.
	got = Apply(leads, Criteria{DateFrom: jan1, DateTo: jan31})
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("jan range: got %v", ids(got))
	}

	// Lead 3 has no timestamp and must fail any date-bound criteria.
	got = Apply(leads, Criteria{DateTo: time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)})
	for _, l := range got {
		if l.ID == "3" {
			t.Fatal("lead without timestamp satisfied a date bound")
		}
	}
}

func TestApplyQualityExcludesScenario(t *testing.T) {
	// A hot follow-up lead is excluded when the filter asks for Cold.
	leads := sampleLeads()
	got := Apply(leads, Criteria{Quality: domain.QualityCold})
	for _, l := range got {
		if l.ID == "1" {
			t.Fatal("hot lead included in quality=Cold filter")
		}
	}
}

func ids(leads []domain.Lead) []string {
	out := make([]string, len(leads))
	for i, l := range leads {
		out[i] = l.ID
	}
	return out
}
