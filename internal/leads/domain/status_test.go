package domain

import "testing"

func TestNormalizeStatusKnownSynonyms(t *testing.T) {
	cases := []struct {
		raw  string
		want CanonicalStatus
	}{
		{"new", StatusNew},
		{"New Lead", StatusNew},
		{"contacted", StatusContacted},
		{"Attempted Contact", StatusContacted},
		{"qualified", StatusContacted},
		{"follow-ups", StatusFollowUp},
		{"followups", StatusFollowUp},
		{"follow up", StatusFollowUp},
		{"FOLLOW_UP", StatusFollowUp},
		{"appointment", StatusAppointment},
		{"Demo Scheduled", StatusAppointment},
		{"presentation", StatusAppointment},
		{"converted", StatusConverted},
		{"Closed Won", StatusConverted},
		{"registered", StatusConverted},
		{"lost", StatusLost},
		{"Closed-Lost", StatusLost},
		{"not interested", StatusLost},
		{"cycle conversion", StatusCycleConversion},
	}

	for _, tc := range cases {
		if got := NormalizeStatus(tc.raw); got != tc.want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeStatusUnknownDefaultsToNew(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"completely novel status",
		"☃",
		"zzz-???",
	}

	for _, raw := range cases {
		if got := NormalizeStatus(raw); got != StatusNew {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", raw, got, StatusNew)
		}
	}
}

func TestNormalizeStatusSeparatorAndCaseInvariance(t *testing.T) {
	variants := []string{"Follow-Ups", "follow ups", "FOLLOW_UPS", "follow--ups", "  follow   ups  "}

	want := NormalizeStatus(variants[0])
	for _, v := range variants[1:] {
		if got := NormalizeStatus(v); got != want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q (same as %q)", v, got, want, variants[0])
		}
	}
	if want != StatusFollowUp {
		t.Errorf("expected follow_up cluster, got %q", want)
	}
}

func TestNormalizeLeadIDPrefixes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"123", "123"},
		{"#123", "123"},
		{"LN-123", "123"},
		{"LD-123", "123"},
		{"  #123  ", "123"},
		{"LNX-123", "LNX-123"},
	}

	for _, tc := range cases {
		if got := NormalizeLeadID(tc.in); got != tc.want {
			t.Errorf("NormalizeLeadID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	if !SameLead("#42", "LD-42") {
		t.Error("expected #42 and LD-42 to identify the same lead")
	}
	if SameLead("42", "43") {
		t.Error("42 and 43 must not identify the same lead")
	}
}
