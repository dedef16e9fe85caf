package funnel

import (
	"testing"

	"leadboard_backend/internal/leads/domain"
)

func testStages() []domain.PipelineStage {
	return domain.DefaultStages()
}

func lead(id, rawStatus string, archived bool) domain.Lead {
	return domain.Lead{ID: id, RawStatus: rawStatus, Archived: archived}
}

func TestComputeStageMetricsCountsAndConversion(t *testing.T) {
	leads := []domain.Lead{
		lead("1", "new", false),
		lead("2", "new", false),
		lead("3", "new", false),
		lead("4", "new", false),
		lead("5", "Follow-Ups", false),
		lead("6", "follow up", false),
		lead("7", "appointment", false),
		lead("8", "Closed Won", false),
	}

	metrics := ComputeStageMetrics(leads, testStages())
	if len(metrics) != 4 {
		t.Fatalf("expected 4 stage metrics, got %d", len(metrics))
	}

	wantCounts := []int{4, 2, 1, 1}
	for i, m := range metrics {
		if m.LeadCount != wantCounts[i] {
			t.Errorf("stage %d (%s) count = %d, want %d", i, m.Stage.Name, m.LeadCount, wantCounts[i])
		}
	}

	// 4 new -> 2 follow-up = 50%; 2 -> 1 = 50%; 1 -> 1 = 100%.
	wantPct := []int{50, 50, 100}
	for i, want := range wantPct {
		if metrics[i].ConversionToNextPct == nil {
			t.Fatalf("stage %d conversion is nil", i)
		}
		if got := *metrics[i].ConversionToNextPct; got != want {
			t.Errorf("stage %d conversion = %d, want %d", i, got, want)
		}
	}

	if metrics[3].ConversionToNextPct != nil {
		t.Error("last stage must have no conversion value")
	}
}

func TestComputeStageMetricsZeroSourceStageIsZeroNotNaN(t *testing.T) {
	leads := []domain.Lead{
		lead("1", "Follow-Ups", false),
	}

	metrics := ComputeStageMetrics(leads, testStages())

	// Stage 0 is empty; conversion into stage 1 must be 0, not NaN/absent.
	if metrics[0].ConversionToNextPct == nil || *metrics[0].ConversionToNextPct != 0 {
		t.Fatalf("empty source stage conversion = %v, want 0", metrics[0].ConversionToNextPct)
	}
}

func TestComputeStageMetricsConversionBounds(t *testing.T) {
	// More appointments than follow-ups: conversion caps at 100.
	leads := []domain.Lead{
		lead("1", "follow up", false),
		lead("2", "appointment", false),
		lead("3", "demo", false),
		lead("4", "presentation", false),
	}

	metrics := ComputeStageMetrics(leads, testStages())
	for i, m := range metrics {
		if m.ConversionToNextPct == nil {
			continue
		}
		if pct := *m.ConversionToNextPct; pct < 0 || pct > 100 {
			t.Errorf("stage %d conversion %d outside [0,100]", i, pct)
		}
	}
}

func TestComputeStageMetricsExcludesArchived(t *testing.T) {
	leads := []domain.Lead{
		lead("1", "new", false),
		lead("2", "new", true),
		lead("3", "Closed Won", true),
	}

	metrics := ComputeStageMetrics(leads, testStages())
	total := 0
	for _, m := range metrics {
		total += m.LeadCount
	}
	if total != 1 {
		t.Fatalf("archived leads leaked into funnel: total %d, want 1", total)
	}
}

func TestComputeStageMetricsSumEqualsActiveLeads(t *testing.T) {
	leads := []domain.Lead{
		lead("1", "new", false),
		lead("2", "some novel status", false), // unmatched, falls into stage 0
		lead("3", "follow-ups", false),
		lead("4", "lost", false), // no stage claims "lost" in the default funnel; stage 0
		lead("5", "converted", false),
		lead("6", "appointment", true), // archived, excluded
	}

	metrics := ComputeStageMetrics(leads, testStages())
	total := 0
	for _, m := range metrics {
		total += m.LeadCount
	}
	if total != 5 {
		t.Fatalf("stage counts sum to %d, want 5 (every active lead in exactly one stage)", total)
	}
	if metrics[0].LeadCount != 3 {
		t.Errorf("default stage count = %d, want 3 (new + novel + lost)", metrics[0].LeadCount)
	}
}

func TestComputeStageMetricsFollowUpScenario(t *testing.T) {
	// A raw status spelled like a stage name lands in that stage.
	leads := []domain.Lead{
		{
			ID: "1", RawStatus: "Follow-Ups", AssigneeID: "agent-a",
			NextAction: domain.NextAction{Description: "Call patient", Status: "pending"},
		},
	}

	metrics := ComputeStageMetrics(leads, testStages())
	if metrics[1].LeadCount != 1 {
		t.Fatalf("FOLLOW-UPS stage count = %d, want 1", metrics[1].LeadCount)
	}
	if got := domain.Classify(leads[0]); got != domain.QualityHot {
		t.Errorf("scenario lead quality = %q, want Hot", got)
	}
	if got := leads[0].Status(); got != domain.StatusFollowUp {
		t.Errorf("scenario lead status = %q, want follow_up", got)
	}
}

func TestComputeStageMetricsNoStages(t *testing.T) {
	if got := ComputeStageMetrics([]domain.Lead{lead("1", "new", false)}, nil); got != nil {
		t.Fatalf("expected nil metrics for empty stage list, got %v", got)
	}
}
