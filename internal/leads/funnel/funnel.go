// Package funnel derives per-stage counts and stage-to-stage conversion
// percentages for the pipeline visualization. The calculator is pure and
// holds no state; it is recomputed on every store change.
package funnel

import (
	"math"

	"leadboard_backend/internal/leads/domain"
)

// StageMetric is the funnel datum for one pipeline stage.
// ConversionToNextPct is nil for the last stage.
type StageMetric struct {
	Stage               domain.PipelineStage `json:"stage"`
	LeadCount           int                  `json:"leadCount"`
	ConversionToNextPct *int                 `json:"conversionToNextPct,omitempty"`
}

// ComputeStageMetrics buckets active leads into the ordered stages and
// derives conversion into each following stage.
//
// Each lead lands in exactly one stage: the first stage whose candidate set
// contains the lead's canonical status, or the first stage when no stage
// claims it. Archived leads do not participate.
func ComputeStageMetrics(leads []domain.Lead, stages []domain.PipelineStage) []StageMetric {
	if len(stages) == 0 {
		return nil
	}

	candidates := make([][]domain.CanonicalStatus, len(stages))
	for i, stage := range stages {
		candidates[i] = stage.Candidates()
	}

	counts := make([]int, len(stages))
	for _, lead := range leads {
		if !lead.Active() {
			continue
		}
		counts[stageIndexFor(lead.Status(), candidates)]++
	}

	metrics := make([]StageMetric, len(stages))
	for i, stage := range stages {
		metrics[i] = StageMetric{Stage: stage, LeadCount: counts[i]}
		if i < len(stages)-1 {
			pct := conversionPct(counts[i], counts[i+1])
			metrics[i].ConversionToNextPct = &pct
		}
	}
	return metrics
}

// stageIndexFor returns the first stage claiming the status, defaulting to
// the first stage so no lead is ever dropped from the funnel.
func stageIndexFor(status domain.CanonicalStatus, candidates [][]domain.CanonicalStatus) int {
	for i, set := range candidates {
		for _, c := range set {
			if c == status {
				return i
			}
		}
	}
	return 0
}

// conversionPct is round(100 * next / current), defined as 0 when the source
// stage is empty so the UI never sees NaN, and capped at 100 so a fuller
// downstream stage cannot render an impossible percentage.
func conversionPct(current, next int) int {
	if current == 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(next) / float64(current)))
	if pct > 100 {
		return 100
	}
	return pct
}
