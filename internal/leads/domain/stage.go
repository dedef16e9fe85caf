package domain

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PipelineStage is a named funnel step. Order in the stage slice is
// significant: it determines the "next stage" for conversion math, and the
// first stage is the default bucket for statuses no stage claims.
type PipelineStage struct {
	Name     string `yaml:"name" json:"name"`
	Position int    `yaml:"-" json:"position"`
}

// Candidates returns the canonical statuses this stage accepts.
func (s PipelineStage) Candidates() []CanonicalStatus {
	return StageCandidates(s.Name)
}

// StageCandidates maps a stage display name to the canonical statuses it
// represents. Stage names are user-authored free text in the pipeline
// builder, so matching is keyword-based and degrades to the default bucket
// for novel names instead of failing.
func StageCandidates(displayName string) []CanonicalStatus {
	name := strings.ToLower(stripOrdinalPrefix(displayName))

	switch {
	case strings.Contains(name, "cycle"):
		return []CanonicalStatus{StatusCycleConversion}
	case strings.Contains(name, "lost"):
		return []CanonicalStatus{StatusLost}
	case containsAny(name, "register", "closed", "final", "won", "convert"):
		return []CanonicalStatus{StatusConverted}
	case containsAny(name, "appointment", "demo", "presentation"):
		return []CanonicalStatus{StatusAppointment}
	case containsAny(name, "follow", "qualified"):
		return []CanonicalStatus{StatusFollowUp, StatusContacted}
	case strings.Contains(name, "contact"):
		return []CanonicalStatus{StatusContacted}
	default:
		return []CanonicalStatus{StatusNew}
	}
}

// stripOrdinalPrefix removes a leading "1. " / "2) " style prefix from a
// stage display name.
func stripOrdinalPrefix(name string) string {
	trimmed := strings.TrimSpace(name)
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i == 0 {
		return trimmed
	}
	rest := trimmed[i:]
	if len(rest) > 0 && (rest[0] == '.' || rest[0] == ')') {
		rest = rest[1:]
	} else if len(rest) > 0 && rest[0] != ' ' {
		// "2Fast" style names are not ordinals.
		return trimmed
	}
	return strings.TrimSpace(rest)
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// DefaultStages is the compiled-in funnel used when no stages file is
// configured.
func DefaultStages() []PipelineStage {
	return numberStages([]string{
		"1. NEW LEADS",
		"2. FOLLOW-UPS",
		"3. APPOINTMENTS",
		"4. CONVERTED",
	})
}

type stagesFile struct {
	Stages []string `yaml:"stages"`
}

// LoadStages reads an ordered stage list from a YAML file. A missing path
// returns the default stages.
func LoadStages(path string) ([]PipelineStage, error) {
	if path == "" {
		return DefaultStages(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stages file: %w", err)
	}

	var parsed stagesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse stages file: %w", err)
	}
	if len(parsed.Stages) == 0 {
		return nil, fmt.Errorf("stages file %s defines no stages", path)
	}

	return numberStages(parsed.Stages), nil
}

func numberStages(names []string) []PipelineStage {
	stages := make([]PipelineStage, 0, len(names))
	for i, name := range names {
		stages = append(stages, PipelineStage{Name: name, Position: i})
	}
	return stages
}
