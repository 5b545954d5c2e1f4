package types

import "fmt"

// GradeLevel selects the audience tier for generated content.
// The three tiers are a configuration lookup (audience, tone, complexity),
// not control-flow logic; the analysis prompt builder reads the profile
// table keyed by this value.
type GradeLevel string

const (
	GradeElementary GradeLevel = "elementary"
	GradeJuniorHigh GradeLevel = "junior_high"
	GradeSeniorHigh GradeLevel = "senior_high"
)

// IsValid checks if the grade level value is valid
func (g GradeLevel) IsValid() bool {
	switch g {
	case GradeElementary, GradeJuniorHigh, GradeSeniorHigh:
		return true
	}
	return false
}

// ParseGradeLevel validates a grade level string from config or CLI flags
func ParseGradeLevel(s string) (GradeLevel, error) {
	g := GradeLevel(s)
	if !g.IsValid() {
		return "", fmt.Errorf("invalid grade level %q (want elementary, junior_high, or senior_high)", s)
	}
	return g, nil
}
