package ai

import (
	"strings"
	"testing"

	"github.com/FloatingDust36/siyensyago/internal/types"
)

func TestGradeProfilesCoverAllLevels(t *testing.T) {
	for _, grade := range []types.GradeLevel{types.GradeElementary, types.GradeJuniorHigh, types.GradeSeniorHigh} {
		p, ok := gradeProfiles[grade]
		if !ok {
			t.Fatalf("no profile for grade %s", grade)
		}
		if p.Audience == "" || p.Vocabulary == "" || p.Depth == "" {
			t.Errorf("incomplete profile for grade %s: %+v", grade, p)
		}
	}

	// Unknown grades fall back to junior high rather than failing
	if got := profileFor(types.GradeLevel("phd")); got != gradeProfiles[types.GradeJuniorHigh] {
		t.Errorf("fallback profile = %+v", got)
	}
}

func TestDetectionPromptMentionsSchema(t *testing.T) {
	prompt := buildDetectionPrompt(types.GradeElementary)

	for _, want := range []string{"scene_context", "objects", "bounding_box", "confidence", "category", "elementary"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("detection prompt missing %q", want)
		}
	}
	// The empty-photo case must be explicitly allowed
	if !strings.Contains(prompt, "empty") {
		t.Error("detection prompt does not allow an empty result")
	}
}

func TestAnalysisPromptVariesByGrade(t *testing.T) {
	obj := types.DetectedObject{
		ID: "obj-1", Name: "rice cooker", Confidence: 90, Category: types.CategoryPhysics,
		BoundingBox: types.BoundingBox{X: 10, Y: 10, Width: 30, Height: 30},
	}

	elem := buildAnalysisPrompt(obj, nil, types.GradeElementary)
	senior := buildAnalysisPrompt(obj, nil, types.GradeSeniorHigh)
	if elem == senior {
		t.Error("analysis prompt identical across grade levels")
	}

	for _, want := range []string{"rice cooker", "fun_fact", "the_science_in_action", "why_it_matters_to_you", "try_this", "explore_further"} {
		if !strings.Contains(elem, want) {
			t.Errorf("analysis prompt missing %q", want)
		}
	}
}

func TestAnalysisPromptIncludesSceneContext(t *testing.T) {
	obj := types.DetectedObject{
		ID: "obj-1", Name: "jeepney", Confidence: 88, Category: types.CategoryTechnology,
		BoundingBox: types.BoundingBox{X: 0, Y: 0, Width: 50, Height: 50},
	}
	sceneCtx := &types.SceneContext{Location: "street", Description: "a busy city street"}

	withScene := buildAnalysisPrompt(obj, sceneCtx, types.GradeJuniorHigh)
	if !strings.Contains(withScene, "street") {
		t.Error("analysis prompt ignores scene context")
	}

	withoutScene := buildAnalysisPrompt(obj, nil, types.GradeJuniorHigh)
	if strings.Contains(withoutScene, "Scene:") {
		t.Error("analysis prompt fabricates scene context when none given")
	}
}
