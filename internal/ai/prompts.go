package ai

import (
	"fmt"
	"strings"

	"github.com/FloatingDust36/siyensyago/internal/types"
)

// gradeProfile tailors prompt language to the learner's level
type gradeProfile struct {
	Audience   string // who the content is for
	Vocabulary string // vocabulary guidance
	Depth      string // how deep the science explanation goes
}

var gradeProfiles = map[types.GradeLevel]gradeProfile{
	types.GradeElementary: {
		Audience:   "a Filipino elementary student (ages 6-12)",
		Vocabulary: "Use simple everyday words. Explain any science term the moment you use it. Short sentences.",
		Depth:      "Focus on wonder and observation. One core idea per object, no equations.",
	},
	types.GradeJuniorHigh: {
		Audience:   "a Filipino junior high school student (grades 7-10)",
		Vocabulary: "Use proper science vocabulary from the DepEd science curriculum, with brief definitions for advanced terms.",
		Depth:      "Connect the object to named scientific principles. Cause-and-effect explanations are appropriate.",
	},
	types.GradeSeniorHigh: {
		Audience:   "a Filipino senior high school student (grades 11-12, STEM track)",
		Vocabulary: "Use precise technical vocabulary. Quantitative relationships are welcome.",
		Depth:      "Go into mechanism: name the laws, processes, and formulas at work, and connect to STEM career applications.",
	},
}

func profileFor(grade types.GradeLevel) gradeProfile {
	if p, ok := gradeProfiles[grade]; ok {
		return p
	}
	return gradeProfiles[types.GradeJuniorHigh]
}

// buildDetectionPrompt constructs the object-detection prompt for a photo
func buildDetectionPrompt(grade types.GradeLevel) string {
	p := profileFor(grade)

	return fmt.Sprintf(`You are the vision system of a STEM education app used in the Philippines. Analyze this photo and identify the scientifically interesting objects in it, for %s.

Identify up to 8 distinct physical objects visible in the image that can teach a science concept. Everyday objects are the point: a rice cooker teaches heat transfer, a tricycle teaches mechanics, a plant teaches photosynthesis.

For each object provide:
- "name": the common name of the object in English
- "confidence": how sure you are the object is what you say it is, 0-100
- "category": one of "physics", "chemistry", "biology", "technology"
- "bounding_box": {"x", "y", "width", "height"} as percentages of image dimensions (0-100), locating the object in the photo

Also provide a "scene_context" object:
- "location": the kind of place this photo shows (e.g. "kitchen", "street", "classroom", "garden")
- "description": one sentence describing the scene
- "suggested_learning_path": object names ordered so concepts build on each other
- "related_concepts": science concepts this scene can teach
- "cultural_context": how this scene connects to daily Filipino life, if it does

Respond with ONLY a JSON object in this exact shape:
{
  "scene_context": {...},
  "objects": [{"name": ..., "confidence": ..., "category": ..., "bounding_box": {...}}, ...]
}

If nothing in the photo is scientifically interesting, return an empty "objects" array. Do not invent objects that are not clearly visible.`, p.Audience)
}

// buildAnalysisPrompt constructs the per-object educational content prompt
func buildAnalysisPrompt(object types.DetectedObject, sceneCtx *types.SceneContext, grade types.GradeLevel) string {
	p := profileFor(grade)

	var sb strings.Builder
	fmt.Fprintf(&sb, `You are a science teacher in a STEM education app used in the Philippines. The learner tapped the "%s" in this photo (the region around x=%.0f%%, y=%.0f%% of the image). Teach them the science behind it.

Audience: %s
Vocabulary: %s
Depth: %s
`, object.Name, object.BoundingBox.X+object.BoundingBox.Width/2, object.BoundingBox.Y+object.BoundingBox.Height/2, p.Audience, p.Vocabulary, p.Depth)

	if sceneCtx != nil && sceneCtx.Location != "" {
		fmt.Fprintf(&sb, "\nScene: %s", sceneCtx.Location)
		if sceneCtx.Description != "" {
			fmt.Fprintf(&sb, " (%s)", sceneCtx.Description)
		}
		sb.WriteString(". Ground your explanation in this setting.\n")
	}

	fmt.Fprintf(&sb, `
Respond with ONLY a JSON object in this exact shape:
{
  "object_name": "%s",
  "confidence": %.0f,
  "category": "%s",
  "fun_fact": "a surprising hook fact about this object",
  "the_science_in_action": "the core explanation of the science at work in this object",
  "why_it_matters_to_you": "why this science matters in the learner's own daily life in the Philippines",
  "try_this": "a safe hands-on activity the learner can do at home with common household items",
  "explore_further": ["related topic to explore next", "..."]
}`, object.Name, object.Confidence, object.Category)

	return sb.String()
}
