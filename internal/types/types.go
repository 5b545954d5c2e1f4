package types

import (
	"fmt"
	"strings"
)

// Category classifies a detected object into a STEM discipline
type Category string

const (
	CategoryPhysics    Category = "physics"
	CategoryChemistry  Category = "chemistry"
	CategoryBiology    Category = "biology"
	CategoryTechnology Category = "technology"
)

// IsValid checks if the category value is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryPhysics, CategoryChemistry, CategoryBiology, CategoryTechnology:
		return true
	}
	return false
}

// ParseCategory normalizes a free-form category string from the vision model.
// Unknown values map to technology, the broadest bucket, rather than failing
// a whole detection over one bad label.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.IsValid() {
		return c
	}
	return CategoryTechnology
}

// BoundingBox locates an object within its source image.
// Coordinates are percentages (0-100) of image dimensions, top-left origin.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Validate checks if the bounding box has valid field values
func (b BoundingBox) Validate() error {
	if b.X < 0 || b.X > 100 || b.Y < 0 || b.Y > 100 {
		return fmt.Errorf("bounding box origin out of range: (%.1f, %.1f)", b.X, b.Y)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("bounding box must have positive dimensions (got %.1fx%.1f)", b.Width, b.Height)
	}
	if b.X+b.Width > 100 || b.Y+b.Height > 100 {
		return fmt.Errorf("bounding box extends past image bounds")
	}
	return nil
}

// DetectedObject is one scientifically interesting object found in a photo.
// Immutable once produced by detection; the ID is opaque and unique within
// its session.
type DetectedObject struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Confidence  float64     `json:"confidence"` // 0-100
	Category    Category    `json:"category"`
	BoundingBox BoundingBox `json:"bounding_box"`
}

// Validate checks if the detected object has valid field values
func (o *DetectedObject) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("object id is required")
	}
	if o.Name == "" {
		return fmt.Errorf("object name is required")
	}
	if o.Confidence < 0 || o.Confidence > 100 {
		return fmt.Errorf("confidence must be between 0 and 100 (got %.1f)", o.Confidence)
	}
	if !o.Category.IsValid() {
		return fmt.Errorf("invalid category: %s", o.Category)
	}
	return o.BoundingBox.Validate()
}

// SceneContext is optional scene-level understanding attached to a session.
// Immutable after detection.
type SceneContext struct {
	Location              string   `json:"location"`
	Description           string   `json:"description"`
	SuggestedLearningPath []string `json:"suggested_learning_path,omitempty"`
	RelatedConcepts       []string `json:"related_concepts,omitempty"`
	CulturalContext       string   `json:"cultural_context,omitempty"`
}

// DetectionResult is what the vision capability returns for one photo
type DetectionResult struct {
	SceneContext *SceneContext    `json:"scene_context,omitempty"`
	Objects      []DetectedObject `json:"objects"`
}

// AnalysisResult is the grade-tailored educational content for one object.
// Treated as an immutable value once produced; a (session, object) pair caches
// at most one result at a time.
type AnalysisResult struct {
	ObjectName      string   `json:"object_name"`
	Confidence      float64  `json:"confidence"`
	Category        Category `json:"category"`
	FunFact         string   `json:"fun_fact"`
	ScienceInAction string   `json:"the_science_in_action"`
	WhyItMatters    string   `json:"why_it_matters_to_you"`
	TryThis         string   `json:"try_this"`
	ExploreFurther  []string `json:"explore_further"`
}

// Validate checks if the analysis result has the content fields populated
func (r *AnalysisResult) Validate() error {
	if r.ObjectName == "" {
		return fmt.Errorf("object_name is required")
	}
	if !r.Category.IsValid() {
		return fmt.Errorf("invalid category: %s", r.Category)
	}
	if r.FunFact == "" && r.ScienceInAction == "" {
		return fmt.Errorf("analysis result has no content")
	}
	return nil
}
