// Package ai provides the vision and content-generation capabilities that
// power discovery sessions: detecting objects in a photo and producing
// grade-tailored educational content for each one.
package ai

import (
	"context"
	"fmt"
	"os"

	"github.com/FloatingDust36/siyensyago/internal/types"
)

// AI model constants.
//
// Detection and analysis both run on the default model; analysis of a single
// object is a smaller prompt but still needs the vision-capable tier, so
// there is no cheap-model split here.
//
// Environment variable overrides:
// - SIYENSYA_MODEL: Override the default model
const (
	// ModelDefault is the vision-capable model used for detection and analysis
	ModelDefault = "claude-sonnet-4-5-20250929"
)

// GetDefaultModel returns the default model, checking SIYENSYA_MODEL env var first
func GetDefaultModel() string {
	if model := os.Getenv("SIYENSYA_MODEL"); model != "" {
		return model
	}
	return ModelDefault
}

// Detector finds scientifically interesting objects in a photo.
type Detector interface {
	// DetectObjects analyzes the image at imagePath and returns the objects
	// found plus optional scene-level context. An empty object list is a
	// valid result, not an error.
	DetectObjects(ctx context.Context, imagePath string, grade types.GradeLevel) (*types.DetectionResult, error)
}

// Analyzer produces educational content for a single detected object.
type Analyzer interface {
	// AnalyzeObject generates grade-tailored content for one object from the
	// session's photo. The full image is re-sent so the model can reason
	// about the object in its scene.
	AnalyzeObject(ctx context.Context, imagePath string, object types.DetectedObject, sceneCtx *types.SceneContext, grade types.GradeLevel) (*types.AnalysisResult, error)
}

// CapabilityError wraps a failure from the AI provider so callers can tell
// capability failures apart from local storage failures.
type CapabilityError struct {
	Operation string // "detect_objects" or "analyze_object"
	Err       error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("ai %s failed: %v", e.Operation, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}
