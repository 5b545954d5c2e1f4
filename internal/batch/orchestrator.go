// Package batch walks a user-selected queue of detected objects through the
// analysis capability one at a time, keeping the parent session's explored
// set in sync as content is viewed.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/FloatingDust36/siyensyago/internal/ai"
	"github.com/FloatingDust36/siyensyago/internal/gamification"
	"github.com/FloatingDust36/siyensyago/internal/session"
	"github.com/FloatingDust36/siyensyago/internal/types"
)

// ErrEmptyQueue is returned when a batch is started with zero selections.
// The caller is expected to prevent this; it is an input bug, not a runtime
// condition.
var ErrEmptyQueue = errors.New("batch queue is empty")

// Step is one stop in a batch walk: the object just analyzed, its content,
// and where the cursor sits in the queue. The whole walk state travels in
// the step; nothing is stored centrally, so a step can be rebuilt from
// navigation parameters.
type Step struct {
	SessionID    string
	Queue        []types.DetectedObject
	Cursor       int
	ImageURI     string
	Grade        types.GradeLevel
	SceneContext *types.SceneContext

	// Result is the analysis for Queue[Cursor]; nil on the terminal step
	Result *types.AnalysisResult

	// BatchComplete is set on the terminal step, after the last object in
	// the queue has been marked explored
	BatchComplete bool

	// SessionComplete is set when the parent session has no unexplored
	// objects left; the caller presents the session summary
	SessionComplete bool
}

// Current returns the object under the cursor
func (s *Step) Current() types.DetectedObject {
	return s.Queue[s.Cursor]
}

// Remaining returns how many objects come after the cursor
func (s *Step) Remaining() int {
	return len(s.Queue) - s.Cursor - 1
}

// Orchestrator drives batch walks. It issues at most one analysis call at a
// time per walk: the next object is only analyzed after the previous step
// completes, preserving strict queue order.
type Orchestrator struct {
	sessions *session.Manager
	analyzer ai.Analyzer
	recorder gamification.Recorder
}

// Config holds orchestrator configuration
type Config struct {
	Sessions *session.Manager
	Analyzer ai.Analyzer
	Recorder gamification.Recorder // optional; nil disables event emission
}

// NewOrchestrator creates a batch orchestrator
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if cfg.Analyzer == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = gamification.NopRecorder{}
	}
	return &Orchestrator{
		sessions: cfg.Sessions,
		analyzer: cfg.Analyzer,
		recorder: recorder,
	}, nil
}

// StartBatch analyzes the first object in the queue and returns the opening
// step with cursor 0. On a capability error the error is surfaced and no
// state is mutated: nothing is marked explored, nothing is cached beyond the
// session's normal result cache.
func (o *Orchestrator) StartBatch(ctx context.Context, sessionID string, queue []types.DetectedObject, imageURI string, grade types.GradeLevel, sceneCtx *types.SceneContext) (*Step, error) {
	if len(queue) == 0 {
		return nil, ErrEmptyQueue
	}

	result, err := o.analyze(ctx, sessionID, imageURI, queue[0], sceneCtx, grade)
	if err != nil {
		return nil, err
	}

	return &Step{
		SessionID:    sessionID,
		Queue:        queue,
		Cursor:       0,
		ImageURI:     imageURI,
		Grade:        grade,
		SceneContext: sceneCtx,
		Result:       result,
	}, nil
}

// AdvanceBatch marks the current object explored (its content has been
// viewed) and moves to the next queue entry. If the queue is exhausted it
// returns the terminal step with BatchComplete set. If analyzing the next
// object fails, the error is surfaced and the caller falls back to the
// session's object-selection view; the walk never auto-skips a failed
// object, and the completed object's explored mark stands.
func (o *Orchestrator) AdvanceBatch(ctx context.Context, step *Step) (*Step, error) {
	if step == nil || step.BatchComplete {
		return nil, fmt.Errorf("batch walk already complete")
	}

	if err := o.sessions.MarkObjectAsExplored(ctx, step.SessionID, step.Current().ID); err != nil {
		return nil, fmt.Errorf("failed to mark %s explored: %w", step.Current().ID, err)
	}

	next := step.Cursor + 1
	if next < len(step.Queue) {
		result, err := o.analyze(ctx, step.SessionID, step.ImageURI, step.Queue[next], step.SceneContext, step.Grade)
		if err != nil {
			return nil, err
		}
		return &Step{
			SessionID:    step.SessionID,
			Queue:        step.Queue,
			Cursor:       next,
			ImageURI:     step.ImageURI,
			Grade:        step.Grade,
			SceneContext: step.SceneContext,
			Result:       result,
		}, nil
	}

	// Queue exhausted
	terminal := &Step{
		SessionID:     step.SessionID,
		Queue:         step.Queue,
		Cursor:        step.Cursor,
		ImageURI:      step.ImageURI,
		Grade:         step.Grade,
		SceneContext:  step.SceneContext,
		BatchComplete: true,
	}
	if stats := o.sessions.SessionStats(ctx, step.SessionID); stats != nil && stats.UnexploredCount == 0 {
		terminal.SessionComplete = true
	}

	if event, err := gamification.NewBatchCompletedEvent(step.SessionID, gamification.BatchCompletedData{
		QueueLength: len(step.Queue),
	}); err == nil {
		o.recorder.Record(ctx, event)
	}

	return terminal, nil
}

// analyze returns the cached result for the object if the session already
// has one, otherwise calls the analysis capability and caches the outcome
// through the session manager.
func (o *Orchestrator) analyze(ctx context.Context, sessionID, imageURI string, object types.DetectedObject, sceneCtx *types.SceneContext, grade types.GradeLevel) (*types.AnalysisResult, error) {
	if cached, ok := o.sessions.CachedResult(ctx, sessionID, object.ID); ok {
		return &cached, nil
	}

	result, err := o.analyzer.AnalyzeObject(ctx, imageURI, object, sceneCtx, grade)
	if err != nil {
		return nil, err
	}

	// Cache failures are not fatal to the walk; the result is already in hand
	_ = o.sessions.SaveAnalysisResult(ctx, sessionID, object.ID, *result)
	return result, nil
}
