package types

import (
	"fmt"
	"time"
)

// DefaultSessionTTL is how long a discovery session stays live after capture.
// ExpiresAt is fixed at creation and never extended.
const DefaultSessionTTL = 24 * time.Hour

// SessionState represents the lifecycle state of a discovery session
type SessionState string

const (
	// SessionStateActive means the session is live and has unexplored objects
	SessionStateActive SessionState = "active"
	// SessionStateComplete means every detected object has been explored
	SessionStateComplete SessionState = "complete"
	// SessionStateExpired means the TTL has passed (terminal, lazily collected)
	SessionStateExpired SessionState = "expired"
)

// IsValid checks if the session state value is valid
func (s SessionState) IsValid() bool {
	switch s {
	case SessionStateActive, SessionStateComplete, SessionStateExpired:
		return true
	}
	return false
}

// ValidTransitions defines the valid state transitions for the session
// lifecycle. Exploration only grows, so complete never reverts to active.
//
// State Machine Diagram:
//
//	active → complete → expired
//	   ↓
//	expired
//
// Deletion is modeled as removal from the store, not a state.
func (s SessionState) ValidTransitions() []SessionState {
	switch s {
	case SessionStateActive:
		return []SessionState{SessionStateComplete, SessionStateExpired}
	case SessionStateComplete:
		return []SessionState{SessionStateExpired}
	case SessionStateExpired:
		return []SessionState{} // Terminal state
	default:
		return []SessionState{}
	}
}

// CanTransitionTo checks if a transition from this state to the target state is valid
func (s SessionState) CanTransitionTo(target SessionState) bool {
	for _, valid := range s.ValidTransitions() {
		if valid == target {
			return true
		}
	}
	return false
}

// DiscoverySession tracks one photo capture: what was detected, what the user
// has explored so far, and cached analysis content. Created once per capture,
// mutated only through the session manager, destroyed by explicit delete or
// TTL expiry.
type DiscoverySession struct {
	SessionID    string `json:"session_id"`
	FullImageURI string `json:"full_image_uri"`
	// DetectedObjects is fixed at creation; never mutated afterwards
	DetectedObjects []DetectedObject `json:"detected_objects"`
	// ExploredObjectIDs grows monotonically and only ever contains ids
	// present in DetectedObjects
	ExploredObjectIDs []string                  `json:"explored_object_ids"`
	Context           *SceneContext             `json:"context,omitempty"`
	Results           map[string]AnalysisResult `json:"results,omitempty"`
	CreatedAt         time.Time                 `json:"created_at"`
	ExpiresAt         time.Time                 `json:"expires_at"`
}

// Validate checks if the session has valid field values
func (s *DiscoverySession) Validate() error {
	if s.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if s.ExpiresAt.Before(s.CreatedAt) {
		return fmt.Errorf("expires_at precedes created_at")
	}
	seen := make(map[string]bool, len(s.DetectedObjects))
	for i := range s.DetectedObjects {
		if err := s.DetectedObjects[i].Validate(); err != nil {
			return fmt.Errorf("detected object %d: %w", i, err)
		}
		if seen[s.DetectedObjects[i].ID] {
			return fmt.Errorf("duplicate object id: %s", s.DetectedObjects[i].ID)
		}
		seen[s.DetectedObjects[i].ID] = true
	}
	for _, id := range s.ExploredObjectIDs {
		if !seen[id] {
			return fmt.Errorf("explored id %s not in detected objects", id)
		}
	}
	if len(s.ExploredObjectIDs) > len(s.DetectedObjects) {
		return fmt.Errorf("explored set larger than detected set")
	}
	return nil
}

// IsExpired reports whether the session's TTL has passed at the given time
func (s *DiscoverySession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// HasObject reports whether the given object id belongs to this session
func (s *DiscoverySession) HasObject(objectID string) bool {
	for i := range s.DetectedObjects {
		if s.DetectedObjects[i].ID == objectID {
			return true
		}
	}
	return false
}

// IsExplored reports whether the given object has already been explored
func (s *DiscoverySession) IsExplored(objectID string) bool {
	for _, id := range s.ExploredObjectIDs {
		if id == objectID {
			return true
		}
	}
	return false
}

// UnexploredObjects returns detected objects not yet explored, in detection order
func (s *DiscoverySession) UnexploredObjects() []DetectedObject {
	explored := make(map[string]bool, len(s.ExploredObjectIDs))
	for _, id := range s.ExploredObjectIDs {
		explored[id] = true
	}
	var remaining []DetectedObject
	for _, obj := range s.DetectedObjects {
		if !explored[obj.ID] {
			remaining = append(remaining, obj)
		}
	}
	return remaining
}

// State derives the lifecycle state at the given time
func (s *DiscoverySession) State(now time.Time) SessionState {
	if s.IsExpired(now) {
		return SessionStateExpired
	}
	if len(s.DetectedObjects) > 0 && len(s.ExploredObjectIDs) == len(s.DetectedObjects) {
		return SessionStateComplete
	}
	return SessionStateActive
}

// SessionStats summarizes exploration progress for one session
type SessionStats struct {
	TotalObjects         int           `json:"total_objects"`
	ExploredCount        int           `json:"explored_count"`
	UnexploredCount      int           `json:"unexplored_count"`
	CompletionPercentage int           `json:"completion_percentage"` // integer 0-100, rounded
	TimeRemaining        time.Duration `json:"time_remaining"`
}

// Stats computes progress statistics at the given time
func (s *DiscoverySession) Stats(now time.Time) SessionStats {
	total := len(s.DetectedObjects)
	explored := len(s.ExploredObjectIDs)
	pct := 0
	if total > 0 {
		pct = int(float64(explored)/float64(total)*100 + 0.5)
	}
	remaining := s.ExpiresAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return SessionStats{
		TotalObjects:         total,
		ExploredCount:        explored,
		UnexploredCount:      total - explored,
		CompletionPercentage: pct,
		TimeRemaining:        remaining,
	}
}
