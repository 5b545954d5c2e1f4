// Package gamification defines the client-side lifecycle events that feed the
// server-side scoring system. Scoring, leaderboards, and achievement rules run
// remotely; this package only produces the event stream.
package gamification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/FloatingDust36/siyensyago/internal/types"
)

// EventType represents the kind of lifecycle event that occurred
type EventType string

const (
	// EventTypeSessionCreated indicates a new discovery session was created from a photo
	EventTypeSessionCreated EventType = "session_created"
	// EventTypeObjectExplored indicates an object's content was displayed for the first time
	EventTypeObjectExplored EventType = "object_explored"
	// EventTypeSessionCompleted indicates every object in a session was explored
	EventTypeSessionCompleted EventType = "session_completed"
	// EventTypeDiscoverySaved indicates a discovery was saved to the museum
	EventTypeDiscoverySaved EventType = "discovery_saved"
	// EventTypeDiscoveryRemoved indicates a discovery was deleted from the museum
	EventTypeDiscoveryRemoved EventType = "discovery_removed"
	// EventTypeBatchCompleted indicates a batch learning walk finished
	EventTypeBatchCompleted EventType = "batch_completed"
	// EventTypeAchievementUnlocked indicates the client observed an
	// achievement condition; the server validates before it counts
	EventTypeAchievementUnlocked EventType = "achievement_unlocked"
)

// IsValid checks if the event type value is valid
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeSessionCreated, EventTypeObjectExplored, EventTypeSessionCompleted,
		EventTypeDiscoverySaved, EventTypeDiscoveryRemoved, EventTypeBatchCompleted,
		EventTypeAchievementUnlocked:
		return true
	}
	return false
}

// Achievement identifiers the client can observe on its own. The server
// holds the full catalog; these are the locally detectable ones.
const (
	// AchievementSceneSweep is unlocked by exploring every object in a scene
	AchievementSceneSweep = "scene_sweep"
)

// XP awards per event type. These are the client's advisory values; the
// server recomputes authoritative totals.
const (
	XPObjectExplored      = 10
	XPSessionCompleted    = 25
	XPDiscoverySaved      = 15
	XPBatchCompleted      = 20
	XPAchievementUnlocked = 50
)

// Event is one gamification lifecycle event
type Event struct {
	// ID is the unique identifier for this event
	ID string `json:"id"`
	// Type is the type of event
	Type EventType `json:"type"`
	// Timestamp is when the event occurred
	Timestamp time.Time `json:"timestamp"`
	// SessionID is the discovery session this event belongs to, if any
	SessionID string `json:"session_id,omitempty"`
	// XP is the advisory experience award for this event
	XP int `json:"xp"`
	// Message is a human-readable description of the event
	Message string `json:"message"`
	// Data contains structured, type-specific data (must be JSON-serializable)
	Data map[string]interface{} `json:"data,omitempty"`
}

// SessionCreatedData contains structured data for session creation events
type SessionCreatedData struct {
	// ObjectCount is how many objects detection found
	ObjectCount int `json:"object_count"`
	// Location is the scene location, if scene context was produced
	Location string `json:"location,omitempty"`
}

// ObjectExploredData contains structured data for object exploration events
type ObjectExploredData struct {
	// ObjectID is the explored object's id within its session
	ObjectID string `json:"object_id"`
	// ObjectName is the explored object's display name
	ObjectName string `json:"object_name"`
	// Category is the object's STEM discipline
	Category types.Category `json:"category"`
}

// SessionCompletedData contains structured data for session completion events
type SessionCompletedData struct {
	// ObjectCount is how many objects the session held
	ObjectCount int `json:"object_count"`
}

// DiscoverySavedData contains structured data for museum save events
type DiscoverySavedData struct {
	// DiscoveryID is the saved discovery's id
	DiscoveryID string `json:"discovery_id"`
	// ObjectName is the saved object's display name
	ObjectName string `json:"object_name"`
	// Category is the object's STEM discipline
	Category types.Category `json:"category"`
}

// DiscoveryRemovedData contains structured data for museum removal events
type DiscoveryRemovedData struct {
	// DiscoveryID is the removed discovery's id
	DiscoveryID string `json:"discovery_id"`
	// ObjectName is the removed object's display name
	ObjectName string `json:"object_name"`
}

// AchievementUnlockedData contains structured data for achievement events
type AchievementUnlockedData struct {
	// AchievementID is the stable identifier of the unlocked achievement
	AchievementID string `json:"achievement_id"`
	// Title is the display name shown to the learner
	Title string `json:"title"`
}

// BatchCompletedData contains structured data for batch completion events
type BatchCompletedData struct {
	// QueueLength is how many objects the batch walked through
	QueueLength int `json:"queue_length"`
}

// setData marshals a typed payload into the event's Data map
func (e *Event) setData(v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to unmarshal event data: %w", err)
	}
	e.Data = data
	return nil
}
