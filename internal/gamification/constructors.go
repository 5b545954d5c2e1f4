package gamification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewSessionCreatedEvent creates an event for a new discovery session
func NewSessionCreatedEvent(sessionID string, data SessionCreatedData) (*Event, error) {
	event := &Event{
		ID:        uuid.New().String(),
		Type:      EventTypeSessionCreated,
		Timestamp: time.Now(),
		SessionID: sessionID,
		XP:        0, // creating a session earns nothing by itself
		Message:   fmt.Sprintf("Scanned a scene with %d objects", data.ObjectCount),
	}
	if err := event.setData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewObjectExploredEvent creates an event for a first-time object exploration
func NewObjectExploredEvent(sessionID string, data ObjectExploredData) (*Event, error) {
	event := &Event{
		ID:        uuid.New().String(),
		Type:      EventTypeObjectExplored,
		Timestamp: time.Now(),
		SessionID: sessionID,
		XP:        XPObjectExplored,
		Message:   fmt.Sprintf("Explored %s", data.ObjectName),
	}
	if err := event.setData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewSessionCompletedEvent creates an event for a fully explored session
func NewSessionCompletedEvent(sessionID string, data SessionCompletedData) (*Event, error) {
	event := &Event{
		ID:        uuid.New().String(),
		Type:      EventTypeSessionCompleted,
		Timestamp: time.Now(),
		SessionID: sessionID,
		XP:        XPSessionCompleted,
		Message:   fmt.Sprintf("Explored all %d objects in a scene", data.ObjectCount),
	}
	if err := event.setData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewDiscoverySavedEvent creates an event for a museum save
func NewDiscoverySavedEvent(sessionID string, data DiscoverySavedData) (*Event, error) {
	event := &Event{
		ID:        uuid.New().String(),
		Type:      EventTypeDiscoverySaved,
		Timestamp: time.Now(),
		SessionID: sessionID,
		XP:        XPDiscoverySaved,
		Message:   fmt.Sprintf("Saved %s to the museum", data.ObjectName),
	}
	if err := event.setData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewDiscoveryRemovedEvent creates an event for a museum deletion. Removals
// earn nothing; the server needs them to keep its mirror counts honest.
func NewDiscoveryRemovedEvent(sessionID string, data DiscoveryRemovedData) (*Event, error) {
	event := &Event{
		ID:        uuid.New().String(),
		Type:      EventTypeDiscoveryRemoved,
		Timestamp: time.Now(),
		SessionID: sessionID,
		XP:        0,
		Message:   fmt.Sprintf("Removed %s from the museum", data.ObjectName),
	}
	if err := event.setData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewAchievementUnlockedEvent creates an event for an achievement the client
// observed; the server validates the unlock before it counts
func NewAchievementUnlockedEvent(sessionID string, data AchievementUnlockedData) (*Event, error) {
	if data.AchievementID == "" {
		return nil, fmt.Errorf("achievement id is required")
	}
	event := &Event{
		ID:        uuid.New().String(),
		Type:      EventTypeAchievementUnlocked,
		Timestamp: time.Now(),
		SessionID: sessionID,
		XP:        XPAchievementUnlocked,
		Message:   fmt.Sprintf("Achievement unlocked: %s", data.Title),
	}
	if err := event.setData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewBatchCompletedEvent creates an event for a finished batch walk
func NewBatchCompletedEvent(sessionID string, data BatchCompletedData) (*Event, error) {
	event := &Event{
		ID:        uuid.New().String(),
		Type:      EventTypeBatchCompleted,
		Timestamp: time.Now(),
		SessionID: sessionID,
		XP:        XPBatchCompleted,
		Message:   fmt.Sprintf("Finished a learning walk of %d objects", data.QueueLength),
	}
	if err := event.setData(data); err != nil {
		return nil, err
	}
	return event, nil
}
