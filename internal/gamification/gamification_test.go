package gamification

import (
	"context"
	"errors"
	"testing"
)

func TestEventConstructors(t *testing.T) {
	event, err := NewObjectExploredEvent("sess-1", ObjectExploredData{
		ObjectID:   "o1",
		ObjectName: "prism",
		Category:   "physics",
	})
	if err != nil {
		t.Fatalf("NewObjectExploredEvent failed: %v", err)
	}
	if event.ID == "" {
		t.Error("event has no id")
	}
	if event.Type != EventTypeObjectExplored {
		t.Errorf("event type = %s, want object_explored", event.Type)
	}
	if event.XP != XPObjectExplored {
		t.Errorf("event xp = %d, want %d", event.XP, XPObjectExplored)
	}
	if event.Data["object_name"] != "prism" {
		t.Errorf("event data object_name = %v, want prism", event.Data["object_name"])
	}

	created, err := NewSessionCreatedEvent("sess-1", SessionCreatedData{ObjectCount: 3})
	if err != nil {
		t.Fatalf("NewSessionCreatedEvent failed: %v", err)
	}
	if created.XP != 0 {
		t.Errorf("session creation should award no XP, got %d", created.XP)
	}
}

type failingSink struct{ calls int }

func (f *failingSink) AwardXP(ctx context.Context, eventType, sessionID string, xp int) error {
	f.calls++
	return errors.New("network down")
}

func TestRemoteRecorderSwallowsFailures(t *testing.T) {
	sink := &failingSink{}
	rec := NewRemoteRecorder(sink)

	event, _ := NewSessionCompletedEvent("sess-1", SessionCompletedData{ObjectCount: 2})
	rec.Record(context.Background(), event) // must not panic or propagate

	if sink.calls != 1 {
		t.Errorf("sink calls = %d, want 1", sink.calls)
	}

	// Zero-XP events are not forwarded at all
	created, _ := NewSessionCreatedEvent("sess-1", SessionCreatedData{ObjectCount: 1})
	rec.Record(context.Background(), created)
	if sink.calls != 1 {
		t.Errorf("zero-XP event was forwarded (calls = %d)", sink.calls)
	}
}

func TestAchievementUnlockedEvent(t *testing.T) {
	event, err := NewAchievementUnlockedEvent("sess-1", AchievementUnlockedData{
		AchievementID: AchievementSceneSweep,
		Title:         "Scene Sweep",
	})
	if err != nil {
		t.Fatalf("NewAchievementUnlockedEvent failed: %v", err)
	}
	if event.Type != EventTypeAchievementUnlocked {
		t.Errorf("event type = %s, want achievement_unlocked", event.Type)
	}
	if event.XP != XPAchievementUnlocked {
		t.Errorf("event xp = %d, want %d", event.XP, XPAchievementUnlocked)
	}
	if event.Data["achievement_id"] != AchievementSceneSweep {
		t.Errorf("event data achievement_id = %v, want %s", event.Data["achievement_id"], AchievementSceneSweep)
	}

	if _, err := NewAchievementUnlockedEvent("sess-1", AchievementUnlockedData{Title: "No ID"}); err == nil {
		t.Error("expected error for missing achievement id")
	}
}

// achievementSink implements both the XP and achievement RPC slices
type achievementSink struct {
	awards  []string
	unlocks []string
}

func (s *achievementSink) AwardXP(ctx context.Context, eventType, sessionID string, xp int) error {
	s.awards = append(s.awards, eventType)
	return nil
}

func (s *achievementSink) RecordAchievement(ctx context.Context, achievementID, sessionID string) error {
	s.unlocks = append(s.unlocks, achievementID)
	return nil
}

func TestRemoteRecorderForwardsAchievements(t *testing.T) {
	sink := &achievementSink{}
	rec := NewRemoteRecorder(sink)

	event, _ := NewAchievementUnlockedEvent("sess-1", AchievementUnlockedData{
		AchievementID: AchievementSceneSweep,
		Title:         "Scene Sweep",
	})
	rec.Record(context.Background(), event)

	if len(sink.unlocks) != 1 || sink.unlocks[0] != AchievementSceneSweep {
		t.Fatalf("unlocks = %v, want [%s]", sink.unlocks, AchievementSceneSweep)
	}
	// The advisory XP for the unlock still flows through the XP RPC
	if len(sink.awards) != 1 || sink.awards[0] != "achievement_unlocked" {
		t.Fatalf("awards = %v, want [achievement_unlocked]", sink.awards)
	}
}

func TestRemoteRecorderSkipsAchievementsWithoutSink(t *testing.T) {
	// A sink that only speaks XP must still receive the advisory award
	sink := &failingSink{}
	rec := NewRemoteRecorder(sink)

	event, _ := NewAchievementUnlockedEvent("sess-1", AchievementUnlockedData{
		AchievementID: AchievementSceneSweep,
		Title:         "Scene Sweep",
	})
	rec.Record(context.Background(), event) // must not panic on the missing RPC

	if sink.calls != 1 {
		t.Errorf("sink calls = %d, want 1", sink.calls)
	}
}
