package gamification

import (
	"context"
	"log/slog"
)

// Recorder receives lifecycle events as they happen. Recording is always
// best-effort: a recorder must never fail the operation that produced the
// event, so Record returns nothing.
type Recorder interface {
	Record(ctx context.Context, event *Event)
}

// NopRecorder discards all events. Used when gamification is disabled and in
// tests that don't care about the event stream.
type NopRecorder struct{}

// Record discards the event
func (NopRecorder) Record(ctx context.Context, event *Event) {}

// XPSink is the slice of the remote backend the recorder needs: the RPC that
// reports an XP-earning event. Defined here so the recorder can be tested
// without a database.
type XPSink interface {
	AwardXP(ctx context.Context, eventType string, sessionID string, xp int) error
}

// AchievementSink is the optional backend slice that records permanent
// achievement unlocks. A sink that also implements it gets achievement
// events forwarded to the dedicated RPC.
type AchievementSink interface {
	RecordAchievement(ctx context.Context, achievementID, sessionID string) error
}

// RemoteRecorder forwards XP-earning events to the remote gamification RPC.
// Failures are logged and swallowed; the server reconciles totals on its own
// schedule, so a dropped event costs advisory XP only.
type RemoteRecorder struct {
	sink XPSink
}

// NewRemoteRecorder creates a recorder that forwards events to the given sink
func NewRemoteRecorder(sink XPSink) *RemoteRecorder {
	return &RemoteRecorder{sink: sink}
}

// Record forwards the event to the remote sink if it carries an XP award.
// Achievement events additionally hit the dedicated unlock RPC.
func (r *RemoteRecorder) Record(ctx context.Context, event *Event) {
	if event == nil {
		return
	}
	if event.Type == EventTypeAchievementUnlocked {
		if sink, ok := r.sink.(AchievementSink); ok {
			id, _ := event.Data["achievement_id"].(string)
			if err := sink.RecordAchievement(ctx, id, event.SessionID); err != nil {
				slog.Warn("failed to record achievement unlock, continuing",
					"achievement_id", id,
					"session_id", event.SessionID,
					"error", err)
			}
		}
	}
	if event.XP == 0 {
		return
	}
	if err := r.sink.AwardXP(ctx, string(event.Type), event.SessionID, event.XP); err != nil {
		slog.Warn("failed to report XP event, continuing",
			"event_type", event.Type,
			"session_id", event.SessionID,
			"error", err)
	}
}

// MemoryRecorder collects events in memory for tests and the CLI status view
type MemoryRecorder struct {
	Events []*Event
}

// Record appends the event
func (m *MemoryRecorder) Record(ctx context.Context, event *Event) {
	m.Events = append(m.Events, event)
}
