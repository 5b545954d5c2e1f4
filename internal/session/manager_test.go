package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/FloatingDust36/siyensyago/internal/storage/sqlite"
	"github.com/FloatingDust36/siyensyago/internal/types"
)

// fakeClock lets tests move time forward past the session TTL
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupManager(t *testing.T) (*Manager, *fakeClock) {
	t.Helper()
	kv, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create kv store: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })

	clock := newFakeClock()
	mgr, err := NewManager(ManagerConfig{
		Store: NewStore(kv),
		Now:   clock.Now,
	})
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	return mgr, clock
}

func threeObjects() []types.DetectedObject {
	box := types.BoundingBox{X: 10, Y: 10, Width: 20, Height: 20}
	return []types.DetectedObject{
		{ID: "o1", Name: "door", Confidence: 92, Category: types.CategoryPhysics, BoundingBox: box},
		{ID: "o2", Name: "window", Confidence: 88, Category: types.CategoryPhysics, BoundingBox: box},
		{ID: "o3", Name: "plant", Confidence: 95, Category: types.CategoryBiology, BoundingBox: box},
	}
}

func TestCreateAndGetSession(t *testing.T) {
	mgr, _ := setupManager(t)
	ctx := context.Background()

	id, err := mgr.CreateSession(ctx, "/photos/p1.jpg", threeObjects(), nil)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	s := mgr.GetSession(ctx, id)
	if s == nil {
		t.Fatal("GetSession returned nil for live session")
	}
	if len(s.DetectedObjects) != 3 {
		t.Errorf("detected objects = %d, want 3", len(s.DetectedObjects))
	}
	if len(s.ExploredObjectIDs) != 0 {
		t.Errorf("fresh session has explored objects: %v", s.ExploredObjectIDs)
	}
	if got := s.ExpiresAt.Sub(s.CreatedAt); got != types.DefaultSessionTTL {
		t.Errorf("TTL = %v, want %v", got, types.DefaultSessionTTL)
	}

	if mgr.GetSession(ctx, "no-such-session") != nil {
		t.Error("GetSession returned non-nil for unknown id")
	}
}

func TestCreateSessionWithNoObjects(t *testing.T) {
	mgr, _ := setupManager(t)
	ctx := context.Background()

	id, err := mgr.CreateSession(ctx, "/photos/empty.jpg", nil, nil)
	if err != nil {
		t.Fatalf("CreateSession with no objects failed: %v", err)
	}
	s := mgr.GetSession(ctx, id)
	if s == nil {
		t.Fatal("empty session should still be retrievable")
	}
	stats := mgr.SessionStats(ctx, id)
	if stats == nil || stats.TotalObjects != 0 {
		t.Errorf("empty session stats = %+v", stats)
	}
}

func TestMarkObjectAsExploredIdempotent(t *testing.T) {
	mgr, _ := setupManager(t)
	ctx := context.Background()

	id, _ := mgr.CreateSession(ctx, "/photos/p1.jpg", threeObjects(), nil)

	if err := mgr.MarkObjectAsExplored(ctx, id, "o1"); err != nil {
		t.Fatalf("MarkObjectAsExplored failed: %v", err)
	}
	if err := mgr.MarkObjectAsExplored(ctx, id, "o1"); err != nil {
		t.Fatalf("second MarkObjectAsExplored failed: %v", err)
	}

	s := mgr.GetSession(ctx, id)
	if len(s.ExploredObjectIDs) != 1 {
		t.Errorf("explored set after double mark = %v, want exactly [o1]", s.ExploredObjectIDs)
	}
}

func TestMarkObjectAsExploredRejectsUnknownID(t *testing.T) {
	mgr, _ := setupManager(t)
	ctx := context.Background()

	id, _ := mgr.CreateSession(ctx, "/photos/p1.jpg", threeObjects(), nil)

	err := mgr.MarkObjectAsExplored(ctx, id, "ghost")
	if !errors.Is(err, ErrUnknownObject) {
		t.Fatalf("marking unknown object = %v, want ErrUnknownObject", err)
	}

	s := mgr.GetSession(ctx, id)
	if len(s.ExploredObjectIDs) != 0 {
		t.Errorf("explored set polluted by unknown id: %v", s.ExploredObjectIDs)
	}

	// Missing session is a silent no-op, not an error
	if err := mgr.MarkObjectAsExplored(ctx, "no-such-session", "o1"); err != nil {
		t.Errorf("mark on missing session = %v, want nil", err)
	}
}

func TestSessionStatsProgression(t *testing.T) {
	mgr, _ := setupManager(t)
	ctx := context.Background()

	id, _ := mgr.CreateSession(ctx, "/photos/p1.jpg", threeObjects(), nil)

	_ = mgr.MarkObjectAsExplored(ctx, id, "o1")
	stats := mgr.SessionStats(ctx, id)
	if stats == nil {
		t.Fatal("SessionStats returned nil")
	}
	if stats.TotalObjects != 3 || stats.ExploredCount != 1 || stats.UnexploredCount != 2 {
		t.Errorf("stats after one explore = %+v", stats)
	}
	if stats.CompletionPercentage != 33 {
		t.Errorf("completion = %d, want 33", stats.CompletionPercentage)
	}

	_ = mgr.MarkObjectAsExplored(ctx, id, "o2")
	_ = mgr.MarkObjectAsExplored(ctx, id, "o3")
	stats = mgr.SessionStats(ctx, id)
	if stats.CompletionPercentage != 100 {
		t.Errorf("completion after all explored = %d, want 100", stats.CompletionPercentage)
	}
	if remaining := mgr.UnexploredObjects(ctx, id); len(remaining) != 0 {
		t.Errorf("unexplored after completion = %v, want empty", remaining)
	}
	if got := mgr.GetSession(ctx, id).State(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)); got != types.SessionStateComplete {
		t.Errorf("session state = %s, want complete", got)
	}
}

func TestTTLExpiryOnRead(t *testing.T) {
	mgr, clock := setupManager(t)
	ctx := context.Background()

	id, _ := mgr.CreateSession(ctx, "/photos/p1.jpg", threeObjects(), nil)

	clock.Advance(types.DefaultSessionTTL - time.Minute)
	if mgr.GetSession(ctx, id) == nil {
		t.Fatal("session expired before TTL")
	}

	clock.Advance(2 * time.Minute)
	if mgr.GetSession(ctx, id) != nil {
		t.Fatal("session still readable past TTL")
	}

	// Evicted for good, not just hidden
	if sessions := mgr.ListSessions(ctx); len(sessions) != 0 {
		t.Errorf("expired session still listed: %d", len(sessions))
	}
	if stats := mgr.SessionStats(ctx, id); stats != nil {
		t.Errorf("stats for expired session = %+v, want nil", stats)
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	mgr, clock := setupManager(t)
	ctx := context.Background()

	_, _ = mgr.CreateSession(ctx, "/photos/p1.jpg", threeObjects(), nil)
	clock.Advance(12 * time.Hour)
	fresh, _ := mgr.CreateSession(ctx, "/photos/p2.jpg", threeObjects(), nil)
	clock.Advance(13 * time.Hour) // first is 25h old, second 13h

	removed, err := mgr.CleanupExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("CleanupExpiredSessions failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if mgr.GetSession(ctx, fresh) == nil {
		t.Error("cleanup removed a live session")
	}

	// Nothing left to sweep
	removed, _ = mgr.CleanupExpiredSessions(ctx)
	if removed != 0 {
		t.Errorf("second sweep removed %d, want 0", removed)
	}
}

func TestResultCache(t *testing.T) {
	mgr, _ := setupManager(t)
	ctx := context.Background()

	id, _ := mgr.CreateSession(ctx, "/photos/p1.jpg", threeObjects(), nil)

	if _, ok := mgr.CachedResult(ctx, id, "o1"); ok {
		t.Fatal("cache hit before any save")
	}

	result := types.AnalysisResult{
		ObjectName:      "door",
		Confidence:      92,
		Category:        types.CategoryPhysics,
		FunFact:         "Door hinges are simple machines.",
		ScienceInAction: "Levers and torque.",
	}
	if err := mgr.SaveAnalysisResult(ctx, id, "o1", result); err != nil {
		t.Fatalf("SaveAnalysisResult failed: %v", err)
	}

	cached, ok := mgr.CachedResult(ctx, id, "o1")
	if !ok {
		t.Fatal("cache miss after save")
	}
	if cached.FunFact != result.FunFact {
		t.Errorf("cached fun fact = %q", cached.FunFact)
	}

	// Re-analysis overwrites the cached value
	result.FunFact = "Doors predate written history."
	_ = mgr.SaveAnalysisResult(ctx, id, "o1", result)
	cached, _ = mgr.CachedResult(ctx, id, "o1")
	if cached.FunFact != "Doors predate written history." {
		t.Errorf("cache not overwritten: %q", cached.FunFact)
	}

	// Missing session is a no-op on write
	if err := mgr.SaveAnalysisResult(ctx, "no-such-session", "o1", result); err != nil {
		t.Errorf("save to missing session = %v, want nil", err)
	}
}

func TestPersistenceAcrossManagers(t *testing.T) {
	kv, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create kv store: %v", err)
	}
	defer func() { _ = kv.Close() }()

	ctx := context.Background()
	clock := newFakeClock()
	store := NewStore(kv)

	mgr, _ := NewManager(ManagerConfig{Store: store, Now: clock.Now})
	id, _ := mgr.CreateSession(ctx, "/photos/p1.jpg", threeObjects(), &types.SceneContext{
		Location:    "kitchen",
		Description: "a home kitchen scene",
	})
	_ = mgr.MarkObjectAsExplored(ctx, id, "o2")

	// Second manager over the same store simulates an app restart
	mgr2, _ := NewManager(ManagerConfig{Store: store, Now: clock.Now})
	s := mgr2.GetSession(ctx, id)
	if s == nil {
		t.Fatal("session lost across restart")
	}
	if len(s.ExploredObjectIDs) != 1 || s.ExploredObjectIDs[0] != "o2" {
		t.Errorf("explored set lost across restart: %v", s.ExploredObjectIDs)
	}
	if s.Context == nil || s.Context.Location != "kitchen" {
		t.Errorf("scene context lost across restart: %+v", s.Context)
	}
	if s.DetectedObjects[1].BoundingBox.Width != 20 {
		t.Errorf("bounding box lost across restart: %+v", s.DetectedObjects[1].BoundingBox)
	}

	// Expired sessions are dropped at load time
	clock.Advance(25 * time.Hour)
	mgr3, _ := NewManager(ManagerConfig{Store: store, Now: clock.Now})
	if s := mgr3.GetSession(ctx, id); s != nil {
		t.Error("expired session survived restart load")
	}
}

func TestDeleteAndClear(t *testing.T) {
	mgr, _ := setupManager(t)
	ctx := context.Background()

	a, _ := mgr.CreateSession(ctx, "/photos/a.jpg", threeObjects(), nil)
	b, _ := mgr.CreateSession(ctx, "/photos/b.jpg", threeObjects(), nil)

	if err := mgr.DeleteSession(ctx, a); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if mgr.GetSession(ctx, a) != nil {
		t.Error("deleted session still readable")
	}
	if mgr.GetSession(ctx, b) == nil {
		t.Error("delete removed the wrong session")
	}
	if err := mgr.DeleteSession(ctx, a); err != nil {
		t.Errorf("deleting absent session = %v, want nil", err)
	}

	if err := mgr.ClearAllSessions(ctx); err != nil {
		t.Fatalf("ClearAllSessions failed: %v", err)
	}
	if sessions := mgr.ListSessions(ctx); len(sessions) != 0 {
		t.Errorf("sessions remain after clear: %d", len(sessions))
	}
}

func TestCorruptStoreLoadsEmpty(t *testing.T) {
	kv, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create kv store: %v", err)
	}
	defer func() { _ = kv.Close() }()

	ctx := context.Background()
	if err := kv.Set(ctx, "siyensya:discovery_sessions", []byte("{not json")); err != nil {
		t.Fatalf("Failed to plant corrupt blob: %v", err)
	}

	mgr, _ := NewManager(ManagerConfig{Store: NewStore(kv)})
	if sessions := mgr.ListSessions(ctx); len(sessions) != 0 {
		t.Errorf("corrupt store produced sessions: %d", len(sessions))
	}

	// The manager must stay usable: a new session writes cleanly over it
	if _, err := mgr.CreateSession(ctx, "/photos/p.jpg", threeObjects(), nil); err != nil {
		t.Fatalf("CreateSession after corrupt load failed: %v", err)
	}
}

func TestExploreEventsEmitted(t *testing.T) {
	kv, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create kv store: %v", err)
	}
	defer func() { _ = kv.Close() }()

	rec := &recordingRecorder{}
	mgr, _ := NewManager(ManagerConfig{Store: NewStore(kv), Recorder: rec})

	ctx := context.Background()
	id, _ := mgr.CreateSession(ctx, "/photos/p1.jpg", threeObjects(), nil)
	_ = mgr.MarkObjectAsExplored(ctx, id, "o1")
	_ = mgr.MarkObjectAsExplored(ctx, id, "o1") // idempotent: no second event
	_ = mgr.MarkObjectAsExplored(ctx, id, "o2")
	_ = mgr.MarkObjectAsExplored(ctx, id, "o3")

	want := []string{"session_created", "object_explored", "object_explored", "object_explored", "session_completed", "achievement_unlocked"}
	if len(rec.types) != len(want) {
		t.Fatalf("event stream = %v, want %v", rec.types, want)
	}
	for i := range want {
		if rec.types[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, rec.types[i], want[i])
		}
	}
}
