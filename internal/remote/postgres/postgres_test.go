package postgres

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/FloatingDust36/siyensyago/internal/types"
)

// setupTestStore connects to the database named by SIYENSYA_TEST_PG_DSN and
// truncates its tables. Tests are skipped when no database is available.
func setupTestStore(t *testing.T) *RemoteStore {
	t.Helper()
	ctx := context.Background()

	dsn := os.Getenv("SIYENSYA_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("Skipping PostgreSQL test (SIYENSYA_TEST_PG_DSN not set)")
	}

	cfg := DefaultConfig()
	cfg.DSN = dsn
	cfg.UserID = "test-user"
	cfg.Username = "tester"

	store, err := New(ctx, cfg)
	if err != nil {
		t.Skipf("Skipping PostgreSQL test (database not available): %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.pool.Exec(ctx, `
		TRUNCATE TABLE achievements, xp_events, discovery_images, discoveries, profiles CASCADE;
	`)
	if err != nil {
		t.Fatalf("Failed to clean up test database: %v", err)
	}

	// Re-create the profile row the truncate just removed
	_, err = store.pool.Exec(ctx,
		`INSERT INTO profiles (user_id, username) VALUES ($1, $2)`,
		cfg.UserID, cfg.Username)
	if err != nil {
		t.Fatalf("Failed to recreate test profile: %v", err)
	}

	return store
}

func testDiscovery() *types.Discovery {
	return &types.Discovery{
		ID:              "d1",
		ObjectName:      "magnet",
		Confidence:      90,
		Category:        types.CategoryPhysics,
		ImageURI:        "remote://discoveries/d1.jpg",
		FunFact:         "Magnets have two poles.",
		ScienceInAction: "Magnetic fields exert force at a distance.",
		ExploreFurther:  []string{"electromagnetism"},
		Timestamp:       time.Now().UTC(),
		DateSaved:       "2026-08-31",
		SyncState:       types.SyncStatePending,
	}
}

func TestDiscoveryMirrorRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	d := testDiscovery()
	if err := store.InsertDiscovery(ctx, d); err != nil {
		t.Fatalf("InsertDiscovery failed: %v", err)
	}

	// A retried sync must converge, not fail
	if err := store.InsertDiscovery(ctx, d); err != nil {
		t.Fatalf("repeated InsertDiscovery failed: %v", err)
	}

	var count int
	if err := store.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM discoveries WHERE id = $1`, d.ID).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("discovery rows = %d, want 1", count)
	}

	if err := store.DeleteDiscovery(ctx, d.ID); err != nil {
		t.Fatalf("DeleteDiscovery failed: %v", err)
	}
	// Deleting a never-mirrored id is fine
	if err := store.DeleteDiscovery(ctx, "never-mirrored"); err != nil {
		t.Errorf("DeleteDiscovery for absent id = %v, want nil", err)
	}
}

func TestUploadImage(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	local := filepath.Join(dir, "d1.jpg")
	if err := os.WriteFile(local, []byte("image bytes"), 0o644); err != nil {
		t.Fatalf("Failed to write test image: %v", err)
	}

	uri, err := store.UploadImage(ctx, local, "discoveries/d1.jpg")
	if err != nil {
		t.Fatalf("UploadImage failed: %v", err)
	}
	if uri != "remote://discoveries/d1.jpg" {
		t.Errorf("uri = %s", uri)
	}

	// Re-upload overwrites rather than failing
	if _, err := store.UploadImage(ctx, local, "discoveries/d1.jpg"); err != nil {
		t.Fatalf("repeated UploadImage failed: %v", err)
	}

	if _, err := store.UploadImage(ctx, filepath.Join(dir, "missing.jpg"), "discoveries/x.jpg"); err == nil {
		t.Error("UploadImage succeeded for missing local file")
	}
}

func TestAwardXPAndProfile(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.AwardXP(ctx, "object_explored", "s1", 10); err != nil {
		t.Fatalf("AwardXP failed: %v", err)
	}
	if err := store.AwardXP(ctx, "session_completed", "s1", 25); err != nil {
		t.Fatalf("AwardXP failed: %v", err)
	}
	// Zero XP is a no-op, not a ledger row
	if err := store.AwardXP(ctx, "session_created", "s1", 0); err != nil {
		t.Fatalf("AwardXP with zero failed: %v", err)
	}

	p, err := store.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if p.TotalXP != 35 {
		t.Errorf("total xp = %d, want 35", p.TotalXP)
	}

	var ledger int
	if err := store.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM xp_events WHERE user_id = $1`, store.userID).Scan(&ledger); err != nil {
		t.Fatalf("ledger count failed: %v", err)
	}
	if ledger != 2 {
		t.Errorf("ledger rows = %d, want 2", ledger)
	}
}

func TestLeaderboard(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.pool.Exec(ctx, `
		INSERT INTO profiles (user_id, username, total_xp) VALUES
			('u2', 'maria', 120),
			('u3', 'jose', 80)`)
	if err != nil {
		t.Fatalf("Failed to seed profiles: %v", err)
	}
	if err := store.AwardXP(ctx, "object_explored", "", 200); err != nil {
		t.Fatalf("AwardXP failed: %v", err)
	}

	entries, err := store.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Username != "tester" || entries[0].Rank != 1 {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Username != "maria" {
		t.Errorf("second entry = %+v", entries[1])
	}
}

func TestRecordAchievementIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.RecordAchievement(ctx, "scene_sweep", "s1"); err != nil {
		t.Fatalf("RecordAchievement failed: %v", err)
	}
	// A second unlock of the same achievement converges on one row
	if err := store.RecordAchievement(ctx, "scene_sweep", "s2"); err != nil {
		t.Fatalf("repeat RecordAchievement failed: %v", err)
	}

	var count int
	err := store.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM achievements WHERE user_id = $1`,
		store.userID).Scan(&count)
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("achievement rows = %d, want 1", count)
	}

	if err := store.RecordAchievement(ctx, "", "s1"); err == nil {
		t.Error("empty achievement id accepted")
	}
}
