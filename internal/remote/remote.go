// Package remote defines the contract for the cloud mirror: discovery rows,
// image uploads, and the gamification endpoints. Everything here is
// best-effort from the app's perspective; local storage stays authoritative
// and callers treat any remote failure as survivable.
package remote

import (
	"context"
	"errors"
	"time"

	"github.com/FloatingDust36/siyensyago/internal/types"
)

// ErrNotConfigured is returned by the disabled store; callers that see it
// simply skip mirroring.
var ErrNotConfigured = errors.New("remote storage not configured")

// Profile is the learner's server-side profile
type Profile struct {
	UserID     string           `json:"user_id"`
	Username   string           `json:"username"`
	GradeLevel types.GradeLevel `json:"grade_level"`
	TotalXP    int              `json:"total_xp"`
	CreatedAt  time.Time        `json:"created_at"`
}

// LeaderboardEntry is one row of the XP leaderboard
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	TotalXP  int    `json:"total_xp"`
}

// Store is the remote mirror contract. Every call is individually failable;
// no call may block or roll back local state on failure.
type Store interface {
	// UploadImage copies a local image to remote storage under remotePath
	// and returns its remote URI
	UploadImage(ctx context.Context, localPath, remotePath string) (string, error)

	// InsertDiscovery mirrors a discovery row
	InsertDiscovery(ctx context.Context, d *types.Discovery) error

	// DeleteDiscovery removes a mirrored discovery row. Remote image cleanup
	// is handled server-side, not by the client.
	DeleteDiscovery(ctx context.Context, id string) error

	// AwardXP records an XP-earning event against the learner's profile
	AwardXP(ctx context.Context, eventType, sessionID string, xp int) error

	// RecordAchievement records a permanent achievement unlock. Unlocking
	// the same achievement twice is a no-op, not an error.
	RecordAchievement(ctx context.Context, achievementID, sessionID string) error

	// Profile fetches the learner's profile
	Profile(ctx context.Context) (*Profile, error)

	// Leaderboard returns the top XP earners, highest first
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)

	// Close releases the underlying connections
	Close() error
}

// Disabled is the Store used when no remote backend is configured. Every
// call fails with ErrNotConfigured, which callers already swallow.
type Disabled struct{}

func (Disabled) UploadImage(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) InsertDiscovery(context.Context, *types.Discovery) error { return ErrNotConfigured }

func (Disabled) DeleteDiscovery(context.Context, string) error { return ErrNotConfigured }

func (Disabled) AwardXP(context.Context, string, string, int) error { return ErrNotConfigured }

func (Disabled) RecordAchievement(context.Context, string, string) error { return ErrNotConfigured }

func (Disabled) Profile(context.Context) (*Profile, error) { return nil, ErrNotConfigured }

func (Disabled) Leaderboard(context.Context, int) ([]LeaderboardEntry, error) {
	return nil, ErrNotConfigured
}

func (Disabled) Close() error { return nil }
