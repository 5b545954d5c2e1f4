// Package session implements the discovery-session state machine: durable
// storage of live sessions, lazy TTL expiry, and exploration tracking.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/FloatingDust36/siyensyago/internal/storage"
	"github.com/FloatingDust36/siyensyago/internal/types"
)

// sessionsKey is the single namespaced key holding every live session.
// Every mutation rewrites the whole collection; session count stays small
// because TTL eviction caps it at roughly a day of captures.
const sessionsKey = "siyensya:discovery_sessions"

// envelopeVersion tags the serialized blob so a future schema change can
// migrate instead of discarding
const envelopeVersion = 1

// envelope is the on-disk shape of the session collection
type envelope struct {
	Version  int                       `json:"version"`
	Sessions []*types.DiscoverySession `json:"sessions"`
}

// Store persists the full set of live sessions under one key.
// It has no concurrency control of its own; the Manager serializes access.
type Store struct {
	kv storage.KV
}

// NewStore creates a session store over the given key-value backend
func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// LoadAll deserializes the stored session collection. Missing or corrupt
// data yields an empty set, never an error: the app must stay usable with a
// fresh session set, and a capture session is cheap to lose.
func (s *Store) LoadAll(ctx context.Context) []*types.DiscoverySession {
	raw, err := s.kv.Get(ctx, sessionsKey)
	if err != nil {
		slog.Warn("failed to read session collection, starting empty", "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		slog.Warn("corrupt session collection, starting empty", "error", err)
		return nil
	}
	if env.Version != envelopeVersion {
		slog.Warn("unknown session collection version, starting empty", "version", env.Version)
		return nil
	}
	return env.Sessions
}

// SaveAll serializes and overwrites the full session collection.
// Write failures are surfaced: silently losing exploration progress is not
// acceptable.
func (s *Store) SaveAll(ctx context.Context, sessions []*types.DiscoverySession) error {
	env := envelope{Version: envelopeVersion, Sessions: sessions}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to serialize sessions: %w", err)
	}
	if err := s.kv.Set(ctx, sessionsKey, raw); err != nil {
		return fmt.Errorf("failed to persist sessions: %w", err)
	}
	return nil
}
