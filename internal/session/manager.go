package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FloatingDust36/siyensyago/internal/gamification"
	"github.com/FloatingDust36/siyensyago/internal/types"
)

// ErrUnknownObject is returned when an object id does not belong to the
// session's detected set. The explored set only ever holds real object ids.
var ErrUnknownObject = errors.New("object id not in session's detected objects")

// Manager is the authoritative in-memory index of live discovery sessions,
// backed by the Store. One instance exists per process and is passed to
// consumers explicitly; no package-level state.
//
// Every mutation runs a read-modify-persist cycle over the full collection,
// so all mutating operations are serialized behind one mutex. Callers never
// see a lost update regardless of how their goroutines interleave.
type Manager struct {
	store    *Store
	recorder gamification.Recorder
	ttl      time.Duration
	now      func() time.Time

	initOnce sync.Once

	mu       sync.Mutex
	sessions map[string]*types.DiscoverySession
}

// ManagerConfig holds session manager configuration
type ManagerConfig struct {
	Store    *Store
	Recorder gamification.Recorder // optional; nil disables event emission
	TTL      time.Duration         // defaults to types.DefaultSessionTTL
	Now      func() time.Time      // test hook; defaults to time.Now
}

// NewManager creates a session manager. Call Initialize before first use;
// every public method also initializes lazily, so forgetting is safe.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = gamification.NopRecorder{}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = types.DefaultSessionTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store:    cfg.Store,
		recorder: recorder,
		ttl:      ttl,
		now:      now,
		sessions: make(map[string]*types.DiscoverySession),
	}, nil
}

// Initialize loads all persisted sessions, discarding any already expired.
// Idempotent: repeated calls do no duplicate work.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		loaded := m.store.LoadAll(ctx)
		now := m.now()

		m.mu.Lock()
		defer m.mu.Unlock()
		for _, s := range loaded {
			if s == nil || s.IsExpired(now) {
				continue
			}
			m.sessions[s.SessionID] = s
		}
	})
}

// CreateSession builds a new session from a detection run and persists it.
// An empty detected set is allowed; the caller owns the empty-results UX.
func (m *Manager) CreateSession(ctx context.Context, fullImageURI string, objects []types.DetectedObject, sceneCtx *types.SceneContext) (string, error) {
	m.Initialize(ctx)

	now := m.now()
	s := &types.DiscoverySession{
		SessionID:         uuid.New().String(),
		FullImageURI:      fullImageURI,
		DetectedObjects:   objects,
		ExploredObjectIDs: []string{},
		Context:           sceneCtx,
		Results:           make(map[string]types.AnalysisResult),
		CreatedAt:         now,
		ExpiresAt:         now.Add(m.ttl),
	}
	if err := s.Validate(); err != nil {
		return "", fmt.Errorf("invalid session: %w", err)
	}

	m.mu.Lock()
	m.sessions[s.SessionID] = s
	err := m.persistLocked(ctx)
	if err != nil {
		delete(m.sessions, s.SessionID)
	}
	m.mu.Unlock()
	if err != nil {
		return "", err
	}

	location := ""
	if sceneCtx != nil {
		location = sceneCtx.Location
	}
	if event, eerr := gamification.NewSessionCreatedEvent(s.SessionID, gamification.SessionCreatedData{
		ObjectCount: len(objects),
		Location:    location,
	}); eerr == nil {
		m.recorder.Record(ctx, event)
	}

	return s.SessionID, nil
}

// GetSession returns the session, or nil if absent or expired. Expiry is
// enforced lazily here: an expired session is evicted on read, and eviction
// persists so a restart doesn't resurrect it.
func (m *Manager) GetSession(ctx context.Context, sessionID string) *types.DiscoverySession {
	m.Initialize(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	if s.IsExpired(m.now()) {
		delete(m.sessions, sessionID)
		// Eviction persistence is best-effort; the session is gone from
		// memory either way and stays unreachable.
		_ = m.persistLocked(ctx)
		return nil
	}
	return s
}

// MarkObjectAsExplored records that an object's content was displayed.
// Idempotent: marking an already-explored object changes nothing. Unknown
// object ids are rejected with ErrUnknownObject rather than polluting the
// explored set. Missing or expired sessions are a silent no-op.
func (m *Manager) MarkObjectAsExplored(ctx context.Context, sessionID, objectID string) error {
	m.Initialize(ctx)

	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok && s.IsExpired(m.now()) {
		delete(m.sessions, sessionID)
		_ = m.persistLocked(ctx)
		ok = false
	}
	if !ok {
		m.mu.Unlock()
		return nil
	}
	if !s.HasObject(objectID) {
		m.mu.Unlock()
		return fmt.Errorf("session %s: %w: %s", sessionID, ErrUnknownObject, objectID)
	}
	if s.IsExplored(objectID) {
		m.mu.Unlock()
		return nil
	}

	s.ExploredObjectIDs = append(s.ExploredObjectIDs, objectID)
	if err := m.persistLocked(ctx); err != nil {
		s.ExploredObjectIDs = s.ExploredObjectIDs[:len(s.ExploredObjectIDs)-1]
		m.mu.Unlock()
		return err
	}
	completed := s.State(m.now()) == types.SessionStateComplete
	var explored *types.DetectedObject
	for i := range s.DetectedObjects {
		if s.DetectedObjects[i].ID == objectID {
			explored = &s.DetectedObjects[i]
			break
		}
	}
	objectCount := len(s.DetectedObjects)
	m.mu.Unlock()

	if explored != nil {
		if event, err := gamification.NewObjectExploredEvent(sessionID, gamification.ObjectExploredData{
			ObjectID:   explored.ID,
			ObjectName: explored.Name,
			Category:   explored.Category,
		}); err == nil {
			m.recorder.Record(ctx, event)
		}
	}
	if completed {
		if event, err := gamification.NewSessionCompletedEvent(sessionID, gamification.SessionCompletedData{
			ObjectCount: objectCount,
		}); err == nil {
			m.recorder.Record(ctx, event)
		}
		if event, err := gamification.NewAchievementUnlockedEvent(sessionID, gamification.AchievementUnlockedData{
			AchievementID: gamification.AchievementSceneSweep,
			Title:         "Scene Sweep",
		}); err == nil {
			m.recorder.Record(ctx, event)
		}
	}
	return nil
}

// SaveAnalysisResult caches generated content for an object so revisits skip
// the external call. Missing session is a no-op; the result cache is an
// optimization, not state the caller depends on.
func (m *Manager) SaveAnalysisResult(ctx context.Context, sessionID, objectID string, result types.AnalysisResult) error {
	m.Initialize(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok || s.IsExpired(m.now()) {
		return nil
	}
	if s.Results == nil {
		s.Results = make(map[string]types.AnalysisResult)
	}
	prev, hadPrev := s.Results[objectID]
	s.Results[objectID] = result
	if err := m.persistLocked(ctx); err != nil {
		if hadPrev {
			s.Results[objectID] = prev
		} else {
			delete(s.Results, objectID)
		}
		return err
	}
	return nil
}

// CachedResult returns the cached analysis for an object, if any
func (m *Manager) CachedResult(ctx context.Context, sessionID, objectID string) (types.AnalysisResult, bool) {
	m.Initialize(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok || s.IsExpired(m.now()) {
		return types.AnalysisResult{}, false
	}
	result, ok := s.Results[objectID]
	return result, ok
}

// UnexploredObjects returns the session's detected objects not yet explored,
// in detection order. Empty for missing or expired sessions.
func (m *Manager) UnexploredObjects(ctx context.Context, sessionID string) []types.DetectedObject {
	s := m.GetSession(ctx, sessionID)
	if s == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return s.UnexploredObjects()
}

// SessionStats returns progress statistics, or nil for missing/expired sessions
func (m *Manager) SessionStats(ctx context.Context, sessionID string) *types.SessionStats {
	s := m.GetSession(ctx, sessionID)
	if s == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := s.Stats(m.now())
	return &stats
}

// CleanupExpiredSessions sweeps every expired session out of the map and the
// store. Independent of the lazy per-read eviction; intended for app
// foregrounding and the CLI cleanup command. Returns the number removed.
func (m *Manager) CleanupExpiredSessions(ctx context.Context) (int, error) {
	m.Initialize(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var expired []string
	for id, s := range m.sessions {
		if s.IsExpired(now) {
			expired = append(expired, id)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}
	for _, id := range expired {
		delete(m.sessions, id)
	}
	if err := m.persistLocked(ctx); err != nil {
		return 0, err
	}
	return len(expired), nil
}

// DeleteSession removes a session explicitly. Unknown ids are a no-op.
func (m *Manager) DeleteSession(ctx context.Context, sessionID string) error {
	m.Initialize(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return nil
	}
	delete(m.sessions, sessionID)
	return m.persistLocked(ctx)
}

// ClearAllSessions removes every session, e.g. on sign-out for privacy
func (m *Manager) ClearAllSessions(ctx context.Context) error {
	m.Initialize(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = make(map[string]*types.DiscoverySession)
	return m.persistLocked(ctx)
}

// ListSessions returns all live sessions (expired ones excluded), newest first
func (m *Manager) ListSessions(ctx context.Context) []*types.DiscoverySession {
	m.Initialize(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var live []*types.DiscoverySession
	for _, s := range m.sessions {
		if !s.IsExpired(now) {
			live = append(live, s)
		}
	}
	// Insertion order is lost in the map; newest-first is the useful view
	sort.Slice(live, func(i, j int) bool {
		return live[i].CreatedAt.After(live[j].CreatedAt)
	})
	return live
}

// persistLocked writes the full session set. Caller must hold m.mu.
func (m *Manager) persistLocked(ctx context.Context) error {
	all := make([]*types.DiscoverySession, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	return m.store.SaveAll(ctx, all)
}
