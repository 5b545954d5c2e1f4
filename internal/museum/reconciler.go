// Package museum is the learner's permanent collection: discoveries saved
// from explored objects. Local storage is the authoritative copy; a remote
// mirror is maintained best-effort and never blocks or rolls back a local
// write.
package museum

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FloatingDust36/siyensyago/internal/gamification"
	"github.com/FloatingDust36/siyensyago/internal/remote"
	"github.com/FloatingDust36/siyensyago/internal/storage"
	"github.com/FloatingDust36/siyensyago/internal/types"
)

// discoveriesKey is the KV key the whole discovery list serializes under
const discoveriesKey = "siyensya:discoveries"

// SaveInput carries everything needed to turn an explored result into a
// durable discovery
type SaveInput struct {
	Result    types.AnalysisResult
	ImagePath string // local photo to copy into the museum's image dir

	// Optional backrefs to the originating session
	SessionID    string
	FullImageURI string
	BoundingBox  *types.BoundingBox
}

// Reconciler owns the discovery list. Saves land locally first and are
// mirrored to the remote store on a background goroutine; the remote copy
// may lag but is never treated as ground truth.
type Reconciler struct {
	kv       storage.KV
	images   storage.ImageStore
	remote   remote.Store
	recorder gamification.Recorder
	imageDir string
	now      func() time.Time

	mu          sync.Mutex
	discoveries []*types.Discovery
	loaded      bool

	// syncWG tracks in-flight mirror goroutines so tests and shutdown can
	// wait for them
	syncWG sync.WaitGroup
}

// Config holds reconciler configuration
type Config struct {
	KV       storage.KV
	Images   storage.ImageStore
	Remote   remote.Store          // optional; nil disables mirroring
	Recorder gamification.Recorder // optional; nil disables event emission
	ImageDir string                // where saved discovery images live
	Now      func() time.Time      // test hook; defaults to time.Now
}

// NewReconciler creates a discovery reconciler
func NewReconciler(cfg Config) (*Reconciler, error) {
	if cfg.KV == nil {
		return nil, fmt.Errorf("kv store is required")
	}
	if cfg.Images == nil {
		return nil, fmt.Errorf("image store is required")
	}
	if cfg.ImageDir == "" {
		return nil, fmt.Errorf("image dir is required")
	}
	rem := cfg.Remote
	if rem == nil {
		rem = remote.Disabled{}
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = gamification.NopRecorder{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Reconciler{
		kv:       cfg.KV,
		images:   cfg.Images,
		remote:   rem,
		recorder: recorder,
		imageDir: cfg.ImageDir,
		now:      now,
	}, nil
}

// SaveDiscovery persists a new discovery locally and prepends it to the
// list. A local failure is the caller's problem to surface; the remote
// mirror then proceeds asynchronously and its failures are logged and
// swallowed.
func (r *Reconciler) SaveDiscovery(ctx context.Context, input SaveInput) (*types.Discovery, error) {
	if err := input.Result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis result: %w", err)
	}

	now := r.now()
	id := uuid.New().String()
	imageURI := filepath.Join(r.imageDir, id+filepath.Ext(input.ImagePath))

	d := &types.Discovery{
		ID:              id,
		ObjectName:      input.Result.ObjectName,
		Confidence:      input.Result.Confidence,
		Category:        input.Result.Category,
		ImageURI:        imageURI,
		FunFact:         input.Result.FunFact,
		ScienceInAction: input.Result.ScienceInAction,
		WhyItMatters:    input.Result.WhyItMatters,
		TryThis:         input.Result.TryThis,
		ExploreFurther:  input.Result.ExploreFurther,
		Timestamp:       now,
		DateSaved:       now.Format("2006-01-02"),
		SyncState:       types.SyncStatePending,
		SessionID:       input.SessionID,
		FullImageURI:    input.FullImageURI,
		BoundingBox:     input.BoundingBox,
	}

	if err := r.images.Copy(input.ImagePath, imageURI); err != nil {
		return nil, fmt.Errorf("failed to copy discovery image: %w", err)
	}

	r.mu.Lock()
	if err := r.loadLocked(ctx); err != nil {
		r.mu.Unlock()
		_ = r.images.Delete(imageURI)
		return nil, err
	}
	r.discoveries = append([]*types.Discovery{d}, r.discoveries...)
	if err := r.persistLocked(ctx); err != nil {
		r.discoveries = r.discoveries[1:]
		r.mu.Unlock()
		_ = r.images.Delete(imageURI)
		return nil, fmt.Errorf("failed to persist discovery: %w", err)
	}
	r.mu.Unlock()

	if event, err := gamification.NewDiscoverySavedEvent(d.SessionID, gamification.DiscoverySavedData{
		DiscoveryID: d.ID,
		ObjectName:  d.ObjectName,
		Category:    d.Category,
	}); err == nil {
		r.recorder.Record(ctx, event)
	}

	// Local save succeeded; the mirror happens off the caller's path
	r.syncWG.Add(1)
	go func() {
		defer r.syncWG.Done()
		r.mirror(context.WithoutCancel(ctx), d)
	}()

	return d, nil
}

// RemoveDiscovery deletes the local record and image, then best-effort
// removes the remote row. Remote image cleanup is deferred to the server.
func (r *Reconciler) RemoveDiscovery(ctx context.Context, id string) error {
	r.mu.Lock()
	if err := r.loadLocked(ctx); err != nil {
		r.mu.Unlock()
		return err
	}

	idx := -1
	for i, d := range r.discoveries {
		if d.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return fmt.Errorf("discovery %s not found", id)
	}

	removed := r.discoveries[idx]
	r.discoveries = append(r.discoveries[:idx], r.discoveries[idx+1:]...)
	if err := r.persistLocked(ctx); err != nil {
		// Restore list order on failure
		r.discoveries = append(r.discoveries[:idx], append([]*types.Discovery{removed}, r.discoveries[idx:]...)...)
		r.mu.Unlock()
		return fmt.Errorf("failed to persist removal: %w", err)
	}
	r.mu.Unlock()

	if err := r.images.Delete(removed.ImageURI); err != nil {
		slog.Warn("Failed to delete local discovery image", "id", id, "error", err)
	}

	if event, err := gamification.NewDiscoveryRemovedEvent(removed.SessionID, gamification.DiscoveryRemovedData{
		DiscoveryID: removed.ID,
		ObjectName:  removed.ObjectName,
	}); err == nil {
		r.recorder.Record(ctx, event)
	}

	r.syncWG.Add(1)
	go func() {
		defer r.syncWG.Done()
		if err := r.remote.DeleteDiscovery(context.WithoutCancel(ctx), id); err != nil {
			slog.Warn("Remote discovery delete failed", "id", id, "error", err)
		}
	}()

	return nil
}

// Discoveries returns the saved list, newest first. The slice is a copy;
// mutating it does not affect the reconciler.
func (r *Reconciler) Discoveries(ctx context.Context) ([]*types.Discovery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.loadLocked(ctx); err != nil {
		return nil, err
	}
	out := make([]*types.Discovery, len(r.discoveries))
	copy(out, r.discoveries)
	return out, nil
}

// SyncPending retries the remote mirror for every discovery still marked
// pending, synchronously, and returns how many were brought up to date.
// Individual failures are logged and skipped; the sweep keeps going.
func (r *Reconciler) SyncPending(ctx context.Context) (int, error) {
	r.mu.Lock()
	if err := r.loadLocked(ctx); err != nil {
		r.mu.Unlock()
		return 0, err
	}
	pending := make([]*types.Discovery, 0)
	for _, d := range r.discoveries {
		if d.SyncState == types.SyncStatePending {
			pending = append(pending, d)
		}
	}
	r.mu.Unlock()

	// Wait out any in-flight background mirrors so the sweep doesn't race them
	r.syncWG.Wait()

	synced := 0
	for _, d := range pending {
		if d.SyncState == types.SyncStateSynced {
			continue // a background mirror got there first
		}
		if err := r.mirrorOnce(ctx, d); err != nil {
			slog.Warn("Discovery sync failed", "id", d.ID, "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

// Wait blocks until all in-flight background mirrors finish. Called on
// shutdown so a fast exit doesn't strand half-finished uploads mid-write.
func (r *Reconciler) Wait() {
	r.syncWG.Wait()
}

// mirror pushes one discovery to the remote store, logging and swallowing
// any failure
func (r *Reconciler) mirror(ctx context.Context, d *types.Discovery) {
	if err := r.mirrorOnce(ctx, d); err != nil {
		slog.Warn("Remote discovery mirror failed; will retry on next sync",
			"id", d.ID, "error", err)
	}
}

// mirrorOnce uploads the image, inserts the row, and marks the local record
// synced
func (r *Reconciler) mirrorOnce(ctx context.Context, d *types.Discovery) error {
	remotePath := "discoveries/" + filepath.Base(d.ImageURI)
	remoteURI, err := r.remote.UploadImage(ctx, d.ImageURI, remotePath)
	if err != nil {
		return fmt.Errorf("image upload: %w", err)
	}

	mirrored := *d
	mirrored.ImageURI = remoteURI
	if err := r.remote.InsertDiscovery(ctx, &mirrored); err != nil {
		return fmt.Errorf("row insert: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	d.SyncState = types.SyncStateSynced
	if err := r.persistLocked(ctx); err != nil {
		// The mirror itself succeeded; the stale pending flag just means an
		// extra (idempotent) sync later
		slog.Warn("Failed to persist sync state", "id", d.ID, "error", err)
	}
	return nil
}

// loadLocked reads the discovery list from the KV store on first use.
// Caller must hold mu.
func (r *Reconciler) loadLocked(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	raw, err := r.kv.Get(ctx, discoveriesKey)
	if err != nil {
		return fmt.Errorf("failed to load discoveries: %w", err)
	}
	if raw != nil {
		list, err := decodeDiscoveries(raw)
		if err != nil {
			// Corrupt blob: start empty rather than brick the museum
			slog.Warn("Discovery list corrupt, starting empty", "error", err)
			list = nil
		}
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Timestamp.After(list[j].Timestamp)
		})
		r.discoveries = list
	}
	r.loaded = true
	return nil
}

// persistLocked writes the full discovery list. Caller must hold mu.
func (r *Reconciler) persistLocked(ctx context.Context) error {
	raw, err := encodeDiscoveries(r.discoveries)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, discoveriesKey, raw)
}
