// Command siyensya is the SiyensyaGo core CLI: scan a photo for
// scientifically interesting objects, explore them at your grade level, and
// build a personal museum of discoveries.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/FloatingDust36/siyensyago/internal/config"
	"github.com/FloatingDust36/siyensyago/internal/gamification"
	"github.com/FloatingDust36/siyensyago/internal/museum"
	"github.com/FloatingDust36/siyensyago/internal/remote"
	"github.com/FloatingDust36/siyensyago/internal/remote/postgres"
	"github.com/FloatingDust36/siyensyago/internal/session"
	"github.com/FloatingDust36/siyensyago/internal/storage"
)

// Shared state initialized by setupApp and used by every subcommand
var (
	cfg         config.Config
	kv          storage.KV
	sessions    *session.Manager
	discoveries *museum.Reconciler
	remoteStore remote.Store
	recorder    gamification.Recorder

	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "siyensya",
	Short: "Discover the science hiding in everyday Filipino life",
	Long: `SiyensyaGo turns photos of your surroundings into STEM lessons.

Scan a photo to detect scientifically interesting objects, explore each one
at your grade level, and save your favorite discoveries to your museum.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: <data-dir>/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// setupApp loads config, opens the local stores, and connects the remote
// mirror when one is configured. Called by every subcommand that touches
// state; an unreachable remote degrades to local-only with a warning.
func setupApp(ctx context.Context) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	kv, err = storage.NewKV(ctx, &storage.Config{Path: cfg.DatabasePath()})
	if err != nil {
		return fmt.Errorf("failed to open local database: %w", err)
	}

	remoteStore = remote.Disabled{}
	recorder = gamification.NopRecorder{}
	if cfg.RemoteDSN != "" {
		rs, err := postgres.New(ctx, &postgres.Config{
			DSN:      cfg.RemoteDSN,
			UserID:   cfg.UserID,
			Username: cfg.Username,
		})
		if err != nil {
			// Offline is normal; everything keeps working locally
			slog.Warn("Remote mirror unavailable, continuing local-only", "error", err)
		} else {
			remoteStore = rs
			recorder = gamification.NewRemoteRecorder(rs)
		}
	}

	sessions, err = session.NewManager(session.ManagerConfig{
		Store:    session.NewStore(kv),
		Recorder: recorder,
		TTL:      time.Duration(cfg.SessionTTLHours) * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	discoveries, err = museum.NewReconciler(museum.Config{
		KV:       kv,
		Images:   storage.NewLocalImageStore(),
		Remote:   remoteStore,
		Recorder: recorder,
		ImageDir: cfg.MuseumImageDir(),
	})
	if err != nil {
		return fmt.Errorf("failed to create museum: %w", err)
	}
	return nil
}

// teardownApp flushes background mirrors and closes the stores
func teardownApp() {
	if discoveries != nil {
		discoveries.Wait()
	}
	if remoteStore != nil {
		_ = remoteStore.Close()
	}
	if kv != nil {
		_ = kv.Close()
	}
}
