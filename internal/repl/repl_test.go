package repl

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/FloatingDust36/siyensyago/internal/ai"
	"github.com/FloatingDust36/siyensyago/internal/batch"
	"github.com/FloatingDust36/siyensyago/internal/museum"
	"github.com/FloatingDust36/siyensyago/internal/session"
	"github.com/FloatingDust36/siyensyago/internal/storage"
	"github.com/FloatingDust36/siyensyago/internal/storage/sqlite"
	"github.com/FloatingDust36/siyensyago/internal/types"
)

// stubAnalyzer returns canned content for any object
type stubAnalyzer struct{}

func (stubAnalyzer) AnalyzeObject(_ context.Context, _ string, object types.DetectedObject, _ *types.SceneContext, _ types.GradeLevel) (*types.AnalysisResult, error) {
	return &types.AnalysisResult{
		ObjectName:      object.Name,
		Confidence:      object.Confidence,
		Category:        object.Category,
		FunFact:         "fact",
		ScienceInAction: "science",
	}, nil
}

var _ ai.Analyzer = stubAnalyzer{}

func setupShell(t *testing.T) (*REPL, string) {
	t.Helper()
	kv, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create kv store: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })

	mgr, err := session.NewManager(session.ManagerConfig{Store: session.NewStore(kv)})
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	ctx := context.Background()
	objects := []types.DetectedObject{
		{ID: "obj-1", Name: "door", Confidence: 90, Category: types.CategoryPhysics,
			BoundingBox: types.BoundingBox{X: 10, Y: 10, Width: 20, Height: 40}},
	}
	id, err := mgr.CreateSession(ctx, "/photos/p.jpg", objects, nil)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	orch, err := batch.NewOrchestrator(batch.Config{Sessions: mgr, Analyzer: stubAnalyzer{}})
	if err != nil {
		t.Fatalf("Failed to create orchestrator: %v", err)
	}

	mus, err := museum.NewReconciler(museum.Config{
		KV:       kv,
		Images:   storage.NewLocalImageStore(),
		ImageDir: filepath.Join(t.TempDir(), "museum"),
	})
	if err != nil {
		t.Fatalf("Failed to create museum: %v", err)
	}

	shell, err := New(&Config{
		Sessions:  mgr,
		Orch:      orch,
		Museum:    mus,
		SessionID: id,
		Grade:     types.GradeJuniorHigh,
	})
	if err != nil {
		t.Fatalf("Failed to create shell: %v", err)
	}
	shell.ctx = ctx
	return shell, id
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(&Config{}); err == nil {
		t.Error("expected error for missing session manager")
	}
}

func TestExitReturnsEOF(t *testing.T) {
	shell, _ := setupShell(t)

	// exit must signal via io.EOF and leave readline teardown to Run;
	// with no instance attached this would panic if cmdExit touched it
	if err := shell.cmdExit(nil); !errors.Is(err, io.EOF) {
		t.Fatalf("cmdExit = %v, want io.EOF", err)
	}
}

func TestProcessInputDispatch(t *testing.T) {
	shell, _ := setupShell(t)

	// Unknown commands print a hint, they do not error the loop
	if err := shell.processInput("teleport"); err != nil {
		t.Fatalf("unknown command errored: %v", err)
	}
	if err := shell.processInput("stats"); err != nil {
		t.Fatalf("stats failed: %v", err)
	}
}

func TestFindObjectToleratesBareIndex(t *testing.T) {
	shell, id := setupShell(t)
	s := shell.sessions.GetSession(context.Background(), id)

	if obj := findObject(s, "obj-1"); obj == nil || obj.Name != "door" {
		t.Errorf("findObject(obj-1) = %v", obj)
	}
	if obj := findObject(s, "1"); obj == nil || obj.ID != "obj-1" {
		t.Errorf("findObject(1) = %v", obj)
	}
	if obj := findObject(s, "obj-9"); obj != nil {
		t.Errorf("findObject(obj-9) = %v, want nil", obj)
	}
}
