package ai

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FloatingDust36/siyensyago/internal/types"
)

func TestMediaTypeFor(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":       "image/jpeg",
		"photo.JPEG":      "image/jpeg",
		"shot.png":        "image/png",
		"anim.gif":        "image/gif",
		"modern.webp":     "image/webp",
		"mystery.heic":    "image/jpeg", // unknown falls back to jpeg
		"no-extension":    "image/jpeg",
		"/abs/path/a.PNG": "image/png",
	}
	for path, want := range cases {
		if got := mediaTypeFor(path); got != want {
			t.Errorf("mediaTypeFor(%s) = %s, want %s", path, got, want)
		}
	}
}

func TestEncodeImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(path, []byte("fake image bytes"), 0o644); err != nil {
		t.Fatalf("Failed to write test image: %v", err)
	}

	mediaType, data, err := encodeImage(path)
	if err != nil {
		t.Fatalf("encodeImage failed: %v", err)
	}
	if mediaType != "image/png" {
		t.Errorf("media type = %s, want image/png", mediaType)
	}
	if data == "" || strings.ContainsAny(data, " \n") {
		t.Errorf("base64 data malformed: %q", data)
	}

	if _, _, err := encodeImage(filepath.Join(dir, "missing.jpg")); err == nil {
		t.Error("encodeImage succeeded for missing file")
	}
}

func TestClampConfidence(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{85, 85},
		{0.85, 85}, // 0-1 scale answers get rescaled
		{1, 100},
		{0, 0},
		{-5, 0},
		{150, 100},
	}
	for _, tc := range cases {
		if got := clampConfidence(tc.in); got != tc.want {
			t.Errorf("clampConfidence(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestClampBox(t *testing.T) {
	b := clampBox(types.BoundingBox{X: -10, Y: 50, Width: 200, Height: 60})
	if b.X != 0 || b.Y != 50 {
		t.Errorf("origin = (%v, %v), want (0, 50)", b.X, b.Y)
	}
	if b.X+b.Width > 100 || b.Y+b.Height > 100 {
		t.Errorf("box extends past bounds: %+v", b)
	}

	// A well-formed box passes through untouched
	good := types.BoundingBox{X: 10, Y: 20, Width: 30, Height: 40}
	if got := clampBox(good); got != good {
		t.Errorf("clampBox altered a valid box: %+v", got)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewClient(&Config{}); err == nil {
		t.Fatal("NewClient succeeded with no API key")
	}

	c, err := NewClient(&Config{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if c.model != GetDefaultModel() {
		t.Errorf("model = %s, want default", c.model)
	}
	if c.circuitBreaker == nil {
		t.Error("default config did not enable the circuit breaker")
	}
	if c.concurrencySem == nil {
		t.Error("default config did not enable the concurrency limiter")
	}
	if c.rateLimiter == nil {
		t.Error("default config did not enable request pacing")
	}
}

func TestGetDefaultModelEnvOverride(t *testing.T) {
	t.Setenv("SIYENSYA_MODEL", "claude-test-model")
	if got := GetDefaultModel(); got != "claude-test-model" {
		t.Errorf("GetDefaultModel = %s, want env override", got)
	}

	t.Setenv("SIYENSYA_MODEL", "")
	if got := GetDefaultModel(); got != ModelDefault {
		t.Errorf("GetDefaultModel = %s, want %s", got, ModelDefault)
	}
}
