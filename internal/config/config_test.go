package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadAppliesFileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
target_dir = "` + dir + `/images"

[frames]
width = 640
height = 400

[retention]
policy = "max-age"
max_age_hours = 12
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Fatalf("resolved path %q, want %q", resolved, path)
	}
	if cfg.Frames.Width != 640 || cfg.Frames.Height != 400 {
		t.Fatalf("frame size not applied: %dx%d", cfg.Frames.Width, cfg.Frames.Height)
	}
	if cfg.Retention.Policy != RetentionPolicyMaxAge || cfg.Retention.MaxAgeHours != 12 {
		t.Fatalf("retention not applied: %+v", cfg.Retention)
	}
	// Unset fields keep defaults.
	if cfg.Render.FFmpegBinary != "ffmpeg" {
		t.Fatalf("expected default ffmpeg binary, got %q", cfg.Render.FFmpegBinary)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("expected exists=false for absent file")
	}
	if cfg.Source.ImagePrefix != "CTIPe-MUF_" {
		t.Fatalf("expected default image prefix, got %q", cfg.Source.ImagePrefix)
	}
}

func TestLoadRejectsBadRetentionPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[retention]\npolicy = \"both\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "retention.policy") {
		t.Fatalf("expected retention policy error, got %v", err)
	}
}

func TestNormalizeExpandsHome(t *testing.T) {
	cfg := Default()
	cfg.Paths.TargetDir = "~/images"
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	if strings.HasPrefix(cfg.Paths.TargetDir, "~") {
		t.Fatalf("tilde not expanded: %q", cfg.Paths.TargetDir)
	}
	if !filepath.IsAbs(cfg.Paths.TargetDir) {
		t.Fatalf("expected absolute path, got %q", cfg.Paths.TargetDir)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Retention.Policy != RetentionPolicyManifest {
		t.Fatalf("unexpected policy %q", cfg.Retention.Policy)
	}
}
