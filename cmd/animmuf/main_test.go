package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"animmuf/internal/errs"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "config.toml")
	content := `
[paths]
target_dir = "` + filepath.Join(root, "images") + `"
manifest_cache = "` + filepath.Join(root, "ctipe_muf.json") + `"
output_file = "` + filepath.Join(root, "muf.mp4") + `"
log_dir = "` + filepath.Join(root, "logs") + `"
state_dir = "` + filepath.Join(root, "state") + `"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func executeCommand(args ...string) (string, error) {
	cmd := newRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommandShowsHelp(t *testing.T) {
	out, err := executeCommand()
	if err != nil {
		t.Fatal(err)
	}
	for _, sub := range []string{"run", "deps", "history", "config"} {
		if !strings.Contains(out, sub) {
			t.Fatalf("help output missing %q:\n%s", sub, out)
		}
	}
}

func TestRunWithoutConfigIsConfigurationError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	_, err := executeCommand("--config", missing, "run")
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if errs.ExitCode(err) != errs.ExitConfiguration {
		t.Fatalf("expected exit code %d, got %d", errs.ExitConfiguration, errs.ExitCode(err))
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	out, err := executeCommand("--config", path, "config", "init")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("init output missing path: %s", out)
	}

	// A second init without --overwrite must refuse.
	if _, err := executeCommand("--config", path, "config", "init"); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}

	out, err = executeCommand("--config", path, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "target_dir") {
		t.Fatalf("show output missing fields:\n%s", out)
	}
}

func TestHistoryCommandEmptyStore(t *testing.T) {
	path := writeTestConfig(t)
	out, err := executeCommand("--config", path, "history")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No recorded runs.") {
		t.Fatalf("unexpected history output:\n%s", out)
	}
}

func TestDepsCommandListsFFmpeg(t *testing.T) {
	path := writeTestConfig(t)
	out, _ := executeCommand("--config", path, "deps")
	if !strings.Contains(out, "FFmpeg") {
		t.Fatalf("deps output missing FFmpeg row:\n%s", out)
	}
}
