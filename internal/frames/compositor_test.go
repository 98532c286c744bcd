package frames

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"animmuf/internal/logging"
	"animmuf/internal/workspace"
)

func writeSourcePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 0x40, A: 0xff})
		}
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatal(err)
	}
}

func testOptions() Options {
	return Options{
		Width:    160,
		Height:   120,
		Margin:   24,
		Caption:  "MUF 36 hours animation\nhttps://example.org/",
		FontSize: 12,
	}
}

func TestComposeProducesPaddedFrame(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "CTIPe-MUF_20240101T000000.png")
	dst := filepath.Join(dir, "frame_0000.png")
	writeSourcePNG(t, src, 320, 240)

	c, err := NewCompositor(testOptions(), logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Compose(src, dst); err != nil {
		t.Fatal(err)
	}

	file, err := os.Open(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	frame, err := png.Decode(file)
	if err != nil {
		t.Fatal(err)
	}

	bounds := frame.Bounds()
	if bounds.Dx() != 160 || bounds.Dy() != 144 {
		t.Fatalf("expected 160x144 frame (image + margin), got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestComposeRejectsCorruptSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "corrupt.png")
	if err := os.WriteFile(src, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := NewCompositor(testOptions(), logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Compose(src, filepath.Join(dir, "out.png")); err == nil {
		t.Fatal("expected decode error for corrupt source")
	}
}

func TestComposeAllSkipsCorruptSourcesWithoutGaps(t *testing.T) {
	dir := t.TempDir()
	good1 := filepath.Join(dir, "CTIPe-MUF_20240101T000000.png")
	corrupt := filepath.Join(dir, "CTIPe-MUF_20240101T010000.png")
	good2 := filepath.Join(dir, "CTIPe-MUF_20240101T020000.png")
	writeSourcePNG(t, good1, 64, 48)
	writeSourcePNG(t, good2, 64, 48)
	if err := os.WriteFile(corrupt, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	ws, err := workspace.Acquire(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Release(logging.NewNop())

	c, err := NewCompositor(testOptions(), logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	written := c.ComposeAll(ws, []string{good1, corrupt, good2})
	if written != 2 {
		t.Fatalf("expected 2 frames, got %d", written)
	}

	// Numbering must be gapless despite the skipped source.
	for i := 0; i < written; i++ {
		if _, err := os.Stat(ws.FramePath(i)); err != nil {
			t.Fatalf("missing frame %d: %v", i, err)
		}
	}
	if _, err := os.Stat(ws.FramePath(2)); !os.IsNotExist(err) {
		t.Fatal("unexpected third frame")
	}
}

func TestNewCompositorMissingFont(t *testing.T) {
	opts := testOptions()
	opts.FontPath = filepath.Join(t.TempDir(), "missing.ttf")
	if _, err := NewCompositor(opts, logging.NewNop()); err == nil {
		t.Fatal("expected error for missing font file")
	}
}
