// Package frames turns retained source images into the fixed-size, annotated
// frame sequence the encoder consumes. Each frame is resized with a
// high-quality filter, extended by a solid caption band, and written under a
// zero-padded sequential name so lexicographic order is capture order.
package frames

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"animmuf/internal/logging"
	"animmuf/internal/workspace"
)

var (
	bandColor    = color.RGBA{R: 0xf2, G: 0xf2, B: 0xf2, A: 0xff}
	captionColor = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
)

// Options describes the output frame geometry and annotation.
type Options struct {
	Width    int
	Height   int
	Margin   int
	Caption  string
	FontPath string
	FontSize float64
}

// Compositor composes annotated frames into a scratch workspace.
type Compositor struct {
	opts   Options
	face   font.Face
	logger *slog.Logger
}

// NewCompositor loads the caption face and returns a ready Compositor.
func NewCompositor(opts Options, logger *slog.Logger) (*Compositor, error) {
	face, err := loadFace(opts.FontPath, opts.FontSize)
	if err != nil {
		return nil, fmt.Errorf("load caption font: %w", err)
	}
	return &Compositor{
		opts:   opts,
		face:   face,
		logger: logging.WithComponent(logger, "frames"),
	}, nil
}

// Compose reads the source image, normalizes and resizes it, appends the
// caption band, and writes the result as PNG to dstPath.
func (c *Compositor) Compose(srcPath, dstPath string) error {
	file, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source image: %w", err)
	}
	src, _, err := image.Decode(file)
	closeErr := file.Close()
	if err != nil {
		return fmt.Errorf("decode source image: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("close source image: %w", closeErr)
	}

	scaled := image.NewRGBA(image.Rect(0, 0, c.opts.Width, c.opts.Height))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	canvas := image.NewRGBA(image.Rect(0, 0, c.opts.Width, c.opts.Height+c.opts.Margin))
	draw.Draw(canvas, scaled.Bounds(), scaled, image.Point{}, draw.Src)
	if c.opts.Margin > 0 {
		band := image.Rect(0, c.opts.Height, c.opts.Width, c.opts.Height+c.opts.Margin)
		draw.Draw(canvas, band, image.NewUniform(bandColor), image.Point{}, draw.Src)
		c.drawCaption(canvas)
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create frame: %w", err)
	}
	if err := png.Encode(out, canvas); err != nil {
		_ = out.Close()
		_ = os.Remove(dstPath)
		return fmt.Errorf("encode frame: %w", err)
	}
	return out.Close()
}

// ComposeAll composes every source in order and returns the count of frames
// written. A failing source is logged and skipped; output numbering stays
// gapless so the encoder sees a contiguous sequence.
func (c *Compositor) ComposeAll(ws *workspace.Workspace, sources []string) int {
	written := 0
	for _, src := range sources {
		dst := ws.FramePath(written)
		if err := c.Compose(src, dst); err != nil {
			c.logger.Warn("compose frame", logging.String("source", filepath.Base(src)), logging.Error(err))
			continue
		}
		c.logger.Debug("frame composed",
			logging.String("source", filepath.Base(src)),
			logging.String("frame", filepath.Base(dst)))
		written++
	}
	c.logger.Info("frames composed", logging.Int("frames", written), logging.Int("sources", len(sources)))
	return written
}

// drawCaption renders the caption lines into the band below the image.
func (c *Compositor) drawCaption(canvas *image.RGBA) {
	caption := strings.TrimSpace(c.opts.Caption)
	if caption == "" {
		return
	}

	metrics := c.face.Metrics()
	lineHeight := metrics.Height.Ceil()
	if lineHeight <= 0 {
		lineHeight = int(c.opts.FontSize) + 2
	}

	x := 25
	y := c.opts.Height + metrics.Ascent.Ceil() + 4
	drawer := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(captionColor),
		Face: c.face,
	}
	for _, line := range strings.Split(caption, "\n") {
		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(line)
		y += lineHeight
	}
}
