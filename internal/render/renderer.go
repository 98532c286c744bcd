// Package render drives the external encoder over the composed frame
// sequence and atomically publishes the result. A render failure never
// disturbs the previously published artifact.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"animmuf/internal/errs"
	"animmuf/internal/fileutil"
	"animmuf/internal/logging"
	"animmuf/internal/workspace"
)

// commandContext is a seam for tests to intercept encoder invocations.
var commandContext = exec.CommandContext

// minFrames is the smallest sequence worth animating; fewer is a no-op.
const minFrames = 2

// Options describes the encoder invocation.
type Options struct {
	Binary      string
	FrameRate   int
	VideoCodec  string
	PixelFormat string
	CRF         int
	OutputPath  string
	LogPath     string
}

// Renderer invokes the encoder and publishes the resulting artifact.
type Renderer struct {
	opts   Options
	logger *slog.Logger
}

// NewRenderer constructs a Renderer.
func NewRenderer(opts Options, logger *slog.Logger) *Renderer {
	return &Renderer{opts: opts, logger: logging.WithComponent(logger, "render")}
}

// Render encodes the frame sequence in ws into the published artifact.
// Fewer than two frames is a no-op. The encoder writes to a temporary file
// inside the workspace; only a zero exit status moves it to the published
// path, via rename, so no observer ever sees a partial artifact.
func (r *Renderer) Render(ctx context.Context, ws *workspace.Workspace, frameCount int) error {
	if frameCount < minFrames {
		r.logger.Info("nothing to animate", logging.Int("frames", frameCount))
		return nil
	}

	if _, err := exec.LookPath(r.opts.Binary); err != nil {
		return errs.Wrap(errs.ErrExternalTool, "render", "preflight",
			fmt.Sprintf("encoder %q not found", r.opts.Binary), err)
	}

	ext := filepath.Ext(r.opts.OutputPath)
	if ext == "" {
		ext = ".mp4"
	}
	tmpOutput := filepath.Join(ws.Path(), "render"+ext)

	args := r.buildArgs(ws.FrameGlob(), tmpOutput, ext)
	cmd := commandContext(ctx, r.opts.Binary, args...)

	logFile, err := r.openLogFile()
	if err != nil {
		r.logger.Warn("open render log", logging.Error(err))
	} else {
		defer logFile.Close()
		fmt.Fprintln(logFile, r.opts.Binary+" "+strings.Join(args, " "))
		cmd.Stdout = logFile
		cmd.Stderr = logFile
	}

	r.logger.Info("encoding animation",
		logging.Int("frames", frameCount),
		logging.String("output", r.opts.OutputPath))

	if err := cmd.Run(); err != nil {
		return errs.Wrap(errs.ErrExternalTool, "render", "encode",
			"encoder failed, published artifact left untouched", err)
	}

	if err := fileutil.ReplaceFile(tmpOutput, r.opts.OutputPath); err != nil {
		return errs.Wrap(errs.ErrIO, "render", "publish", "", err)
	}

	r.logger.Info("animation published", logging.String("output", r.opts.OutputPath))
	return nil
}

func (r *Renderer) buildArgs(frameGlob, output, ext string) []string {
	args := []string{
		"-y",
		"-framerate", strconv.Itoa(r.opts.FrameRate),
		"-pattern_type", "glob",
		"-i", frameGlob,
	}
	// GIF output takes no codec parameters; ffmpeg picks the muxer from the
	// extension.
	if ext != ".gif" {
		args = append(args,
			"-c:v", r.opts.VideoCodec,
			"-pix_fmt", r.opts.PixelFormat,
			"-crf", strconv.Itoa(r.opts.CRF),
		)
	}
	return append(args, output)
}

func (r *Renderer) openLogFile() (*os.File, error) {
	if r.opts.LogPath == "" {
		return nil, fmt.Errorf("no render log path configured")
	}
	if dir := filepath.Dir(r.opts.LogPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(r.opts.LogPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}
