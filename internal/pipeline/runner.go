// Package pipeline sequences one complete animmuf run: conditional manifest
// fetch, image synchronization, retention, frame composition, and rendering,
// with run history and a single-instance lock around the whole thing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"animmuf/internal/config"
	"animmuf/internal/errs"
	"animmuf/internal/frames"
	"animmuf/internal/history"
	"animmuf/internal/imageset"
	"animmuf/internal/logging"
	"animmuf/internal/manifest"
	"animmuf/internal/render"
	"animmuf/internal/workspace"
)

// Options control a single run.
type Options struct {
	// Force runs composition and rendering even when the manifest is
	// unchanged and no new images arrived.
	Force bool
	// SkipRender stops after retention, leaving the published artifact as is.
	SkipRender bool
}

// Runner owns the components of one pipeline invocation.
type Runner struct {
	cfg        *config.Config
	logger     *slog.Logger
	fetcher    *manifest.Fetcher
	syncer     *imageset.Syncer
	reconciler *imageset.Reconciler
	compositor *frames.Compositor
	renderer   *render.Renderer
	hist       *history.Store
	lock       *flock.Flock
}

// New wires a Runner from validated configuration. hist may be nil; run
// history is then skipped.
func New(cfg *config.Config, logger *slog.Logger, hist *history.Store) (*Runner, error) {
	client := &http.Client{Timeout: time.Duration(cfg.Source.TimeoutSeconds) * time.Second}

	compositor, err := frames.NewCompositor(frames.Options{
		Width:    cfg.Frames.Width,
		Height:   cfg.Frames.Height,
		Margin:   cfg.Frames.Margin,
		Caption:  cfg.Frames.Caption,
		FontPath: cfg.Frames.FontPath,
		FontSize: cfg.Frames.FontSize,
	}, logger)
	if err != nil {
		return nil, errs.Wrap(errs.ErrConfiguration, "pipeline", "compositor", "", err)
	}

	renderer := render.NewRenderer(render.Options{
		Binary:      cfg.Render.FFmpegBinary,
		FrameRate:   cfg.Render.FrameRate,
		VideoCodec:  cfg.Render.VideoCodec,
		PixelFormat: cfg.Render.PixelFormat,
		CRF:         cfg.Render.CRF,
		OutputPath:  cfg.Paths.OutputFile,
		LogPath:     filepath.Join(cfg.Paths.LogDir, "render.log"),
	}, logger)

	return &Runner{
		cfg:     cfg,
		logger:  logging.WithComponent(logger, "pipeline"),
		fetcher: manifest.NewFetcher(client, cfg.Source.ManifestURL, cfg.Paths.ManifestCache, logger),
		syncer:  imageset.NewSyncer(client, cfg.Source.BaseURL, logger),
		reconciler: imageset.NewReconciler(
			imageset.Policy(cfg.Retention.Policy),
			cfg.Source.ImagePrefix,
			time.Duration(cfg.Retention.MaxAgeHours)*time.Hour,
			logger,
		),
		compositor: compositor,
		renderer:   renderer,
		hist:       hist,
		lock:       flock.New(filepath.Join(cfg.Paths.StateDir, "animmuf.lock")),
	}, nil
}

// Run executes the pipeline once. Non-fatal conditions (individual image
// failures, deletion failures, history unavailability) are logged and do not
// unwind the run; fatal conditions return an error tagged for a distinct
// exit status.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	locked, err := r.lock.TryLock()
	if err != nil {
		return errs.Wrap(errs.ErrIO, "pipeline", "lock", "", err)
	}
	if !locked {
		return errs.Wrap(errs.ErrConcurrentRun, "pipeline", "lock",
			fmt.Sprintf("another run holds %s", r.lock.Path()), nil)
	}
	defer func() { _ = r.lock.Unlock() }()

	if err := r.checkTargetDir(); err != nil {
		return err
	}

	run := history.Run{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
	r.recordStart(ctx, run)

	err = r.run(ctx, opts, &run)
	finished := time.Now().UTC()
	run.FinishedAt = &finished
	if err != nil {
		run.Status = history.StatusFailed
		run.Error = err.Error()
	} else if run.Status == "" {
		run.Status = history.StatusOK
	}
	r.recordFinish(ctx, run)

	r.logger.Info("run finished",
		logging.String("status", run.Status),
		logging.Duration("elapsed", finished.Sub(run.StartedAt).Round(time.Millisecond)))
	return err
}

func (r *Runner) run(ctx context.Context, opts Options, run *history.Run) error {
	result, fetchErr := r.fetcher.Fetch(ctx)
	if fetchErr != nil {
		if !r.fetcher.HasCache() {
			return errs.Wrap(errs.ErrIO, "pipeline", "fetch manifest", "no cached manifest to fall back on", fetchErr)
		}
		// A usable cache makes a fetch failure a skip-this-run condition.
		r.logger.Warn("manifest fetch failed, using cached manifest", logging.Error(fetchErr))
		result = manifest.Unchanged
	}
	run.ManifestResult = result.String()

	m, err := manifest.Load(r.fetcher.CachePath())
	if err != nil {
		return errs.Wrap(errs.ErrIO, "pipeline", "load manifest", "", err)
	}

	newImages, err := r.syncer.Sync(ctx, m, r.cfg.Paths.TargetDir)
	if err != nil {
		return errs.Wrap(errs.ErrIO, "pipeline", "sync images", "", err)
	}
	run.NewImages = newImages

	removed, err := r.reconciler.Reconcile(m, r.cfg.Paths.TargetDir)
	if err != nil {
		return errs.Wrap(errs.ErrIO, "pipeline", "reconcile images", "", err)
	}
	run.RemovedImages = removed

	if result == manifest.Unchanged && newImages == 0 && !opts.Force {
		r.logger.Info("nothing to do",
			logging.String("manifest", run.ManifestResult),
			logging.Int("new_images", newImages))
		run.Status = history.StatusNoop
		return nil
	}

	if opts.SkipRender {
		r.logger.Info("render skipped by request",
			logging.Int("new_images", newImages),
			logging.Int("removed", removed))
		return nil
	}

	ws, err := workspace.Acquire(r.cfg.Paths.StateDir)
	if err != nil {
		return err
	}
	defer ws.Release(r.logger)

	sources, err := imageset.List(r.cfg.Paths.TargetDir, r.cfg.Source.ImagePrefix)
	if err != nil {
		return errs.Wrap(errs.ErrIO, "pipeline", "list images", "", err)
	}

	frameCount := r.compositor.ComposeAll(ws, sources)
	run.Frames = frameCount

	if err := r.renderer.Render(ctx, ws, frameCount); err != nil {
		return err
	}
	run.Rendered = frameCount >= 2
	return nil
}

// checkTargetDir verifies the target image directory exists; nothing
// downstream can proceed without it.
func (r *Runner) checkTargetDir() error {
	info, err := os.Stat(r.cfg.Paths.TargetDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errs.Wrap(errs.ErrMissingTarget, "pipeline", "preflight", r.cfg.Paths.TargetDir, nil)
		}
		return errs.Wrap(errs.ErrIO, "pipeline", "preflight", "stat target directory", err)
	}
	if !info.IsDir() {
		return errs.Wrap(errs.ErrMissingTarget, "pipeline", "preflight",
			fmt.Sprintf("%s is not a directory", r.cfg.Paths.TargetDir), nil)
	}
	return nil
}

func (r *Runner) recordStart(ctx context.Context, run history.Run) {
	if r.hist == nil {
		return
	}
	if err := r.hist.RecordStart(ctx, run.ID, run.StartedAt); err != nil {
		r.logger.Warn("record run start", logging.Error(err))
	}
}

func (r *Runner) recordFinish(ctx context.Context, run history.Run) {
	if r.hist == nil {
		return
	}
	if err := r.hist.RecordFinish(ctx, run); err != nil {
		r.logger.Warn("record run finish", logging.Error(err))
	}
}
