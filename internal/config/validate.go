package config

import (
	"errors"
	"fmt"
)

// RetentionPolicyManifest deletes managed files absent from the manifest.
const RetentionPolicyManifest = "manifest"

// RetentionPolicyMaxAge deletes managed files older than the expiry window.
const RetentionPolicyMaxAge = "max-age"

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateFrames(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateRetention(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.TargetDir == "" {
		return errors.New("paths.target_dir must be set")
	}
	if c.Paths.ManifestCache == "" {
		return errors.New("paths.manifest_cache must be set")
	}
	if c.Paths.OutputFile == "" {
		return errors.New("paths.output_file must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateSource() error {
	if c.Source.BaseURL == "" {
		return errors.New("source.base_url must be set")
	}
	if c.Source.ManifestURL == "" {
		return errors.New("source.manifest_url must be set")
	}
	if c.Source.ImagePrefix == "" {
		return errors.New("source.image_prefix must be set")
	}
	if c.Source.TimeoutSeconds <= 0 {
		return errors.New("source.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateFrames() error {
	if c.Frames.Width <= 0 || c.Frames.Height <= 0 {
		return errors.New("frames.width and frames.height must be positive")
	}
	if c.Frames.Margin < 0 {
		return errors.New("frames.margin must not be negative")
	}
	if c.Frames.FontSize <= 0 {
		return errors.New("frames.font_size must be positive")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.FFmpegBinary == "" {
		return errors.New("render.ffmpeg_binary must be set")
	}
	if c.Render.FrameRate <= 0 {
		return errors.New("render.frame_rate must be positive")
	}
	if c.Render.CRF < 0 || c.Render.CRF > 51 {
		return errors.New("render.crf must be between 0 and 51")
	}
	return nil
}

func (c *Config) validateRetention() error {
	switch c.Retention.Policy {
	case RetentionPolicyManifest:
		return nil
	case RetentionPolicyMaxAge:
		if c.Retention.MaxAgeHours <= 0 {
			return errors.New("retention.max_age_hours must be positive for the max-age policy")
		}
		return nil
	default:
		return fmt.Errorf("retention.policy must be %q or %q, got %q",
			RetentionPolicyManifest, RetentionPolicyMaxAge, c.Retention.Policy)
	}
}
