package config

import "strings"

// normalize expands path fields and trims string values so validation and
// downstream consumers see canonical data.
func (c *Config) normalize() error {
	for _, field := range []*string{
		&c.Paths.TargetDir,
		&c.Paths.ManifestCache,
		&c.Paths.OutputFile,
		&c.Paths.LogDir,
		&c.Paths.StateDir,
		&c.Frames.FontPath,
	} {
		trimmed := strings.TrimSpace(*field)
		if trimmed == "" {
			*field = ""
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Source.BaseURL = strings.TrimRight(strings.TrimSpace(c.Source.BaseURL), "/")
	c.Source.ManifestURL = strings.TrimSpace(c.Source.ManifestURL)
	c.Source.ImagePrefix = strings.TrimSpace(c.Source.ImagePrefix)
	c.Render.FFmpegBinary = strings.TrimSpace(c.Render.FFmpegBinary)
	c.Retention.Policy = strings.ToLower(strings.TrimSpace(c.Retention.Policy))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))

	return nil
}
