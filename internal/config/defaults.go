package config

const (
	defaultTargetDir     = "~/.local/share/animmuf/images"
	defaultManifestCache = "~/.local/share/animmuf/ctipe_muf.json"
	defaultOutputFile    = "~/.local/share/animmuf/muf.mp4"
	defaultLogDir        = "~/.local/share/animmuf/logs"
	defaultStateDir      = "~/.local/share/animmuf/state"

	defaultBaseURL        = "https://services.swpc.noaa.gov/experimental"
	defaultManifestURL    = "https://services.swpc.noaa.gov/experimental/products/animations/ctipe_muf.json"
	defaultImagePrefix    = "CTIPe-MUF_"
	defaultTimeoutSeconds = 60

	defaultFrameWidth  = 800
	defaultFrameHeight = 600
	defaultFrameMargin = 48
	defaultCaption     = "MUF 36 hours animation"
	defaultFontSize    = 16.0

	defaultFFmpegBinary = "ffmpeg"
	defaultFrameRate    = 12
	defaultVideoCodec   = "libx264"
	defaultPixelFormat  = "yuv420p"
	defaultCRF          = 23

	defaultRetentionPolicy = "manifest"
	defaultMaxAgeHours     = 36

	defaultLogLevel  = "info"
	defaultLogFormat = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TargetDir:     defaultTargetDir,
			ManifestCache: defaultManifestCache,
			OutputFile:    defaultOutputFile,
			LogDir:        defaultLogDir,
			StateDir:      defaultStateDir,
		},
		Source: Source{
			BaseURL:        defaultBaseURL,
			ManifestURL:    defaultManifestURL,
			ImagePrefix:    defaultImagePrefix,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Frames: Frames{
			Width:    defaultFrameWidth,
			Height:   defaultFrameHeight,
			Margin:   defaultFrameMargin,
			Caption:  defaultCaption,
			FontSize: defaultFontSize,
		},
		Render: Render{
			FFmpegBinary: defaultFFmpegBinary,
			FrameRate:    defaultFrameRate,
			VideoCodec:   defaultVideoCodec,
			PixelFormat:  defaultPixelFormat,
			CRF:          defaultCRF,
		},
		Retention: Retention{
			Policy:      defaultRetentionPolicy,
			MaxAgeHours: defaultMaxAgeHours,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
