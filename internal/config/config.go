// Package config handles viewer and tool configuration.
package config

import "time"

// Config holds all settings.
type Config struct {
	Data    DataConfig     `yaml:"data"`
	Atlas   AtlasConfig    `yaml:"atlas"`
	Render  RenderConfig   `yaml:"render"`
	Preview PreviewConfig  `yaml:"preview"`
	Effects []EffectConfig `yaml:"effects"`
	Logging LoggingConfig  `yaml:"logging"`
}

// DataConfig lists where atlas files and page images are looked up.
type DataConfig struct {
	GRFPaths   []string `yaml:"grf_paths"`   // archives searched after the directories
	SearchDirs []string `yaml:"search_dirs"` // plain directories, searched first
}

// AtlasConfig selects the atlas to show.
type AtlasConfig struct {
	Path     string        `yaml:"path"`
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
}

// RenderConfig holds window and blending settings.
type RenderConfig struct {
	Width              int        `yaml:"width"`
	Height             int        `yaml:"height"`
	Fullscreen         bool       `yaml:"fullscreen"`
	VSync              bool       `yaml:"vsync"`
	PremultipliedAlpha bool       `yaml:"premultiplied_alpha"`
	ClearColor         [4]float32 `yaml:"clear_color"`
}

// PreviewConfig controls headless preview images.
type PreviewConfig struct {
	Columns    int     `yaml:"columns"`
	CellSize   int     `yaml:"cell_size"`
	Format     string  `yaml:"format"` // "webp" or "png"
	Output     string  `yaml:"output"`
	DrawBounds bool    `yaml:"draw_bounds"`
	Time       float32 `yaml:"time"` // seconds into the showcase animation
}

// EffectConfig describes one vertex effect in the chain.
type EffectConfig struct {
	Type          string  `yaml:"type"`
	X             float32 `yaml:"x"`
	Y             float32 `yaml:"y"`
	CenterX       float32 `yaml:"center_x"`
	CenterY       float32 `yaml:"center_y"`
	Radius        float32 `yaml:"radius"`
	Angle         float32 `yaml:"angle"` // degrees
	Interpolation string  `yaml:"interpolation"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			SearchDirs: []string{"."},
		},
		Atlas: AtlasConfig{
			Debounce: 200 * time.Millisecond,
		},
		Render: RenderConfig{
			Width:      1280,
			Height:     720,
			VSync:      true,
			ClearColor: [4]float32{0.12, 0.12, 0.14, 1},
		},
		Preview: PreviewConfig{
			Columns:    4,
			CellSize:   128,
			Format:     "webp",
			Output:     "preview.webp",
			DrawBounds: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
