package config

import "flag"

// Flags are the command-line overrides shared by the commands.
type Flags struct {
	Config     string
	Debug      bool
	Atlas      string
	Watch      bool
	Windowed   bool
	Fullscreen bool
	Width      int
	Height     int
	PMA        bool
}

// Register binds the flags to fs. Passing flag.CommandLine registers them
// globally.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Atlas, "atlas", "", "Atlas file to load")
	fs.BoolVar(&f.Watch, "watch", false, "Reload the atlas when it changes")
	fs.BoolVar(&f.Windowed, "windowed", false, "Run in windowed mode")
	fs.BoolVar(&f.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.BoolVar(&f.PMA, "pma", false, "Use premultiplied alpha")
}

// apply copies set overrides onto cfg.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Atlas != "" {
		cfg.Atlas.Path = f.Atlas
	}
	if f.Watch {
		cfg.Atlas.Watch = true
	}
	if f.Windowed {
		cfg.Render.Fullscreen = false
	}
	if f.Fullscreen {
		cfg.Render.Fullscreen = true
	}
	if f.Width > 0 {
		cfg.Render.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Render.Height = f.Height
	}
	if f.PMA {
		cfg.Render.PremultipliedAlpha = true
	}
}
