package options

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Options configures the demo host. Fields map to keys of the TOML config
// file; command-line flags override them.
type Options struct {
	Width      int        `toml:"width"`
	Height     int        `toml:"height"`
	Title      string     `toml:"title"`
	GLMajor    int        `toml:"gl_major"`
	GLMinor    int        `toml:"gl_minor"`
	ClearColor [4]float32 `toml:"clear_color"`
	Frames     int        `toml:"frames"` // 0 runs until the window closes
	Headless   bool       `toml:"headless"`
	Debug      bool       `toml:"debug"`
}

func Default() *Options {
	return &Options{
		Width:      1280,
		Height:     720,
		Title:      "glbackend",
		GLMajor:    4,
		GLMinor:    1,
		ClearColor: [4]float32{0.1, 0.1, 0.1, 1},
	}
}

// Load reads path on top of the defaults and validates the result.
func Load(path string) (*Options, error) {
	opts := Default()
	if _, err := toml.DecodeFile(path, opts); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return opts, nil
}

func (o *Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", o.Width, o.Height)
	}
	if o.GLMajor < 3 || (o.GLMajor == 3 && o.GLMinor < 2) {
		return fmt.Errorf("GL %d.%d is below the 3.2 core profile", o.GLMajor, o.GLMinor)
	}
	if o.Frames < 0 {
		return fmt.Errorf("frame count %d is negative", o.Frames)
	}
	for i, c := range o.ClearColor {
		if c < 0 || c > 1 {
			return fmt.Errorf("clear color component %d (%g) outside [0, 1]", i, c)
		}
	}
	return nil
}
