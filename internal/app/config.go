package app

import "flag"

// Config represents the command-line parameters for the viewer.
type Config struct {
	URL      string
	Codec    string
	Pattern  string
	Scale    int
	TPS      int
	HUDWidth int
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{URL: "ws://localhost:2000/ws", Codec: "json", Pattern: "glider", TPS: 60, HUDWidth: 180}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.URL, "url", c.URL, "server websocket endpoint")
	fs.StringVar(&c.Codec, "codec", c.Codec, "wire codec (json or msgpack)")
	fs.StringVar(&c.Pattern, "pattern", c.Pattern, "initial pattern to place on click")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixels per cell (0 uses the server's cell size)")
	fs.IntVar(&c.TPS, "tps", c.TPS, "frames per second")
	fs.IntVar(&c.HUDWidth, "hud-width", c.HUDWidth, "status panel width in pixels (0 hides it)")
}

// CellPixels returns the on-screen cell size given the server's cell size.
func (c *Config) CellPixels(serverCellSize int) int {
	if c.Scale > 0 {
		return c.Scale
	}
	if serverCellSize > 0 {
		return serverCellSize
	}
	return 1
}
