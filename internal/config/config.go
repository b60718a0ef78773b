// Package config holds the server's command-line configuration.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config represents the command-line parameters for the server.
type Config struct {
	Addr      string
	StaticDir string

	Rows      int
	Cols      int
	CellSize  int
	TickSpeed int

	Seed int64
	Fill bool

	SendBuffer  int
	SubmitRate  float64
	SubmitBurst int
}

// Default returns a Config populated with the standard 80x80 world.
// Submissions are not throttled unless SubmitRate is set.
func Default() *Config {
	return &Config{
		Addr:        ":2000",
		Rows:        80,
		Cols:        80,
		CellSize:    20,
		TickSpeed:   2,
		Fill:        true,
		SendBuffer:  64,
		SubmitBurst: 20,
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "listen address")
	fs.StringVar(&c.StaticDir, "static", c.StaticDir, "directory served at / (empty disables)")
	fs.IntVar(&c.Rows, "rows", c.Rows, "grid rows")
	fs.IntVar(&c.Cols, "cols", c.Cols, "grid columns")
	fs.IntVar(&c.CellSize, "cell-size", c.CellSize, "rendered cell size in pixels")
	fs.IntVar(&c.TickSpeed, "tick-speed", c.TickSpeed, "generations per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for the initial fill (0 picks one from the clock)")
	fs.BoolVar(&c.Fill, "fill", c.Fill, "randomly fill the initial grid")
	fs.IntVar(&c.SendBuffer, "send-buffer", c.SendBuffer, "outbound frames buffered per connection")
	fs.Float64Var(&c.SubmitRate, "submit-rate", c.SubmitRate, "patterns per second per connection (0 disables the limit)")
	fs.IntVar(&c.SubmitBurst, "submit-burst", c.SubmitBurst, "pattern burst allowance per connection")
}

// FromMap overlays flag-style key/value pairs, such as environment lookups,
// onto c. Unparseable or out-of-range values are ignored.
func (c *Config) FromMap(cfg map[string]string) {
	if cfg == nil {
		return
	}
	if v, ok := cfg["addr"]; ok && v != "" {
		c.Addr = v
	}
	if v, ok := cfg["port"]; ok {
		if port, err := strconv.Atoi(v); err == nil && port > 0 && port < 65536 {
			host, _, err := net.SplitHostPort(c.Addr)
			if err != nil {
				host = ""
			}
			c.Addr = net.JoinHostPort(host, v)
		}
	}
	if v, ok := cfg["static"]; ok {
		c.StaticDir = v
	}
	if v, ok := cfg["rows"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Rows = parsed
		}
	}
	if v, ok := cfg["cols"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Cols = parsed
		}
	}
	if v, ok := cfg["cell_size"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.CellSize = parsed
		}
	}
	if v, ok := cfg["tick_speed"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.TickSpeed = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["fill"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Fill = parsed
		}
	}
	if v, ok := cfg["send_buffer"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.SendBuffer = parsed
		}
	}
	if v, ok := cfg["submit_rate"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			c.SubmitRate = parsed
		}
	}
	if v, ok := cfg["submit_burst"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.SubmitBurst = parsed
		}
	}
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Validate reports settings the server cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Rows <= 0 || c.Cols <= 0:
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalid, c.Rows, c.Cols)
	case c.CellSize <= 0:
		return fmt.Errorf("%w: cell size %d", ErrInvalid, c.CellSize)
	case c.TickSpeed <= 0:
		return fmt.Errorf("%w: tick speed %d", ErrInvalid, c.TickSpeed)
	case c.SendBuffer <= 0:
		return fmt.Errorf("%w: send buffer %d", ErrInvalid, c.SendBuffer)
	case c.SubmitRate < 0:
		return fmt.Errorf("%w: submit rate %v", ErrInvalid, c.SubmitRate)
	}
	return nil
}

// ResolvedSeed returns Seed, or a clock-derived seed when Seed is zero.
func (c *Config) ResolvedSeed(now time.Time) int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return now.UnixNano()
}
