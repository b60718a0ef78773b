package config

import (
	"errors"
	"flag"
	"testing"
	"time"
)

func TestBindOverridesDefaults(t *testing.T) {
	cfg := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse([]string{"-rows", "40", "-tick-speed", "5", "-fill=false", "-submit-rate", "2.5"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Rows != 40 || cfg.Cols != 80 || cfg.TickSpeed != 5 || cfg.Fill || cfg.SubmitRate != 2.5 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestFromMap(t *testing.T) {
	tests := []struct {
		name  string
		in    map[string]string
		check func(*Config) bool
	}{
		{name: "port", in: map[string]string{"port": "8080"}, check: func(c *Config) bool { return c.Addr == ":8080" }},
		{name: "portKeepsHost", in: map[string]string{"addr": "127.0.0.1:1", "port": "9000"}, check: func(c *Config) bool { return c.Addr == "127.0.0.1:9000" }},
		{name: "badPort", in: map[string]string{"port": "nope"}, check: func(c *Config) bool { return c.Addr == ":2000" }},
		{name: "dims", in: map[string]string{"rows": "10", "cols": "12", "cell_size": "4"}, check: func(c *Config) bool {
			return c.Rows == 10 && c.Cols == 12 && c.CellSize == 4
		}},
		{name: "negativeIgnored", in: map[string]string{"rows": "-3", "tick_speed": "0"}, check: func(c *Config) bool {
			return c.Rows == 80 && c.TickSpeed == 2
		}},
		{name: "seedAndFill", in: map[string]string{"seed": "77", "fill": "false"}, check: func(c *Config) bool { return c.Seed == 77 && !c.Fill }},
		{name: "nil", in: nil, check: func(c *Config) bool { return *c == *Default() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.FromMap(tt.in)
			if !tt.check(cfg) {
				t.Fatalf("unexpected config %+v", cfg)
			}
		})
	}
}

func TestDefaultDoesNotThrottleSubmissions(t *testing.T) {
	if rate := Default().SubmitRate; rate != 0 {
		t.Fatalf("default submit rate = %v, want 0 (unthrottled)", rate)
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := []func(*Config){
		func(c *Config) { c.Rows = 0 },
		func(c *Config) { c.CellSize = -1 },
		func(c *Config) { c.TickSpeed = 0 },
		func(c *Config) { c.SendBuffer = 0 },
		func(c *Config) { c.SubmitRate = -1 },
	}
	for i, mutate := range bad {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
			t.Fatalf("case %d: err = %v, want ErrInvalid", i, err)
		}
	}
}

func TestResolvedSeed(t *testing.T) {
	now := time.Unix(0, 12345)
	cfg := Default()
	if got := cfg.ResolvedSeed(now); got != 12345 {
		t.Fatalf("zero seed resolved to %d", got)
	}
	cfg.Seed = 9
	if got := cfg.ResolvedSeed(now); got != 9 {
		t.Fatalf("explicit seed resolved to %d", got)
	}
}
