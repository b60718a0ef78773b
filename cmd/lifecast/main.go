// Command lifecast runs the shared Game of Life server.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"lifecast/internal/config"
	"lifecast/internal/core"
	"lifecast/internal/server"
	"lifecast/internal/sim"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg := config.Default()
	cfg.Bind(flag.CommandLine)
	flag.Parse()
	if port, ok := os.LookupEnv("PORT"); ok {
		cfg.FromMap(map[string]string{"port": port})
	}

	logger := log.Default()
	if err := cfg.Validate(); err != nil {
		logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal(err)
	}
}

// run serves until ctx is cancelled or a component fails.
func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	engine := buildEngine(cfg, logger)
	gateway := sim.NewGateway(engine.Queue(), engine.Dimensions())
	hub := server.NewHub(engine, gateway, server.Config{
		SendBuffer:  cfg.SendBuffer,
		SubmitRate:  cfg.SubmitRate,
		SubmitBurst: cfg.SubmitBurst,
	}, server.Deps{Logger: logger})
	scheduler := sim.NewScheduler(engine, hub, core.TickPeriod(cfg.TickSpeed), sim.Deps{Logger: logger})

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           server.NewMux(hub, engine, cfg.StaticDir),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Printf("[network] listening on %s", ln.Addr())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreCanceled(hub.Run(ctx)) })
	g.Go(func() error { return ignoreCanceled(scheduler.Run(ctx)) })
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Printf("[network] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildEngine(cfg *config.Config, logger *log.Logger) *sim.Engine {
	var grid *core.Grid
	if cfg.Fill {
		seed := cfg.ResolvedSeed(time.Now())
		logger.Printf("[tick] seeding %dx%d grid seed=%d", cfg.Rows, cfg.Cols, seed)
		grid = core.NewGridFunc(cfg.Rows, cfg.Cols, cfg.CellSize, core.RandomStates(core.NewRNG(seed)))
	} else {
		grid = core.NewGrid(cfg.Rows, cfg.Cols, cfg.CellSize)
	}
	return sim.New(grid, cfg.TickSpeed)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
