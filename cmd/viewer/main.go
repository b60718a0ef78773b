//go:build ebiten

// Command viewer connects to a lifecast server and renders the shared grid.
package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"lifecast/internal/app"
	"lifecast/internal/replica"
	"lifecast/internal/wire"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	codec, ok := wire.ByName(cfg.Codec)
	if !ok {
		log.Fatalf("unknown codec %q", cfg.Codec)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := replica.NewClient(cfg.URL, codec, log.Default())
	go func() {
		if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[network] client stopped: %v", err)
		}
	}()

	game := app.New(client, cfg, log.Default())

	ebiten.SetWindowTitle("lifecast")
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
