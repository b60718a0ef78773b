package replica

import (
	"bytes"
	"context"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lifecast/internal/core"
	"lifecast/internal/server"
	"lifecast/internal/sim"
	"lifecast/internal/wire"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestClientStaysInSync(t *testing.T) {
	for _, codec := range []wire.Codec{wire.JSON, wire.Msgpack} {
		t.Run(codec.Name(), func(t *testing.T) {
			logger := log.New(&bytes.Buffer{}, "", 0)
			engine := sim.New(core.NewGridFunc(30, 30, 20, core.RandomStates(core.NewRNG(8))), 4)
			hub := server.NewHub(engine, sim.NewGateway(engine.Queue(), engine.Dimensions()), server.DefaultConfig(), server.Deps{Logger: logger})
			scheduler := sim.NewScheduler(engine, hub, time.Hour, sim.Deps{Logger: logger})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go hub.Run(ctx)

			srv := httptest.NewServer(server.NewMux(hub, engine, ""))
			defer srv.Close()

			client := NewClient("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", codec, logger)
			go client.Run(ctx)
			waitFor(t, "initial snapshot", func() bool {
				return client.Replica() != nil
			})

			var glider [5][5]uint8
			glider[0][1], glider[1][2], glider[2][0], glider[2][1], glider[2][2] = 1, 1, 1, 1, 1
			if err := client.Submit(glider, 10, 10); err != nil {
				t.Fatalf("Submit: %v", err)
			}
			waitFor(t, "queued pattern", func() bool { return engine.Queue().Len() > 0 })

			for i := 0; i < 10; i++ {
				scheduler.Step()
			}
			waitFor(t, "replica to catch up", func() bool {
				return client.Replica().Iteration() == engine.Iteration()
			})
			_, want := engine.Digest()
			if _, got := client.Replica().Digest(); got != want {
				t.Fatal("replica diverged")
			}

			if err := client.Submit(glider, 0, 0); err != nil {
				t.Fatalf("Submit: %v", err)
			}
			waitFor(t, "second pattern", func() bool { return engine.Queue().Len() > 0 })
		})
	}
}

func TestClientReceivesRejections(t *testing.T) {
	logger := log.New(&bytes.Buffer{}, "", 0)
	engine := sim.New(core.NewGrid(10, 10, 20), 2)
	cfg := server.DefaultConfig()
	cfg.SubmitRate = 0.001
	cfg.SubmitBurst = 1
	hub := server.NewHub(engine, sim.NewGateway(engine.Queue(), engine.Dimensions()), cfg, server.Deps{Logger: logger})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	srv := httptest.NewServer(server.NewMux(hub, engine, ""))
	defer srv.Close()

	client := NewClient("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", wire.JSON, logger)
	if err := client.Submit([5][5]uint8{}, 0, 0); err != ErrNotConnected {
		t.Fatalf("Submit before connect err = %v", err)
	}
	go client.Run(ctx)
	waitFor(t, "initial snapshot", func() bool { return client.Replica() != nil })

	client.Submit([5][5]uint8{}, 0, 0)
	client.Submit([5][5]uint8{}, 0, 0)
	select {
	case rej := <-client.Rejections():
		if rej.Reason != server.ReasonRateLimited {
			t.Fatalf("reason = %q", rej.Reason)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no rejection received")
	}
}
