package server

import (
	"encoding/hex"
	"encoding/json"
	"net/http"

	"lifecast/internal/core"
)

// StateReporter exposes read-only engine state for the status endpoint.
type StateReporter interface {
	Digest() (int, [32]byte)
	Dimensions() core.Dimensions
	Population() int
}

// State is the body served at /state.
type State struct {
	Iteration   int    `json:"iteration"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Population  int    `json:"population"`
	Digest      string `json:"digest"`
	Connections int    `json:"connections"`
}

// NewMux wires the websocket endpoint, status endpoints and, when staticDir
// is set, a file server for the viewer assets.
func NewMux(hub *Hub, engine StateReporter, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /state", func(w http.ResponseWriter, r *http.Request) {
		iteration, digest := engine.Digest()
		dims := engine.Dimensions()
		state := State{
			Iteration:   iteration,
			Rows:        dims.Rows,
			Cols:        dims.Cols,
			Population:  engine.Population(),
			Digest:      hex.EncodeToString(digest[:]),
			Connections: hub.Connections(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(state); err != nil {
			hub.logf("[network] failed to write state: %v", err)
		}
	})
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}
