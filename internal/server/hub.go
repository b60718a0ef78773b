package server

import (
	"context"
	"errors"
	"log"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"lifecast/internal/core"
	"lifecast/internal/sim"
	"lifecast/internal/wire"
)

// Rejection reasons added on top of the gateway's validation reasons.
const (
	ReasonMalformedMessage = "malformed_message"
	ReasonRateLimited      = "rate_limited"
)

// ErrHubClosed is returned when the hub is no longer running.
var ErrHubClosed = errors.New("hub closed")

// Snapshotter provides the full state handed to new subscribers.
type Snapshotter interface {
	Snapshot() core.Snapshot
}

// Submitter validates and enqueues pattern submissions.
type Submitter interface {
	Submit(sim.Submission) ([]core.Injection, error)
}

// Config tunes per-connection buffering and submission throttling.
type Config struct {
	// SendBuffer is the number of outbound frames queued per connection
	// before the connection is considered stalled and dropped.
	SendBuffer int
	// SubmitRate is the sustained create_pattern rate per connection, in
	// patterns per second. Zero, the default, disables throttling.
	SubmitRate  float64
	SubmitBurst int
}

// DefaultConfig returns the standard hub settings.
func DefaultConfig() Config {
	return Config{SendBuffer: 64, SubmitBurst: 20}
}

// Deps carries shared infrastructure used by the hub.
type Deps struct {
	Logger *log.Logger
}

type subscriber struct {
	id      uuid.UUID
	codec   wire.Codec
	send    chan []byte
	limiter *rate.Limiter

	// baseline is the iteration of the snapshot this subscriber started
	// from; diffs at or below it are already reflected in that snapshot.
	baseline int
}

type registration struct {
	sub    *subscriber
	result chan error
}

type inbound struct {
	sub *subscriber
	req wire.CreatePattern
	err error
}

// Hub fans generation diffs out to every subscriber and serves each new
// subscriber one snapshot. All subscriber bookkeeping happens on the Run
// goroutine; other goroutines talk to it through channels, so registration,
// broadcast and submissions are observed in a single global order.
type Hub struct {
	source  Snapshotter
	gateway Submitter
	cfg     Config
	deps    Deps

	register   chan registration
	unregister chan *subscriber
	diffs      chan core.Diff
	inbound    chan inbound
	done       chan struct{}

	subscribers map[uuid.UUID]*subscriber
	connections atomic.Int64
}

// NewHub builds a hub serving snapshots from source and forwarding
// submissions to gateway.
func NewHub(source Snapshotter, gateway Submitter, cfg Config, deps Deps) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultConfig().SendBuffer
	}
	if cfg.SubmitBurst <= 0 {
		cfg.SubmitBurst = 1
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	return &Hub{
		source:      source,
		gateway:     gateway,
		cfg:         cfg,
		deps:        deps,
		register:    make(chan registration),
		unregister:  make(chan *subscriber),
		diffs:       make(chan core.Diff, 8),
		inbound:     make(chan inbound, 64),
		done:        make(chan struct{}),
		subscribers: make(map[uuid.UUID]*subscriber),
	}
}

func (h *Hub) logf(format string, args ...any) {
	h.deps.Logger.Printf(format, args...)
}

// Connections reports the number of live subscribers.
func (h *Hub) Connections() int {
	return int(h.connections.Load())
}

// Run processes hub events until ctx is cancelled, then closes every
// subscriber.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, sub := range h.subscribers {
				h.drop(sub)
			}
			return ctx.Err()
		case reg := <-h.register:
			reg.result <- h.handleRegister(reg.sub)
		case sub := <-h.unregister:
			if _, ok := h.subscribers[sub.id]; ok {
				h.drop(sub)
			}
		case diff := <-h.diffs:
			h.handleDiff(diff)
		case in := <-h.inbound:
			h.handleInbound(in)
		}
	}
}

// BroadcastDiff queues diff for delivery to every subscriber. Diffs must be
// passed in the order they were produced.
func (h *Hub) BroadcastDiff(diff core.Diff) {
	select {
	case h.diffs <- diff:
	case <-h.done:
	}
}

// subscribe registers a new subscriber. Its send channel already holds the
// encoded init_pack when subscribe returns.
func (h *Hub) subscribe(codec wire.Codec) (*subscriber, error) {
	sub := &subscriber{
		id:    uuid.New(),
		codec: codec,
		send:  make(chan []byte, h.cfg.SendBuffer),
	}
	if h.cfg.SubmitRate > 0 {
		sub.limiter = rate.NewLimiter(rate.Limit(h.cfg.SubmitRate), h.cfg.SubmitBurst)
	}
	reg := registration{sub: sub, result: make(chan error, 1)}
	select {
	case h.register <- reg:
	case <-h.done:
		return nil, ErrHubClosed
	}
	if err := <-reg.result; err != nil {
		return nil, err
	}
	return sub, nil
}

func (h *Hub) unsubscribe(sub *subscriber) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

func (h *Hub) deliver(in inbound) {
	select {
	case h.inbound <- in:
	case <-h.done:
	}
}

func (h *Hub) handleRegister(sub *subscriber) error {
	snap := h.source.Snapshot()
	data, err := sub.codec.Encode(wire.TypeInitPack, wire.NewInitPack(snap))
	if err != nil {
		h.logf("[network] conn=%s failed to encode init pack: %v", sub.id, err)
		return err
	}
	sub.baseline = snap.Iteration
	sub.send <- data
	h.subscribers[sub.id] = sub
	h.connections.Store(int64(len(h.subscribers)))
	return nil
}

func (h *Hub) handleDiff(diff core.Diff) {
	if len(h.subscribers) == 0 {
		return
	}
	pack := wire.NewUpdatePack(diff)
	frames := make(map[string][]byte, 2)
	for _, sub := range h.subscribers {
		if diff.Iteration <= sub.baseline {
			continue
		}
		frame, ok := frames[sub.codec.Name()]
		if !ok {
			encoded, err := sub.codec.Encode(wire.TypeUpdatePack, pack)
			if err != nil {
				h.logf("[network] conn=%s failed to encode update pack iteration=%d codec=%s: %v; disconnecting", sub.id, diff.Iteration, sub.codec.Name(), err)
				h.drop(sub)
				continue
			}
			frames[sub.codec.Name()] = encoded
			frame = encoded
		}
		h.enqueue(sub, frame)
	}
}

func (h *Hub) handleInbound(in inbound) {
	sub := in.sub
	if _, ok := h.subscribers[sub.id]; !ok {
		return
	}
	if in.err != nil {
		h.reject(sub, ReasonMalformedMessage, in.err.Error())
		return
	}
	if sub.limiter != nil && !sub.limiter.Allow() {
		h.reject(sub, ReasonRateLimited, "too many patterns")
		return
	}
	injections, err := h.gateway.Submit(sim.Submission{
		Pattern:   in.req.Pattern,
		OffsetRow: in.req.OffsetRow,
		OffsetCol: in.req.OffsetCol,
	})
	if err != nil {
		var verr *sim.ValidationError
		if errors.As(err, &verr) {
			h.reject(sub, verr.Reason, verr.Detail)
			return
		}
		h.reject(sub, ReasonMalformedMessage, err.Error())
		return
	}
	h.logf("[pattern] conn=%s queued injections=%d", sub.id, len(injections))
}

func (h *Hub) reject(sub *subscriber, reason, detail string) {
	h.logf("[pattern] conn=%s rejected reason=%s detail=%q", sub.id, reason, detail)
	data, err := sub.codec.Encode(wire.TypePatternRejected, wire.PatternRejected{Reason: reason, Detail: detail})
	if err != nil {
		h.logf("[network] conn=%s failed to encode rejection: %v", sub.id, err)
		return
	}
	h.enqueue(sub, data)
}

// enqueue hands a frame to the subscriber's write pump. A full buffer means
// the connection cannot keep up; it is dropped rather than skipping a diff.
func (h *Hub) enqueue(sub *subscriber, frame []byte) {
	select {
	case sub.send <- frame:
	default:
		h.logf("[network] conn=%s outbound buffer full (%d frames); disconnecting", sub.id, cap(sub.send))
		h.drop(sub)
	}
}

func (h *Hub) drop(sub *subscriber) {
	delete(h.subscribers, sub.id)
	close(sub.send)
	h.connections.Store(int64(len(h.subscribers)))
}
