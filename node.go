package gossip

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nodegossip/gossip/internal/cache"
	"github.com/nodegossip/gossip/internal/hub"
)

// stopGracePeriod bounds how long Stop waits for the worker to acknowledge
// cancellation before forcibly closing the endpoint.
const stopGracePeriod = 5 * time.Second

// maxConsecutiveReceiveFailures bounds how many non-Closed receive errors
// in a row the worker tolerates before giving up and moving to Stopping.
const maxConsecutiveReceiveFailures = 100

// cacheSweepInterval is how often the duplicate-suppression cache scans
// for expired entries.  Correctness never depends on this running on
// schedule; it only bounds memory.
const cacheSweepInterval = time.Minute

// maxMessageAge and maxClockSkew bound how far an envelope's timestamp may
// sit outside "now" before process treats the datagram as undecodable.
// This is a clock-sanity guard, not authentication: it catches obviously
// stale or forged-future envelopes without any signature scheme.
const (
	maxMessageAge = 10 * time.Minute
	maxClockSkew  = 30 * time.Second
)

type nodeState int32

const (
	stateCreated nodeState = iota
	stateRunning
	stateStopping
	stateStopped
	stateClosed
)

// Delivery is one accepted message as handed to a subscriber: the envelope
// as observed at this node (already carrying self in its notifiedSet) and
// the decoded payload.
type Delivery[T any] struct {
	Envelope Envelope
	Payload  T
}

// Subscription is a handle returned by Node.Subscribe.  Receive yields the
// lazy sequence of accepted messages; it terminates cleanly once the node
// stops or Unsubscribe is called on this handle.
type Subscription[T any] struct {
	inner *hub.Subscription[Delivery[T]]
}

// Receive returns the next delivered message, or ok=false once the
// subscription has ended.
func (s *Subscription[T]) Receive() (Delivery[T], bool) {
	item, ok := s.inner.Receive()
	return item.Value, ok
}

// Node is the gossip runtime for payload type T.  It owns a datagram
// endpoint, a duplicate-suppression cache, a subscription hub, and one
// background worker driving the receive/process/forward pipeline: decode
// an incoming datagram, admit it into the cache if not already seen,
// publish it to local subscribers, and forward it to every peer not yet
// in its notified-set.
type Node[T any] struct {
	self      PeerIdentity
	endpoint  Endpoint
	discovery Discovery
	codec     Codec[T]

	cache *cache.Cache[Envelope]
	hub   *hub.Hub[Delivery[T]]

	mu     sync.Mutex
	state  nodeState
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Node in the Created state.  ttl must be positive.
func New[T any](self PeerIdentity, endpoint Endpoint, discovery Discovery, codec Codec[T], ttl time.Duration) (*Node[T], error) {
	if endpoint == nil {
		return nil, makeError(ErrConfig, "new node: endpoint must not be nil")
	}
	if discovery == nil {
		return nil, makeError(ErrConfig, "new node: discovery must not be nil")
	}
	if codec == nil {
		return nil, makeError(ErrConfig, "new node: codec must not be nil")
	}
	if ttl <= 0 {
		return nil, makeError(ErrConfig, "new node: message ttl must be positive")
	}
	return &Node[T]{
		self:      self,
		endpoint:  endpoint,
		discovery: discovery,
		codec:     codec,
		cache:     cache.New[Envelope](ttl),
		hub:       hub.New[Delivery[T]](),
		state:     stateCreated,
	}, nil
}

// Self returns the node's own identity.
func (n *Node[T]) Self() PeerIdentity {
	return n.self
}

// CacheSize returns the number of live entries in the duplicate-suppression
// cache, exposed for tests and diagnostics.
func (n *Node[T]) CacheSize() int {
	return n.cache.Size()
}

// Start transitions the node Created -> Running and launches its worker.
// It fails with a LifecycleError from any other state.
func (n *Node[T]) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != stateCreated {
		return makeError(ErrLifecycle, "start: node is not in the Created state")
	}

	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	n.state = stateRunning

	n.wg.Add(2)
	go n.run(ctx)
	go func() {
		defer n.wg.Done()
		n.cache.StartGC(cacheSweepInterval)
	}()

	return nil
}

// Stop transitions the node Running -> Stopping -> Stopped: it cancels the
// receive loop, waits for in-flight processing to drain (bounded by
// stopGracePeriod, after which the endpoint is closed forcibly to unblock
// the pending receive), then completes every subscriber sequence.  It is
// idempotent once the node has reached Stopped.
func (n *Node[T]) Stop() error {
	n.mu.Lock()
	switch n.state {
	case stateStopped:
		n.mu.Unlock()
		return nil
	case stateClosed:
		n.mu.Unlock()
		return makeError(ErrLifecycle, "stop: node is closed")
	case stateCreated:
		n.mu.Unlock()
		return makeError(ErrLifecycle, "stop: node was never started")
	}
	if n.state == stateRunning {
		n.state = stateStopping
		n.cancel()
	}
	n.mu.Unlock()

	// The cache GC goroutine is only waiting on n.cache's own stop channel,
	// not on ctx, so it must be told to stop here rather than after
	// draining below - otherwise wg.Wait would deadlock on a goroutine
	// whose shutdown signal hasn't been sent yet.
	n.cache.Stop()

	drained := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-time.After(stopGracePeriod):
		log.Warn("stop grace period elapsed, forcing endpoint closed",
			zap.String("self", n.self.String()))
		_ = n.endpoint.Close()
		<-drained
	}

	n.hub.Close()

	n.mu.Lock()
	n.state = stateStopped
	n.mu.Unlock()
	return nil
}

// Close releases the node's endpoint and cache.  It is callable from
// Created, Stopped, or Running (in which case it implies Stop).  It is
// idempotent; Start, Stop and Originate after Close fail with a
// LifecycleError.  Subscribe and Unsubscribe return no error.
func (n *Node[T]) Close() error {
	n.mu.Lock()
	state := n.state
	n.mu.Unlock()

	if state == stateClosed {
		return nil
	}
	if state == stateRunning || state == stateStopping {
		if err := n.Stop(); err != nil {
			return err
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == stateClosed {
		return nil
	}
	n.state = stateClosed
	n.cache.Stop()
	return n.endpoint.Close()
}

// Subscribe registers a new subscriber and returns its handle.
func (n *Node[T]) Subscribe() *Subscription[T] {
	return &Subscription[T]{inner: n.hub.Subscribe()}
}

// Unsubscribe removes s.  Items already delivered to s remain valid; no
// further items will arrive.
func (n *Node[T]) Unsubscribe(s *Subscription[T]) {
	s.inner.Unsubscribe()
}

// Originate builds a fresh envelope around payload, admits it locally,
// adds self to its notifiedSet, and forwards it to every discovered peer.
// It does not publish to local subscribers: the originator already holds
// the payload. It returns the number of peers the endpoint accepted a
// send for.
func (n *Node[T]) Originate(ctx context.Context, payload T) (int, error) {
	n.mu.Lock()
	running := n.state == stateRunning
	n.mu.Unlock()
	if !running {
		return 0, makeError(ErrLifecycle, "originate: node is not running")
	}

	env := newEnvelope().withSelf(n.self)
	n.cache.TryAdmit(env.id.String(), env)

	return n.forward(ctx, env, payload), nil
}

// run is the single long-running worker driving receive -> process ->
// forward.
func (n *Node[T]) run(ctx context.Context) {
	defer n.wg.Done()

	consecutiveFailures := 0
	for {
		if ctx.Err() != nil {
			return
		}

		data, from, err := n.endpoint.Receive(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) || ctx.Err() != nil {
				return
			}
			consecutiveFailures++
			log.Warn("endpoint receive failed", zap.Error(err), zap.Int("consecutiveFailures", consecutiveFailures))
			if consecutiveFailures >= maxConsecutiveReceiveFailures {
				log.Error("too many consecutive receive failures, stopping worker",
					zap.String("self", n.self.String()))
				n.mu.Lock()
				if n.state == stateRunning {
					n.state = stateStopping
				}
				n.mu.Unlock()
				return
			}
			continue
		}
		consecutiveFailures = 0

		n.process(ctx, data, from)
	}
}

// process decodes an incoming datagram, admits it into the cache if not
// already seen, publishes it to local subscribers, and forwards it on.
func (n *Node[T]) process(ctx context.Context, data []byte, from PeerIdentity) {
	env, payload, err := n.codec.Decode(data)
	if err != nil {
		log.Debug("dropping undecodable datagram", zap.Stringer("from", from), zap.Error(err))
		return
	}

	if age := time.Since(env.timestamp); age > maxMessageAge || age < -maxClockSkew {
		log.Debug("dropping envelope outside the replay window",
			zap.Stringer("from", from), zap.Duration("age", age))
		return
	}

	if !n.cache.TryAdmit(env.id.String(), env) {
		return
	}

	env = env.withSelf(n.self)
	n.hub.Publish(Delivery[T]{Envelope: env, Payload: payload})

	n.forward(ctx, env, payload)
}

// forward serializes env+payload once and sends it to every discovered
// peer absent from env's notifiedSet, excluding self.  Discovery and send
// failures are logged and do not abort the cycle.
func (n *Node[T]) forward(ctx context.Context, env Envelope, payload T) int {
	peers, err := n.discovery.Enumerate(ctx)
	if err != nil {
		log.Warn("discovery enumerate failed, treating as empty neighbour set", zap.Error(err))
		return 0
	}

	data, err := n.codec.Encode(env, payload)
	if err != nil {
		log.Error("encode failed, dropping forward cycle", zap.Error(err))
		return 0
	}

	notified := env.NotifiedSet()
	sent := 0
	for _, peer := range peers {
		if peer.Equal(n.self) || containsPeer(notified, peer) {
			continue
		}
		if _, err := n.endpoint.Send(ctx, data, peer); err != nil {
			log.Warn("send failed", zap.Stringer("peer", peer), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}
