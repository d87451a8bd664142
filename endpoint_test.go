package gossip

import (
	"context"
	"sync"
)

// memDatagram is one in-flight message inside a memNetwork.
type memDatagram struct {
	data []byte
	from PeerIdentity
}

// memNetwork is an in-process stand-in for a real UDP socket: a shared
// registry of per-peer inboxes that memEndpoint.Send delivers into
// directly, with no real I/O involved.
type memNetwork struct {
	mu    sync.Mutex
	boxes map[PeerIdentity]chan memDatagram
}

func newMemNetwork() *memNetwork {
	return &memNetwork{boxes: make(map[PeerIdentity]chan memDatagram)}
}

// endpoint registers id and returns an Endpoint delivering into and out of
// its inbox.
func (n *memNetwork) endpoint(id PeerIdentity) *memEndpoint {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch := make(chan memDatagram, 64)
	n.boxes[id] = ch
	return &memEndpoint{network: n, self: id, inbox: ch, closed: make(chan struct{})}
}

type memEndpoint struct {
	network *memNetwork
	self    PeerIdentity
	inbox   chan memDatagram

	closeOnce sync.Once
	closed    chan struct{}
}

func (e *memEndpoint) Send(_ context.Context, data []byte, peer PeerIdentity) (int, error) {
	e.network.mu.Lock()
	ch, ok := e.network.boxes[peer]
	e.network.mu.Unlock()
	if !ok {
		return 0, makeError(ErrSend, "memEndpoint: no such peer registered: "+peer.String())
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	select {
	case ch <- memDatagram{data: cp, from: e.self}:
		return len(data), nil
	default:
		return 0, makeError(ErrSend, "memEndpoint: peer inbox full: "+peer.String())
	}
}

func (e *memEndpoint) Receive(ctx context.Context) ([]byte, PeerIdentity, error) {
	select {
	case <-e.closed:
		return nil, PeerIdentity{}, makeError(ErrClosed, "memEndpoint: closed")
	case <-ctx.Done():
		return nil, PeerIdentity{}, makeError(ErrReceive, "memEndpoint: context done")
	case d := <-e.inbox:
		return d.data, d.from, nil
	}
}

func (e *memEndpoint) Close() error {
	e.closeOnce.Do(func() { close(e.closed) })
	return nil
}
