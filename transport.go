package gossip

import "context"

// Endpoint is the abstract datagram transport the node runtime depends
// on, so tests can substitute a queueing stand-in.  It models an
// unreliable, message-oriented unicast channel: one Send does not
// guarantee a corresponding Receive anywhere.
type Endpoint interface {
	// Send transmits data to the given peer and returns the number of
	// bytes accepted for send, or a SendError.  Concurrent callers are
	// serialized by the implementation so datagrams are never
	// interleaved.
	Send(ctx context.Context, data []byte, peer PeerIdentity) (int, error)

	// Receive blocks until a datagram is available or the endpoint is
	// closed.  On close it returns an Error wrapping ErrClosed.
	Receive(ctx context.Context) (data []byte, from PeerIdentity, err error)

	// Close releases the endpoint's resources.  It is idempotent and
	// unblocks any in-flight Receive with ErrClosed.
	Close() error
}
