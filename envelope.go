package gossip

import (
	"time"

	"github.com/google/uuid"
)

// Envelope carries the attributes every gossiped message has, regardless
// of payload type: a unique identifier, a creation timestamp, and the
// growing set of peers known to have already handled the message.
//
// The id, timestamp, and notifiedSet fields are assignable only by the
// node runtime; application code only ever observes an Envelope through
// the read-only accessors below, preserving the invariants of spec
// section 3: notifiedSet only grows along a propagation path, and id and
// timestamp never change after origination.
type Envelope struct {
	id          uuid.UUID
	timestamp   time.Time
	notifiedSet []PeerIdentity
}

// newEnvelope creates a freshly originated envelope: a new random id, the
// current UTC time, and an empty notified-set.  Only the node runtime
// calls this.
func newEnvelope() Envelope {
	return Envelope{
		id:        uuid.New(),
		timestamp: time.Now().UTC(),
	}
}

// ID returns the envelope's unique identifier.
func (e Envelope) ID() uuid.UUID {
	return e.id
}

// Timestamp returns the envelope's creation time, monotonic only with
// respect to the originating node.
func (e Envelope) Timestamp() time.Time {
	return e.timestamp
}

// NotifiedSet returns a copy of the peers known to have handled this
// envelope, in insertion order.  The copy is defensive; mutating it does
// not affect the envelope.
func (e Envelope) NotifiedSet() []PeerIdentity {
	out := make([]PeerIdentity, len(e.notifiedSet))
	copy(out, e.notifiedSet)
	return out
}

// withSelf returns a copy of the envelope with peer appended to the
// notified-set if it is not already present.  It never mutates e.
func (e Envelope) withSelf(peer PeerIdentity) Envelope {
	if containsPeer(e.notifiedSet, peer) {
		return e
	}
	grown := make([]PeerIdentity, len(e.notifiedSet), len(e.notifiedSet)+1)
	copy(grown, e.notifiedSet)
	grown = append(grown, peer)
	e.notifiedSet = grown
	return e
}
