package gossip

import (
	"fmt"
	"net"
)

// PeerIdentity identifies a single peer on the network by host and port.
// Two identities are equal iff their Host strings and Port numbers are
// equal; Host is compared byte-for-byte as supplied and is never
// canonicalized or resolved, so operators must configure peers
// consistently.
//
// A PeerIdentity is immutable after construction and is safe to use as a
// map key and to compare with ==.
type PeerIdentity struct {
	Host string
	Port uint16
}

// NewPeerIdentity constructs a PeerIdentity from a host and port.  Port 0
// is reserved as invalid and is rejected.
func NewPeerIdentity(host string, port uint16) (PeerIdentity, error) {
	if host == "" {
		return PeerIdentity{}, makeError(ErrConfig, "peer host must not be empty")
	}
	if port == 0 {
		return PeerIdentity{}, makeError(ErrConfig, "peer port must not be zero")
	}
	return PeerIdentity{Host: host, Port: port}, nil
}

// String renders the peer as "host:port".
func (p PeerIdentity) String() string {
	return net.JoinHostPort(p.Host, fmt.Sprintf("%d", p.Port))
}

// Equal reports whether p and other identify the same peer.
func (p PeerIdentity) Equal(other PeerIdentity) bool {
	return p == other
}

// Less orders peers lexicographically on Host, then numerically on Port.
// It gives PeerIdentity a total order, used only where a deterministic
// iteration or sort order is convenient (e.g. tests); the wire protocol
// never depends on it.
func (p PeerIdentity) Less(other PeerIdentity) bool {
	if p.Host != other.Host {
		return p.Host < other.Host
	}
	return p.Port < other.Port
}

// containsPeer reports whether set contains target using PeerIdentity
// equality.
func containsPeer(set []PeerIdentity, target PeerIdentity) bool {
	for _, p := range set {
		if p.Equal(target) {
			return true
		}
	}
	return false
}
