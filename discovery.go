package gossip

import (
	"context"
	"net"
)

// Discovery resolves the current set of candidate peers.  It is pure and
// re-evaluated on every forward cycle; there is no persistent membership
// table.
type Discovery interface {
	// Enumerate returns the current set of candidate peers.
	Enumerate(ctx context.Context) ([]PeerIdentity, error)
}

// StaticDiscovery returns a fixed, preconfigured set of peers.  It never
// fails.
type StaticDiscovery struct {
	peers []PeerIdentity
}

// NewStaticDiscovery returns a StaticDiscovery over the given peers.  The
// slice is copied so later mutation by the caller has no effect.
func NewStaticDiscovery(peers []PeerIdentity) StaticDiscovery {
	cp := make([]PeerIdentity, len(peers))
	copy(cp, peers)
	return StaticDiscovery{peers: cp}
}

// Enumerate implements Discovery.  It never fails.
func (s StaticDiscovery) Enumerate(_ context.Context) ([]PeerIdentity, error) {
	out := make([]PeerIdentity, len(s.peers))
	copy(out, s.peers)
	return out, nil
}

// LookupFunc resolves a hostname to its addresses.  It is an injectable
// seam so DNS resolution can be swapped out under test.
type LookupFunc func(ctx context.Context, host string) ([]net.IP, error)

// defaultLookup resolves host using the process's default DNS resolver.
func defaultLookup(ctx context.Context, host string) ([]net.IP, error) {
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	ips := make([]net.IP, len(addrs))
	for i, a := range addrs {
		ips[i] = a.IP
	}
	return ips, nil
}

// DNSDiscovery resolves host to all of its A/AAAA records and pairs each
// with port.  When only a node's own bind host is configured, this
// conflates "this node's bind name" with "the cluster rendezvous name";
// that is the deliberate default when no dedicated rendezvous name is
// supplied.
type DNSDiscovery struct {
	host   string
	port   uint16
	lookup LookupFunc
}

// NewDNSDiscovery returns a DNSDiscovery resolving host, pairing each
// resolved address with port.  If lookup is nil, the process's default
// DNS resolver is used.
func NewDNSDiscovery(host string, port uint16, lookup LookupFunc) DNSDiscovery {
	if lookup == nil {
		lookup = defaultLookup
	}
	return DNSDiscovery{host: host, port: port, lookup: lookup}
}

// Enumerate implements Discovery.  A lookup failure is reported as a
// DiscoveryError; the node's forward path treats that as an empty
// neighbour set for this cycle and logs it.
func (d DNSDiscovery) Enumerate(ctx context.Context) ([]PeerIdentity, error) {
	ips, err := d.lookup(ctx, d.host)
	if err != nil {
		return nil, makeError(ErrDiscovery, "dns lookup of "+d.host+": "+err.Error())
	}
	out := make([]PeerIdentity, len(ips))
	for i, ip := range ips {
		out[i] = PeerIdentity{Host: ip.String(), Port: d.port}
	}
	return out, nil
}
