package gossip

import (
	"context"
	"errors"
	"net"
	"testing"
)

func TestStaticDiscoveryReturnsConfiguredPeers(t *testing.T) {
	a, _ := NewPeerIdentity("a.example.com", 1)
	b, _ := NewPeerIdentity("b.example.com", 2)
	d := NewStaticDiscovery([]PeerIdentity{a, b})

	got, err := d.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(got) != 2 || !got[0].Equal(a) || !got[1].Equal(b) {
		t.Fatalf("Enumerate() = %v, want [a, b]", got)
	}
}

func TestStaticDiscoveryDefensiveCopy(t *testing.T) {
	a, _ := NewPeerIdentity("a.example.com", 1)
	peers := []PeerIdentity{a}
	d := NewStaticDiscovery(peers)

	peers[0] = PeerIdentity{}

	got, _ := d.Enumerate(context.Background())
	if !got[0].Equal(a) {
		t.Fatal("mutating the caller's slice after construction must not affect StaticDiscovery")
	}
}

func TestDNSDiscoveryPairsResolvedIPsWithPort(t *testing.T) {
	lookup := func(_ context.Context, host string) ([]net.IP, error) {
		if host != "cluster.example.com" {
			t.Fatalf("lookup called with unexpected host %q", host)
		}
		return []net.IP{net.ParseIP("10.0.0.1"), net.ParseIP("10.0.0.2")}, nil
	}
	d := NewDNSDiscovery("cluster.example.com", 9055, lookup)

	got, err := d.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Enumerate() returned %d peers, want 2", len(got))
	}
	for _, p := range got {
		if p.Port != 9055 {
			t.Fatalf("peer %v has port %d, want 9055", p, p.Port)
		}
	}
}

func TestDNSDiscoveryWrapsLookupFailureAsDiscoveryError(t *testing.T) {
	boom := errors.New("boom")
	lookup := func(_ context.Context, _ string) ([]net.IP, error) { return nil, boom }
	d := NewDNSDiscovery("cluster.example.com", 9055, lookup)

	_, err := d.Enumerate(context.Background())
	if err == nil {
		t.Fatal("expected a discovery error on lookup failure")
	}
	if !errors.Is(err, ErrDiscovery) {
		t.Fatalf("expected errors.Is(err, ErrDiscovery), got %v", err)
	}
}
