package gossip

import "testing"

func TestNewPeerIdentityRejectsEmptyHost(t *testing.T) {
	if _, err := NewPeerIdentity("", 100); err == nil {
		t.Fatal("expected an error for an empty host")
	}
}

func TestNewPeerIdentityRejectsZeroPort(t *testing.T) {
	if _, err := NewPeerIdentity("example.com", 0); err == nil {
		t.Fatal("expected an error for port zero")
	}
}

func TestPeerIdentityString(t *testing.T) {
	p, err := NewPeerIdentity("example.com", 9055)
	if err != nil {
		t.Fatalf("NewPeerIdentity: %v", err)
	}
	if got, want := p.String(), "example.com:9055"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestPeerIdentityEqual(t *testing.T) {
	a, _ := NewPeerIdentity("example.com", 1)
	b, _ := NewPeerIdentity("example.com", 1)
	c, _ := NewPeerIdentity("example.com", 2)

	if !a.Equal(b) {
		t.Fatal("expected equal identities to compare equal")
	}
	if a.Equal(c) {
		t.Fatal("expected differing ports to compare unequal")
	}
}

func TestPeerIdentityEqualityIsCaseSensitive(t *testing.T) {
	a, _ := NewPeerIdentity("Example.com", 1)
	b, _ := NewPeerIdentity("example.com", 1)
	if a.Equal(b) {
		t.Fatal("hostnames should be compared byte-for-byte, not case-insensitively")
	}
}

func TestPeerIdentityLess(t *testing.T) {
	a, _ := NewPeerIdentity("a.example.com", 100)
	b, _ := NewPeerIdentity("b.example.com", 1)
	if !a.Less(b) {
		t.Fatal("expected a to sort before b on host")
	}

	x, _ := NewPeerIdentity("a.example.com", 1)
	y, _ := NewPeerIdentity("a.example.com", 2)
	if !x.Less(y) {
		t.Fatal("expected same host to fall back to numeric port order")
	}
}

func TestContainsPeer(t *testing.T) {
	a, _ := NewPeerIdentity("a.example.com", 1)
	b, _ := NewPeerIdentity("b.example.com", 1)
	c, _ := NewPeerIdentity("c.example.com", 1)

	set := []PeerIdentity{a, b}
	if !containsPeer(set, a) {
		t.Fatal("expected set to contain a")
	}
	if containsPeer(set, c) {
		t.Fatal("expected set to not contain c")
	}
}
