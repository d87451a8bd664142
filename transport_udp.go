package gossip

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
)

// maxDatagramSize bounds a single receive buffer.  Senders should keep
// serialized envelopes within a safe unicast MTU (roughly 1200 bytes);
// this buffer is sized generously above that so legitimate datagrams are
// never truncated by this layer, while still bounding a single
// allocation.
const maxDatagramSize = 8192

// udpEndpoint is the concrete Endpoint implementation, binding a UDP
// socket to selfPort on all local interfaces with broadcast permitted.
type udpEndpoint struct {
	conn *net.UDPConn

	// sendMu serializes Send calls so concurrent originate() and forward
	// cycles never interleave partial datagrams on the shared socket.
	sendMu sync.Mutex
}

// NewUDPEndpoint binds a UDP socket on all interfaces at selfPort and
// returns an Endpoint over it.
func NewUDPEndpoint(selfPort uint16) (Endpoint, error) {
	addr := &net.UDPAddr{IP: net.IPv4zero, Port: int(selfPort)}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, makeError(ErrConfig, "bind udp endpoint: "+err.Error())
	}
	return &udpEndpoint{conn: conn}, nil
}

// Send implements Endpoint.
func (e *udpEndpoint) Send(_ context.Context, data []byte, peer PeerIdentity) (int, error) {
	e.sendMu.Lock()
	defer e.sendMu.Unlock()

	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(peer.Host, strconv.Itoa(int(peer.Port))))
	if err != nil {
		return 0, makeError(ErrSend, "resolve "+peer.String()+": "+err.Error())
	}
	n, err := e.conn.WriteToUDP(data, addr)
	if err != nil {
		return n, makeError(ErrSend, "send to "+peer.String()+": "+err.Error())
	}
	return n, nil
}

// Receive implements Endpoint.
func (e *udpEndpoint) Receive(ctx context.Context) ([]byte, PeerIdentity, error) {
	if err := ctx.Err(); err != nil {
		return nil, PeerIdentity{}, makeError(ErrReceive, "receive: "+err.Error())
	}

	buf := make([]byte, maxDatagramSize)
	n, addr, err := e.conn.ReadFromUDP(buf)
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil, PeerIdentity{}, makeError(ErrClosed, "receive: endpoint closed")
		}
		return nil, PeerIdentity{}, makeError(ErrReceive, "receive: "+err.Error())
	}

	from := PeerIdentity{Host: addr.IP.String(), Port: uint16(addr.Port)}
	return buf[:n], from, nil
}

// Close implements Endpoint.  It is idempotent.
func (e *udpEndpoint) Close() error {
	err := e.conn.Close()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return makeError(ErrConfig, "close udp endpoint: "+err.Error())
	}
	return nil
}
