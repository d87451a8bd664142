package gossip

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// wireNotifiedPeer is the on-the-wire representation of a single notified
// peer.
type wireNotifiedPeer struct {
	Hostname string `json:"hostname"`
	Port     uint16 `json:"port"`
}

// wireEnvelope is the on-the-wire representation of an envelope plus its
// payload.  encoding/json matches field names case-insensitively on
// decode when no exact match exists, which gives interoperating codecs
// case-insensitive field matching without extra code.
type wireEnvelope[T any] struct {
	ID            uuid.UUID          `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	NotifiedNodes []wireNotifiedPeer `json:"notifiedNodes"`
	Payload       T                  `json:"payload"`
}

// JSONCodec is the reference Codec implementation, generalized to an
// arbitrary payload type T via Go generics.
type JSONCodec[T any] struct{}

// NewJSONCodec returns a JSONCodec for payload type T.
func NewJSONCodec[T any]() JSONCodec[T] {
	return JSONCodec[T]{}
}

// Encode implements Codec.
func (JSONCodec[T]) Encode(env Envelope, payload T) ([]byte, error) {
	wire := wireEnvelope[T]{
		ID:        env.id,
		Timestamp: env.timestamp,
		Payload:   payload,
	}
	wire.NotifiedNodes = make([]wireNotifiedPeer, len(env.notifiedSet))
	for i, p := range env.notifiedSet {
		wire.NotifiedNodes[i] = wireNotifiedPeer{Hostname: p.Host, Port: p.Port}
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return nil, makeError(ErrDecode, "encode: "+err.Error())
	}
	return data, nil
}

// Decode implements Codec.  Malformed or truncated input (including
// datagrams truncated by the OS) is reported as a DecodeError-kind Error.
func (JSONCodec[T]) Decode(data []byte) (Envelope, T, error) {
	var wire wireEnvelope[T]
	var zero T
	if err := json.Unmarshal(data, &wire); err != nil {
		return Envelope{}, zero, makeError(ErrDecode, "decode: "+err.Error())
	}
	if wire.ID == uuid.Nil {
		return Envelope{}, zero, makeError(ErrDecode, "decode: missing id")
	}
	notified := make([]PeerIdentity, len(wire.NotifiedNodes))
	for i, p := range wire.NotifiedNodes {
		notified[i] = PeerIdentity{Host: p.Hostname, Port: p.Port}
	}
	env := Envelope{
		id:          wire.ID,
		timestamp:   wire.Timestamp,
		notifiedSet: notified,
	}
	return env, wire.Payload, nil
}
