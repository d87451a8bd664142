/*
Package gossip implements epidemic message dissemination across a set of
peers on an IP network.

# Overview

Each participating process runs one Node, which exposes three operations to
the embedding application: Originate a message, Subscribe to consume
incoming messages, and, transparently, participate in forwarding. Messages
propagate by gossip: a node that receives or originates a message forwards
it to every discovered peer not yet listed in the message's notified-set.
Every message carries a unique identifier, a creation timestamp, and the
growing set of peers known to have already handled it.

# Collaborators

The node depends on three small interfaces the caller supplies:

  - Endpoint, an unreliable datagram transport (UDPEndpoint is the concrete
    implementation; tests substitute an in-process stand-in).
  - Discovery, a stateless resolver of the current candidate peer set
    (StaticDiscovery or DNSDiscovery).
  - Codec, the application payload type's serializer/deserializer
    (JSONCodec is the reference implementation).

Config is a plain struct, not taken by the node itself: it is loaded once
at startup and translated into the node's constructor arguments via
Config.SelfIdentity and Config.BuildDiscovery.

# What this package does not do

There is no reliable delivery, no ordering guarantee between distinct
messages, no authentication or encryption of datagrams, no membership
health tracking, and no anti-entropy reconciliation. A node forwards a
message at most once per distinct forward cycle per unnotified peer; the
duplicate-suppression cache, not an acknowledgement protocol, is what keeps
the epidemic finite.
*/
package gossip
