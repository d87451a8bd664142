package gossip

import (
	"context"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DiscoveryMode selects which Discovery implementation BuildDiscovery wires up.
type DiscoveryMode string

const (
	DiscoveryStatic DiscoveryMode = "static"
	DiscoveryDNS    DiscoveryMode = "dns"
)

const (
	defaultMessageTTLSeconds = 600
	defaultSelfPort          = 9055
)

// Peer is the YAML representation of one static peer entry.
type Peer struct {
	Host string `yaml:"host" validate:"required"`
	Port uint16 `yaml:"port" validate:"required"`
}

// Config is the on-disk configuration for a node.  It is loaded once at
// startup and translated into the constructor arguments New requires;
// nothing about it affects a node once running.
type Config struct {
	SelfHost string `yaml:"self_host" validate:"required"`
	SelfPort uint16 `yaml:"self_port"`

	DiscoveryMode DiscoveryMode `yaml:"discovery_mode"`
	StaticPeers   []Peer        `yaml:"static_peers" validate:"dive"`

	MessageTTLSeconds int64 `yaml:"message_ttl_seconds"`
}

var configValidator = validator.New()

// MessageTTL returns the configured cache retention window, falling back to
// the default when unset or non-positive.
func (c Config) MessageTTL() time.Duration {
	if c.MessageTTLSeconds <= 0 {
		return defaultMessageTTLSeconds * time.Second
	}
	return time.Duration(c.MessageTTLSeconds) * time.Second
}

func (c Config) resolvedSelfPort() uint16 {
	if c.SelfPort == 0 {
		return defaultSelfPort
	}
	return c.SelfPort
}

func (c Config) resolvedDiscoveryMode() DiscoveryMode {
	if c.DiscoveryMode == "" {
		return DiscoveryStatic
	}
	return c.DiscoveryMode
}

// SelfIdentity returns the PeerIdentity this configuration describes for
// binding and self-exclusion purposes.
func (c Config) SelfIdentity() (PeerIdentity, error) {
	return NewPeerIdentity(c.SelfHost, c.resolvedSelfPort())
}

func (c Config) staticPeerIdentities() ([]PeerIdentity, error) {
	out := make([]PeerIdentity, 0, len(c.StaticPeers))
	for _, p := range c.StaticPeers {
		id, err := NewPeerIdentity(p.Host, p.Port)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// BuildDiscovery constructs the Discovery implementation this
// configuration selects: StaticDiscovery for DiscoveryStatic, DNSDiscovery
// (using the process's default resolver) for DiscoveryDNS.
func (c Config) BuildDiscovery(_ context.Context) (Discovery, error) {
	switch c.resolvedDiscoveryMode() {
	case DiscoveryDNS:
		return NewDNSDiscovery(c.SelfHost, c.resolvedSelfPort(), nil), nil
	default:
		peers, err := c.staticPeerIdentities()
		if err != nil {
			return nil, err
		}
		return NewStaticDiscovery(peers), nil
	}
}

// Validate checks struct tags and cross-field consistency: DiscoveryStatic
// requires at least one static peer.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return makeError(ErrConfig, "validate config: "+err.Error())
	}
	if c.resolvedDiscoveryMode() == DiscoveryStatic && len(c.StaticPeers) == 0 {
		return makeError(ErrConfig, "validate config: discovery_mode static requires static_peers")
	}
	return nil
}

// LoadConfig reads and validates a YAML configuration file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, makeError(ErrConfig, "read config "+path+": "+err.Error())
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, makeError(ErrConfig, "parse config "+path+": "+err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
