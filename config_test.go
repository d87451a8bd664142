package gossip

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "node.yml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadConfigStaticMode(t *testing.T) {
	path := writeConfigFile(t, `
self_host: node-a.example.com
self_port: 9100
discovery_mode: static
static_peers:
  - host: node-b.example.com
    port: 9100
message_ttl_seconds: 30
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MessageTTL() != 30*time.Second {
		t.Fatalf("MessageTTL() = %v, want 30s", cfg.MessageTTL())
	}

	self, err := cfg.SelfIdentity()
	if err != nil {
		t.Fatalf("SelfIdentity: %v", err)
	}
	if self.Port != 9100 {
		t.Fatalf("SelfIdentity().Port = %d, want 9100", self.Port)
	}

	discovery, err := cfg.BuildDiscovery(context.Background())
	if err != nil {
		t.Fatalf("BuildDiscovery: %v", err)
	}
	if _, ok := discovery.(StaticDiscovery); !ok {
		t.Fatalf("BuildDiscovery() = %T, want StaticDiscovery", discovery)
	}
}

func TestLoadConfigDefaultsMessageTTL(t *testing.T) {
	path := writeConfigFile(t, `
self_host: node-a.example.com
discovery_mode: dns
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MessageTTL() != defaultMessageTTLSeconds*time.Second {
		t.Fatalf("MessageTTL() = %v, want the default", cfg.MessageTTL())
	}

	self, err := cfg.SelfIdentity()
	if err != nil {
		t.Fatalf("SelfIdentity: %v", err)
	}
	if self.Port != defaultSelfPort {
		t.Fatalf("SelfIdentity().Port = %d, want default %d", self.Port, defaultSelfPort)
	}
}

func TestLoadConfigRejectsMissingSelfHost(t *testing.T) {
	path := writeConfigFile(t, `
discovery_mode: static
static_peers:
  - host: node-b.example.com
    port: 9100
`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected a config error for a missing self_host")
	}
}

func TestLoadConfigRejectsStaticModeWithoutPeers(t *testing.T) {
	path := writeConfigFile(t, `
self_host: node-a.example.com
discovery_mode: static
`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected a config error when discovery_mode is static with no static_peers")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("expected a config error for a missing file")
	}
}
