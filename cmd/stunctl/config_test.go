package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsZeroValue(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("missing config file should not be an error: %v", err)
	}
	if len(cfg.Servers) != 0 {
		t.Errorf("expected no servers, got %+v", cfg.Servers)
	}
}

func TestLoadConfigParsesServersAndAuth(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[auth]
realm = "example.org"
secret = "shared-secret"

[[servers]]
name = "primary"
addr = "stun.example.org:3478"

[[servers]]
name = "relay"
addr = "turn.example.org:3478"
turn = true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Auth.Realm != "example.org" || cfg.Auth.Secret != "shared-secret" {
		t.Errorf("auth: got %+v", cfg.Auth)
	}
	if len(cfg.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(cfg.Servers))
	}
	if cfg.Servers[0].IsTURN {
		t.Error("primary server should not be marked as TURN")
	}
	if !cfg.Servers[1].IsTURN {
		t.Error("relay server should be marked as TURN")
	}
}

func TestConfiguredServersOverride(t *testing.T) {
	t.Parallel()

	cfg := &Config{Servers: []ServerConfig{{Name: "a", Addr: "a:3478"}, {Name: "b", Addr: "b:3478", IsTURN: true}}}

	if got := configuredServers(cfg, "override:3478"); len(got) != 1 || got[0] != "override:3478" {
		t.Errorf("override: got %v", got)
	}

	got := configuredServers(cfg, "")
	if len(got) != 1 || got[0] != "a:3478" {
		t.Errorf("non-TURN filter: got %v", got)
	}
}

func TestBehaviorName(t *testing.T) {
	t.Parallel()

	if got := behaviorName(true); got != "endpoint-independent" {
		t.Errorf("got %q", got)
	}
	if got := behaviorName(false); got != "address-dependent" {
		t.Errorf("got %q", got)
	}
}
