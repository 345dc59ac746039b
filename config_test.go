package main

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	base := Config{port: 3000, sendBuffer: 64, spawnSpan: 200, pongWait: time.Minute}
	if err := base.validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"port zero", func(c *Config) { c.port = 0 }, "invalid port"},
		{"port too large", func(c *Config) { c.port = 70000 }, "invalid port"},
		{"send buffer", func(c *Config) { c.sendBuffer = 0 }, "send buffer"},
		{"spawn span", func(c *Config) { c.spawnSpan = -1 }, "spawn span"},
		{"pong wait", func(c *Config) { c.pongWait = time.Millisecond }, "pong wait"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "4321")
	t.Setenv("PRESENCE_SPAWN_MIN", "7")

	cfg := &Config{}
	cmd := newCmd(cfg)
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfg.port != 4321 {
		t.Fatalf("expected port from PORT, got %d", cfg.port)
	}
	if cfg.spawnMin != 7 {
		t.Fatalf("expected spawn min from env, got %d", cfg.spawnMin)
	}
	if cfg.spawnSpan != 200 {
		t.Fatalf("expected default spawn span, got %d", cfg.spawnSpan)
	}
}

func TestConfigPrefixedPortWins(t *testing.T) {
	t.Setenv("PORT", "4321")
	t.Setenv("PRESENCE_PORT", "5555")

	cfg := &Config{}
	_ = newCmd(cfg)
	if cfg.port != 5555 {
		t.Fatalf("expected PRESENCE_PORT to win, got %d", cfg.port)
	}
}
