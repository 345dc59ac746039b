package main

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"
)

func TestServeFailsWhenPortTaken(t *testing.T) {
	held, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer held.Close()
	port := held.Addr().(*net.TCPAddr).Port

	cfg := &Config{
		bind:       "127.0.0.1",
		port:       port,
		sendBuffer: 64,
		spawnSpan:  200,
		pongWait:   time.Minute,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- serve(ctx, cfg) }()

	select {
	case err := <-errc:
		if err == nil || !strings.Contains(err.Error(), "listen") {
			t.Fatalf("expected listen error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("serve did not return on a taken port")
	}
}
