package main

import (
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestServeReturnsListenerError(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer taken.Close()

	done := make(chan error, 1)
	go func() {
		done <- serve(&http.Server{Addr: taken.Addr().String()}, make(chan os.Signal))
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected the bind error to be returned")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after the listener failed")
	}
}

func TestServeStopsOnSignal(t *testing.T) {
	quit := make(chan os.Signal, 1)
	quit <- syscall.SIGTERM
	if err := serve(&http.Server{Addr: "127.0.0.1:0"}, quit); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}
