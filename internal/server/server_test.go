package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/STRATINT/fightintel/internal/config"
)

func TestServeAndShutdown(t *testing.T) {
	cfg := config.ServerConfig{
		Port:            "0",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	srv := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), handler)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d", resp.StatusCode)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Serve returned error after shutdown: %v", err)
	}
}

func TestNewUsesConfiguredPort(t *testing.T) {
	srv := New(config.ServerConfig{Port: "9090"}, slog.Default(), http.NotFoundHandler())
	if srv.http.Addr != ":9090" {
		t.Errorf("addr = %q", srv.http.Addr)
	}
}
