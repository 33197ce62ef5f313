package capability

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestClassificationAvailable tests the backend reachability check.
func TestClassificationAvailable(t *testing.T) {
	t.Parallel()

	t.Run("empty url means absent", func(t *testing.T) {
		t.Parallel()
		if classificationAvailable(context.Background(), "") {
			t.Error("expected empty URL to be unavailable")
		}
	})

	t.Run("malformed url means absent", func(t *testing.T) {
		t.Parallel()
		if classificationAvailable(context.Background(), "::not-a-url") {
			t.Error("expected malformed URL to be unavailable")
		}
	})

	t.Run("reachable endpoint is available", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		defer srv.Close()

		if !classificationAvailable(context.Background(), srv.URL+"/v1/chat/completions") {
			t.Error("expected reachable endpoint to be available")
		}
	})

	t.Run("unreachable endpoint is absent", func(t *testing.T) {
		t.Parallel()
		// Grab a port and close it so the dial is refused.
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		addr := ln.Addr().String()
		_ = ln.Close()

		if classificationAvailable(context.Background(), "http://"+addr) {
			t.Error("expected refused endpoint to be unavailable")
		}
	})
}

// TestProbeIdempotent tests that probing twice yields the same result with
// no side effects.
func TestProbeIdempotent(t *testing.T) {
	t.Parallel()

	first := Probe(context.Background(), "", nil)
	second := Probe(context.Background(), "", nil)

	if first != second {
		t.Errorf("expected idempotent probe, got %+v then %+v", first, second)
	}
	if first.Classification {
		t.Error("expected classification absent with no URL configured")
	}
}
