package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	config "example.com/tweetfeed/internal/init"
	"example.com/tweetfeed/internal/store"
	"github.com/stretchr/testify/require"
)

// TestRun_GracefulShutdown starts the real server loop, serves one request and
// verifies Run returns once the context is cancelled.
func TestRun_GracefulShutdown(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	// Reserve a free port for the server
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := &config.Config{ServerAddr: addr}
	s := New(st, Options{CredentialKey: "test-secret", UploadDir: t.TempDir()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, s, cfg)
		close(done)
	}()

	// Wait until the server answers
	var resp *http.Response
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err = http.Get("http://" + addr + "/healthz")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case <-done:
	case <-time.After(11 * time.Second):
		t.Fatal("server did not shutdown gracefully within the expected time")
	}

	_, err = http.Get("http://" + addr + "/healthz")
	require.Error(t, err)
}
