package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	app := newTestApplication(t)
	app.config.port = 8181

	srv := app.newServer()

	assert.Equal(t, ":8181", srv.Addr)
	assert.NotNil(t, srv.Handler)
	assert.NotNil(t, srv.ErrorLog)
	assert.Equal(t, 10*time.Second, srv.WriteTimeout)
}

func TestRun_StopsOnCancel(t *testing.T) {
	app := newTestApplication(t)
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: app.routes()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.run(ctx, srv) }()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}

func TestRun_ListenFailure(t *testing.T) {
	app := newTestApplication(t)
	srv := &http.Server{Addr: "bad-address", Handler: app.routes()}

	err := app.run(context.Background(), srv)
	assert.Error(t, err)
}
