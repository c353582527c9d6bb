package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPServer_UsesConfiguredTimeouts(t *testing.T) {
	app, _ := newTestApp(t)
	app.config.Server.Port = 9090
	app.config.Server.ReadTimeoutSeconds = 7
	app.config.Server.WriteTimeoutSeconds = 11

	srv := app.newHTTPServer(http.NotFoundHandler())

	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, 7*time.Second, srv.ReadTimeout)
	assert.Equal(t, 11*time.Second, srv.WriteTimeout)
	assert.Equal(t, 22*time.Second, srv.IdleTimeout)
}

func TestStartHTTPServer_ShutsDownOnCancel(t *testing.T) {
	app, mock := newTestApp(t)
	app.config.Server.Port = 0
	mock.ExpectClose()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.startHTTPServer(ctx, app.setupRouter()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.NoError(t, mock.ExpectationsWereMet(), "cleanup closes the database")
}
