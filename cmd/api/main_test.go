package main

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunServerStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	srv := &http.Server{Addr: addr, Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServer(ctx, srv, time.Second) }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunServerReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := &http.Server{Addr: ln.Addr().String(), ReadHeaderTimeout: time.Second}

	err = runServer(context.Background(), srv, time.Second)

	assert.Error(t, err)
}

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()

	port := cmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "3001", port.DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("config"))
	assert.NotNil(t, cmd.Flags().Lookup("log-level"))
}

func TestLoadDotEnvWarnsWhenMissing(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	loadDotEnv(log, filepath.Join(t.TempDir(), ".env"))

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "failed to load .env file")
}

func TestLoadDotEnvSetsVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PHONEBOOK_DOTENV_TEST=loaded\n"), 0o600))
	t.Setenv("PHONEBOOK_DOTENV_TEST", "")
	require.NoError(t, os.Unsetenv("PHONEBOOK_DOTENV_TEST"))
	var buf bytes.Buffer

	loadDotEnv(slog.New(slog.NewTextHandler(&buf, nil)), path)

	assert.Equal(t, "loaded", os.Getenv("PHONEBOOK_DOTENV_TEST"))
	assert.Empty(t, buf.String())
}
