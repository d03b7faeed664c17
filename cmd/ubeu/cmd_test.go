package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func platform(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	ok := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/health", ok(`{"status":"ok"}`))
	mux.HandleFunc("/api/v1/identity/did:ubeu:alice", ok(`{"success":true,"data":{"did":"did:ubeu:alice","userId":"user-1","isActive":true}}`))
	mux.HandleFunc("/api/v1/credential/verify", ok(`{"success":true,"data":{"valid":false}}`))
	mux.HandleFunc("/api/v1/domains/types", ok(`{"success":true,"data":["personal","business"]}`))
	mux.HandleFunc("/api/v1/echo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"method": r.Method, "body": body})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func run(t *testing.T, server *httptest.Server, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd := rootCmd()
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(append(args,
		"--baseurl", server.URL,
		"--maxretries", "0",
		"--logformat", "json",
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
	))
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCmd_Commands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"status", "init", "login", "logout", "request", "identity", "credential", "wallet", "validate", "metrics"} {
		assert.True(t, names[want], want)
	}
}

func TestInitCommand(t *testing.T) {
	server := platform(t)

	out, err := run(t, server, "init")
	require.NoError(t, err)
	assert.Contains(t, out, server.URL)
}

func TestIdentityResolveCommand(t *testing.T) {
	server := platform(t)

	out, err := run(t, server, "identity", "resolve", "did:ubeu:alice")
	require.NoError(t, err)

	var did map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &did))
	assert.Equal(t, "user-1", did["userId"])
}

func TestCredentialVerifyCommandFailsWhenInvalid(t *testing.T) {
	server := platform(t)

	_, err := run(t, server, "credential", "verify", "vc-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid")
}

func TestRequestCommand(t *testing.T) {
	server := platform(t)

	out, err := run(t, server, "request", "post", "/api/v1/echo", "--data", `{"a":1}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"POST","body":{"a":1}}`, out)

	_, err = run(t, server, "request", "TRACE", "/api/v1/echo")
	assert.Error(t, err)

	_, err = run(t, server, "request", "POST", "/api/v1/echo", "--data", `{bad`)
	assert.Error(t, err)
}

func TestRequestCommandNotFound(t *testing.T) {
	server := platform(t)

	_, err := run(t, server, "request", "GET", "/api/v1/missing")
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	server := platform(t)
	dir := t.TempDir()

	out, err := run(t, server, "validate", "--checks", "health,domain_types", "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Passed: 2/2")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	var report ValidationReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 2, report.Passed)
	assert.Equal(t, server.URL, report.BaseURL)
}

func TestValidateCommandReportsFailures(t *testing.T) {
	server := platform(t)

	out, err := run(t, server, "validate", "--checks", "health,wallet_networks", "--output", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "FAIL wallet_networks")
	assert.Contains(t, out, "trace ")

	_, err = run(t, server, "validate", "--checks", "bogus", "--output", t.TempDir())
	assert.ErrorContains(t, err, "unknown check")
}

func TestServeMetrics(t *testing.T) {
	server := platform(t)

	reg := prometheus.NewRegistry()
	cmd := &cobra.Command{}
	cmd.Flags().AddFlagSet(rootCmd().PersistentFlags())
	require.NoError(t, cmd.Flags().Parse([]string{
		"--baseurl", server.URL,
		"--maxretries", "0",
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
	}))
	cmd.SetErr(new(bytes.Buffer))

	client, _, err := newClient(cmd, reg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, serveMetrics(ctx, client, reg, "127.0.0.1:0", 20*time.Millisecond))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
