package commands

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/pagemeta/internal/render"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pagemeta.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const testConfig = `
server:
  address: 127.0.0.1:0
metadata:
  base_url: https://blog.example.com
  site_name: Example
store:
  backend: memory
log:
  level: error
`

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "pagemeta", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"version", "serve", "resolve"})
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	BuildDate = "2025-01-01"
	GoVersion = "go1.24"

	out, err := execute(t, context.Background(), "version")
	require.NoError(t, err)

	assert.Contains(t, out, "1.0.0-test")
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "go1.24")
}

func TestResolveCommand_Table(t *testing.T) {
	path := writeConfig(t, testConfig)

	out, err := execute(t, context.Background(), "resolve", "/posts/hello-world", "--config", path, "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "Route:    /posts/[slug]")
	assert.Contains(t, out, "Boundary: ok")
	assert.Contains(t, out, "Hello World | Example")
	assert.Contains(t, out, `href="https://blog.example.com/posts/hello-world"`)
}

func TestResolveCommand_Static(t *testing.T) {
	path := writeConfig(t, testConfig)

	out, err := execute(t, context.Background(), "resolve", "/posts/hello-world", "--config", path, "--no-color", "--static")
	require.NoError(t, err)

	assert.Contains(t, out, "Boundary: dynamic-usage")
	assert.Contains(t, out, "Dynamic:  params.slug")
}

func TestResolveCommand_JSON(t *testing.T) {
	path := writeConfig(t, testConfig)

	out, err := execute(t, context.Background(), "resolve", "/search", "--config", path, "--query", "q=go", "--json")
	require.NoError(t, err)

	var frames []render.Frame
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var f render.Frame
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &f))
		frames = append(frames, f)
	}
	require.Len(t, frames, 2)
	assert.Equal(t, render.FrameHead, frames[0].Kind)
	assert.Equal(t, render.FrameBoundary, frames[1].Kind)
	assert.Equal(t, render.StatusOK, frames[1].Status)
}

func TestResolveCommand_Errors(t *testing.T) {
	path := writeConfig(t, testConfig)

	_, err := execute(t, context.Background(), "resolve", "--config", path)
	assert.Error(t, err)

	_, err = execute(t, context.Background(), "resolve", "/", "--config", path, "--query", "%zz")
	assert.ErrorContains(t, err, "invalid query")

	_, err = execute(t, context.Background(), "resolve", "/", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestServeCommand_StopsOnCancel(t *testing.T) {
	path := writeConfig(t, testConfig)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var out bytes.Buffer
	go func() {
		cmd := NewRootCommand()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"serve", "--config", path})
		done <- cmd.ExecuteContext(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
