// ABOUTME: Tests for the mdpreview command tree: config loading, convert, version and server wiring.
// ABOUTME: Runs commands in-process against buffers and an httptest conversion service.
package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/mdpreview/web"
)

// runCmd executes the root command with args in an empty working directory.
func runCmd(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	chdir(t, t.TempDir())

	out, _, err := runCmd(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "mdpreview dev\n", out)
}

func TestVersionIgnoresBrokenConfig(t *testing.T) {
	chdir(t, t.TempDir())

	_, _, err := runCmd(t, "", "--config", "missing.yaml", "version")
	assert.NoError(t, err)
}

func TestConfigPrintsDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	out, _, err := runCmd(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "addr: 127.0.0.1:3001")
	assert.Contains(t, out, "allowed_origin: http://localhost:3000")
	assert.Contains(t, out, "view_mode: split")
}

func TestConfigFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mdpreview.yaml"),
		[]byte("server:\n  addr: 0.0.0.0:9000\neditor:\n  view_mode: preview\n"), 0o644))
	t.Setenv("MDPREVIEW_LOG_LEVEL", "debug")

	out, _, err := runCmd(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "# loaded from")
	assert.Contains(t, out, "addr: 0.0.0.0:9000")
	assert.Contains(t, out, "view_mode: preview")
	assert.Contains(t, out, "level: debug")
}

func TestLogLevelFlagOverridesEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MDPREVIEW_LOG_LEVEL", "debug")

	out, _, err := runCmd(t, "", "--log-level", "error", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "level: error")
}

func TestInvalidConfigRejected(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MDPREVIEW_EDITOR_VIEW_MODE", "sideways")

	_, _, err := runCmd(t, "", "config")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "editor.view_mode")
}

func TestConvertLocalFromStdin(t *testing.T) {
	chdir(t, t.TempDir())

	out, _, err := runCmd(t, "# Hello", "convert", "--local")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello</h1>")
}

func TestConvertLocalFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.md"), []byte("**bold**"), 0o644))

	out, _, err := runCmd(t, "", "convert", "--local", "doc.md")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>bold</strong>")
}

func TestConvertRejectsBlankInput(t *testing.T) {
	chdir(t, t.TempDir())

	_, _, err := runCmd(t, "  \n\t", "convert", "--local")
	assert.ErrorIs(t, err, errEmptyInput)
}

func TestConvertMissingFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, _, err := runCmd(t, "", "convert", "--local", "nope.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.md")
}

func TestConvertThroughService(t *testing.T) {
	chdir(t, t.TempDir())

	srv, err := web.NewServer(web.ServerConfig{})
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	out, _, err := runCmd(t, "- [x] done", "convert", "--api-url", ts.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "<li")
	assert.Contains(t, out, "done")
}

func TestConvertServiceUnavailable(t *testing.T) {
	chdir(t, t.TempDir())

	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()

	_, _, err := runCmd(t, "text", "convert", "--api-url", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to convert markdown")
}

func TestBuildServerUsesConfig(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MDPREVIEW_SERVER_ADDR", "127.0.0.1:4567")

	a := &app{in: strings.NewReader(""), out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	root := newRootCmd(a.in, a.out, a.errOut)
	require.NoError(t, a.load(root))

	srv, err := a.buildServer()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:4567", srv.Addr())
}

func TestUnknownCommand(t *testing.T) {
	chdir(t, t.TempDir())

	_, _, err := runCmd(t, "", "frobnicate")
	assert.Error(t, err)
}

func TestWatchRequiresFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, _, err := runCmd(t, "", "watch")
	assert.Error(t, err)
}

func TestDefaultOutput(t *testing.T) {
	assert.Equal(t, "notes.html", defaultOutput("notes.md"))
	assert.Equal(t, filepath.Join("docs", "README.html"), defaultOutput(filepath.Join("docs", "README.markdown")))
	assert.Equal(t, "plain.html", defaultOutput("plain"))
}
