package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliFixture struct {
	config     string
	pluginsDir string
}

func newCLIFixture(t *testing.T) cliFixture {
	t.Helper()
	dir := t.TempDir()
	pluginsDir := filepath.Join(dir, "plugins")

	writeScriptPlugin(t, pluginsDir, "echo", "", `printf '[{"title":"%s"}]\n' "$1"`)
	writeScriptPlugin(t, pluginsDir, "argtype", "", `printf '[{"title":"%s","badge":"%s"}]\n' "$MINIONS_ARG_TYPE" "$#"`)
	writeScriptPlugin(t, pluginsDir, "garbage", "", `echo 'not json'`)
	writeScriptPlugin(t, pluginsDir, "broken", "", `echo 'boom: dictionary missing' >&2; exit 3`)

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "log:\n  format: discard\n" +
		"plugins_dir: " + pluginsDir + "\n" +
		"timeout: 5s\n" +
		"emoji:\n  cache_path: " + filepath.Join(dir, "emoji.db") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	return cliFixture{config: cfgPath, pluginsDir: pluginsDir}
}

func writeScriptPlugin(t *testing.T, root, name, extraManifest, body string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	manifest := "name: " + name + "\nversion: 1.0.0\ntitle: " + strings.ToUpper(name) + "\nentrypoint: run.sh\n" + extraManifest
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.sh"), []byte("#!/bin/sh\n"+body+"\n"), 0o755))
}

func (f cliFixture) run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := runCLI(append([]string{"--config", f.config}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersionJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := runCLI([]string{"version", "--json"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var info versionInfo
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &info))
	assert.Equal(t, "0.1.0-dev", info.Version)
}

func TestUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := runCLI([]string{"frobnicate"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "unknown command")
}

func TestList(t *testing.T) {
	f := newCLIFixture(t)

	code, out, errOut := f.run("list", "--json")
	require.Equal(t, 0, code, errOut)

	var summaries []pluginSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	require.Len(t, summaries, 4)
	assert.Equal(t, "argtype", summaries[0].Name)
	assert.Equal(t, "ARGTYPE", summaries[0].Title)
	assert.True(t, summaries[0].EntrypointOK)

	code, out, _ = f.run("list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "echo")
	assert.Contains(t, out, "ready")
}

func TestListPluginsDirOverride(t *testing.T) {
	f := newCLIFixture(t)
	other := t.TempDir()
	writeScriptPlugin(t, other, "solo", "", `echo '[]'`)

	code, out, errOut := f.run("--plugins-dir", other, "list", "--json")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, `"solo"`)
	assert.NotContains(t, out, `"echo"`)
}

func TestRun(t *testing.T) {
	f := newCLIFixture(t)

	code, out, errOut := f.run("run", "--raw", "echo", "hello")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, `[{"title":"hello"}]`+"\n", out)

	code, out, errOut = f.run("run", "echo", "hello")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "1. hello")
}

func TestRunPassesPluginFlagsThrough(t *testing.T) {
	f := newCLIFixture(t)

	code, out, errOut := f.run("run", "--raw", "--realtime", "argtype", "--kill", "42")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, `[{"title":"text_realtime","badge":"2"}]`+"\n", out)

	code, out, errOut = f.run("run", "--raw", "argtype", "q")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, `[{"title":"text","badge":"1"}]`+"\n", out)
}

func TestRunInvalidOutput(t *testing.T) {
	f := newCLIFixture(t)

	code, out, errOut := f.run("run", "garbage", "x")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "invalid results document")
}

func TestRunPluginFailure(t *testing.T) {
	f := newCLIFixture(t)

	code, out, errOut := f.run("run", "broken", "x")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "boom: dictionary missing")
	assert.Contains(t, errOut, "exited with status 3")
}

func TestRunUnknownPlugin(t *testing.T) {
	f := newCLIFixture(t)

	code, _, errOut := f.run("run", "nope")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, `plugin "nope" not found`)
}

func TestDoctor(t *testing.T) {
	f := newCLIFixture(t)

	code, out, errOut := f.run("doctor")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "All plugins ready")

	writeScriptPlugin(t, f.pluginsDir, "needy", "requirements: [exe:definitely-not-installed-xyz]\n", `echo '[]'`)
	code, out, _ = f.run("doctor", "--json")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "exe:definitely-not-installed-xyz")
	assert.Contains(t, out, `"valid": false`)
}
