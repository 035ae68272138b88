package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"redust/internal/config"
	"redust/internal/testsupport"
)

const testVersion = "9.9.1"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	server     *httptest.Server

	mu       sync.Mutex
	requests []string
}

func (e *cliTestEnv) requestCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.requests)
}

// setupCLITestEnv writes a config whose CDN is a local server publishing a
// catalog with one skeleton bundle.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	t.Setenv("REDUST_QUALITY", "")

	fx := testsupport.NewCatalogFixture(t)
	key := fx.AddKey("common-skeleton-data-a_0a1b.bundle")
	fx.Link(key, fx.AddBundleEntry(key, "skel-a", "aaaa", 4))
	other := fx.AddKey("ui-icons_ffff.bundle")
	fx.Link(other, fx.AddBundleEntry(other, "icons", "cccc", 2))
	asset := fx.AddKey("Assets/Spine/char000101.skel.bytes")
	assetEntry := fx.AddAssetEntry(asset, key)
	fx.SetInternalID(assetEntry, "Assets/Spine/char000101.skel.bytes#TextAsset")
	fx.Link(asset, assetEntry)
	catalogJSON := fx.JSON()

	env := &cliTestEnv{}
	prefix := "/ServerData/Android/HD/" + testVersion + "/"
	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.mu.Lock()
		env.requests = append(env.requests, r.URL.Path)
		env.mu.Unlock()
		switch r.URL.Path {
		case prefix + "catalog_alpha.json":
			_, _ = w.Write(catalogJSON)
		case prefix + "common-skeleton-data-a.bundle":
			_, _ = w.Write([]byte("AAAA"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(env.server.Close)

	opts = append([]testsupport.ConfigOption{testsupport.WithCDN(env.server.URL)}, opts...)
	env.cfg = testsupport.NewConfig(t, opts...)
	env.configPath = filepath.Join(testsupport.BaseDir(env.cfg), "config.toml")
	writeTestConfig(t, env.configPath, env.cfg)
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// writeBundleTool creates a helper that lists one skeleton TextAsset and
// answers apply by copying the manifest to the output path.
func writeBundleTool(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle-tool")
	script := `#!/bin/sh
case "$1" in
list)
  echo '{"entries":[{"name":"assets/spine/char000101.skel.bytes","type":"TextAsset"}]}'
  ;;
apply)
  cp "$3" "$5"
  ;;
*)
  exit 2
  ;;
esac
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write bundle tool: %v", err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
