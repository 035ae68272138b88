package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths describes the workspace layout. Bundles are cached under
// WorkDir/bundles/{name}/{hash}/__data.
type Paths struct {
	WorkDir    string `toml:"work_dir"`
	ModsDir    string `toml:"mods_dir"`
	ModdedDir  string `toml:"modded_dir"`
	CatalogDir string `toml:"catalog_dir"`
	StateDir   string `toml:"state_dir"`
}

// CDN contains the remote endpoints and transfer policy.
type CDN struct {
	MaintenanceURL     string `toml:"maintenance_url"`
	BaseURL            string `toml:"base_url"`
	Platform           string `toml:"platform"`
	Quality            string `toml:"quality"`
	UserAgent          string `toml:"user_agent"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
	RetryAttempts      int    `toml:"retry_attempts"`
	RetryBackoffMillis int    `toml:"retry_backoff_ms"`
	// Protobuf field numbers inside the maintenance response.
	MarketInfoField    int `toml:"market_info_field"`
	BundleVersionField int `toml:"bundle_version_field"`
	BundleVersionSD    int `toml:"bundle_version_sd_field"`
}

// Catalog selects which bundles a sync downloads.
type Catalog struct {
	BundlePrefix string `toml:"bundle_prefix"`
	BundleSuffix string `toml:"bundle_suffix"`
}

// Tools names the external helpers that handle the bundle container format.
type Tools struct {
	BundleTool        string `toml:"bundle_tool"`
	TextureCompressor string `toml:"texture_compressor"`
	// TextureFormat is the Texture2D format written for replaced images.
	// Anything other than RGBA32 goes through TextureCompressor.
	TextureFormat string `toml:"texture_format"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for redust.
//
// Configuration sections by subsystem:
//   - Paths: workspace, mods, output, catalog, and state directories
//   - CDN: maintenance/catalog endpoints, quality, retries
//   - Catalog: bundle key filter for sync
//   - Tools: bundle container helper and texture compressor
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	CDN     CDN     `toml:"cdn"`
	Catalog Catalog `toml:"catalog"`
	Tools   Tools   `toml:"tools"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/redust/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("redust.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the workspace directories the pipelines write into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.ModsDir, c.Paths.CatalogDir, c.Paths.StateDir, c.BundlesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// BundlesDir is the cache directory holding downloaded bundles.
func (c *Config) BundlesDir() string {
	return filepath.Join(c.Paths.WorkDir, "bundles")
}

// LogDir is where the CLI appends redust.log.
func (c *Config) LogDir() string {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.StateDir, "logs")
}

// LedgerPath is the sqlite database recording catalogs, bundles, and outputs.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.StateDir, "redust.db")
}

// LockPath is the workspace lock taken by mutating commands.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "redust.lock")
}

// Timeout returns the per-request timeout. Zero means unset.
func (c CDN) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryBackoff returns the base delay between retries.
func (c CDN) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMillis) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
