package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCDN()
	c.normalizeCatalog()
	c.Tools.BundleTool = strings.TrimSpace(c.Tools.BundleTool)
	if c.Tools.BundleTool == "" {
		c.Tools.BundleTool = defaultBundleTool
	}
	c.Tools.TextureCompressor = strings.TrimSpace(c.Tools.TextureCompressor)
	c.Tools.TextureFormat = strings.TrimSpace(c.Tools.TextureFormat)
	if c.Tools.TextureFormat == "" {
		c.Tools.TextureFormat = defaultTextureFormat
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	derived := []struct {
		key    string
		value  *string
		subdir string
	}{
		{"paths.mods_dir", &c.Paths.ModsDir, defaultModsSubdir},
		{"paths.modded_dir", &c.Paths.ModdedDir, defaultModdedSubdir},
		{"paths.catalog_dir", &c.Paths.CatalogDir, ""},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateSubdir},
	}
	for _, d := range derived {
		if strings.TrimSpace(*d.value) == "" {
			*d.value = filepath.Join(c.Paths.WorkDir, d.subdir)
			continue
		}
		if *d.value, err = expandPath(*d.value); err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
	}
	return nil
}

func (c *Config) normalizeCDN() {
	if value, ok := os.LookupEnv("REDUST_QUALITY"); ok && strings.TrimSpace(value) != "" {
		c.CDN.Quality = value
	}
	c.CDN.Quality = strings.ToUpper(strings.TrimSpace(c.CDN.Quality))
	if c.CDN.Quality == "" {
		c.CDN.Quality = defaultQuality
	}
	c.CDN.MaintenanceURL = strings.TrimSpace(c.CDN.MaintenanceURL)
	if c.CDN.MaintenanceURL == "" {
		c.CDN.MaintenanceURL = defaultMaintenanceURL
	}
	c.CDN.BaseURL = strings.TrimRight(strings.TrimSpace(c.CDN.BaseURL), "/")
	if c.CDN.BaseURL == "" {
		c.CDN.BaseURL = defaultCDNBaseURL
	}
	c.CDN.Platform = strings.Trim(strings.TrimSpace(c.CDN.Platform), "/")
	if c.CDN.Platform == "" {
		c.CDN.Platform = defaultPlatform
	}
	c.CDN.UserAgent = strings.TrimSpace(c.CDN.UserAgent)
	if c.CDN.UserAgent == "" {
		c.CDN.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeCatalog() {
	c.Catalog.BundlePrefix = strings.TrimSpace(c.Catalog.BundlePrefix)
	c.Catalog.BundleSuffix = strings.TrimSpace(c.Catalog.BundleSuffix)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
