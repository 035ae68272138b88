package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCDN(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Tools.BundleTool == "" {
		return errors.New("tools.bundle_tool must be set")
	}
	if c.Tools.TextureFormat != defaultTextureFormat && c.Tools.TextureCompressor == "" {
		return fmt.Errorf("tools.texture_format %q requires tools.texture_compressor", c.Tools.TextureFormat)
	}
	return nil
}

func (c *Config) validateCDN() error {
	switch c.CDN.Quality {
	case QualityHD, QualitySD:
	default:
		return fmt.Errorf("cdn.quality: unsupported value %q (want HD or SD)", c.CDN.Quality)
	}
	if err := validateURL("cdn.maintenance_url", c.CDN.MaintenanceURL); err != nil {
		return err
	}
	if err := validateURL("cdn.base_url", c.CDN.BaseURL); err != nil {
		return err
	}
	if c.CDN.TimeoutSeconds <= 0 {
		return errors.New("cdn.timeout_seconds must be positive")
	}
	if c.CDN.RetryAttempts < 1 || c.CDN.RetryAttempts > 10 {
		return errors.New("cdn.retry_attempts must be between 1 and 10")
	}
	if c.CDN.RetryBackoffMillis < 0 {
		return errors.New("cdn.retry_backoff_ms must not be negative")
	}
	for key, field := range map[string]int{
		"cdn.market_info_field":       c.CDN.MarketInfoField,
		"cdn.bundle_version_field":    c.CDN.BundleVersionField,
		"cdn.bundle_version_sd_field": c.CDN.BundleVersionSD,
	} {
		if field < 1 || field > 536870911 {
			return fmt.Errorf("%s must be a valid protobuf field number", key)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func validateURL(key, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s: scheme must be http or https", key)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s: host is required", key)
	}
	return nil
}
