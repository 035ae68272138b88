package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"redust/internal/cdn"
	"redust/internal/config"
	"redust/internal/deps"
	"redust/internal/texture"
)

// CheckCDN asks the maintenance endpoint for the live bundle version with a
// single attempt.
func CheckCDN(ctx context.Context, cfg *config.Config) Result {
	const name = "CDN"

	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	cdnCfg := cfg.CDN
	cdnCfg.RetryAttempts = 1
	version, err := cdn.New(cdnCfg).BundleVersion(checkCtx, cfg.CDN.Quality)
	if err != nil {
		return Result{Name: name, Detail: summarizeCDNError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("bundle version %s (%s)", version, cfg.CDN.Quality)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps resolves the external helpers the config names. The
// texture compressor is optional while texture_format is RGBA32.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	return deps.Locate(ctx, []deps.Helper{
		{
			Name:        "Bundle tool",
			Command:     cfg.Tools.BundleTool,
			VersionArgs: []string{"version"},
		},
		{
			Name:        "Texture compressor",
			Command:     cfg.Tools.TextureCompressor,
			Optional:    cfg.Tools.TextureFormat == "" || cfg.Tools.TextureFormat == texture.FormatRGBA32,
			VersionArgs: []string{"--version"},
		},
	})
}

func summarizeCDNError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "maintenance check timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "maintenance check timed out (CDN unreachable)"
	}
	return err.Error()
}
