package preflight

import (
	"context"

	"redust/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config. The CDN check
// is skipped when offline is set.
func RunAll(ctx context.Context, cfg *config.Config, offline bool) []Result {
	if cfg == nil {
		return nil
	}

	results := CheckWorkspace(cfg)
	for _, status := range CheckSystemDeps(ctx, cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Summary()}
		if !status.Available {
			if status.Optional {
				result.Passed = true
				result.Detail += " (optional)"
			}
		}
		results = append(results, result)
	}
	if !offline {
		results = append(results, CheckCDN(ctx, cfg))
	}
	return results
}

// CheckWorkspace verifies the directories the pipelines write into.
func CheckWorkspace(cfg *config.Config) []Result {
	return []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Mods directory", cfg.Paths.ModsDir),
		CheckDirectoryAccess("Catalog directory", cfg.Paths.CatalogDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
