package repack

import (
	"context"
	"log/slog"
	"path"
	"sort"

	"golang.org/x/text/cases"

	"redust/internal/bundle"
	"redust/internal/logging"
	"redust/internal/services"
)

var folder = cases.Fold()

// Contents maps a bundle path to its replaceable container entries.
type Contents map[string]map[string]bundle.Entry

// Match pairs a mod file with one container entry it replaces.
type Match struct {
	Name   string
	Entry  string
	Type   bundle.EntryType
	Source string
}

// BundleMatches lists the replacements destined for one bundle.
type BundleMatches struct {
	Bundle string
	Mods   []Match
}

// Association is the outcome of matching mods against bundle contents.
type Association struct {
	Bundles []BundleMatches
	// Unmatched maps logical name to mod path for mods no bundle holds.
	Unmatched map[string]string
}

// ModCount is the number of replacements across all bundles.
func (a Association) ModCount() int {
	n := 0
	for _, b := range a.Bundles {
		n += len(b.Mods)
	}
	return n
}

// Inspect opens every bundle and records its TextAsset and Texture2D
// entries. Bundles without any are left out. Failing to open a bundle is
// fatal; failing to close one is logged.
func Inspect(ctx context.Context, opener bundle.Opener, paths []string, logger *slog.Logger) (Contents, error) {
	contents := make(Contents, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return contents, err
		}
		archive, err := opener.Open(ctx, p)
		if err != nil {
			if services.HasMarker(err) {
				return contents, err
			}
			return contents, services.Wrap(services.ErrExternalTool, "repack", "open bundle", p, err)
		}
		entries := make(map[string]bundle.Entry)
		for name, entry := range archive.Entries() {
			if entry.Type.Replaceable() {
				entries[name] = entry
			}
		}
		if err := archive.Close(); err != nil {
			logging.WarnWithContext(logger, "failed to close bundle", "bundle_close_failed",
				logging.String("bundle", p),
				logging.Error(err),
				logging.String(logging.FieldImpact, "bundle tool resources may linger until exit"),
			)
		}
		if len(entries) > 0 {
			contents[p] = entries
		}
	}
	return contents, nil
}

// Associate matches mods (logical name to path) against bundle contents by
// the base name of each container path, ignoring case. A mod may land in
// more than one bundle.
func Associate(contents Contents, files map[string]string) Association {
	byName := make(map[string]string, len(files))
	logical := make(map[string]string, len(files))
	for name, src := range files {
		key := folder.String(name)
		byName[key] = src
		logical[key] = name
	}

	bundlePaths := make([]string, 0, len(contents))
	for p := range contents {
		bundlePaths = append(bundlePaths, p)
	}
	sort.Strings(bundlePaths)

	matched := make(map[string]struct{})
	var assoc Association
	for _, bundlePath := range bundlePaths {
		entries := contents[bundlePath]
		names := make([]string, 0, len(entries))
		for name := range entries {
			names = append(names, name)
		}
		sort.Strings(names)

		group := BundleMatches{Bundle: bundlePath}
		for _, entryName := range names {
			key := folder.String(path.Base(entryName))
			src, ok := byName[key]
			if !ok {
				continue
			}
			matched[key] = struct{}{}
			group.Mods = append(group.Mods, Match{
				Name:   logical[key],
				Entry:  entryName,
				Type:   entries[entryName].Type,
				Source: src,
			})
		}
		if len(group.Mods) > 0 {
			assoc.Bundles = append(assoc.Bundles, group)
		}
	}

	assoc.Unmatched = make(map[string]string)
	for key, src := range byName {
		if _, ok := matched[key]; !ok {
			assoc.Unmatched[logical[key]] = src
		}
	}
	return assoc
}
