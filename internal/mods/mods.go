// Package mods scans a mods folder into the set of replacement files.
package mods

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"redust/internal/services"
)

// renameRules maps mod file suffixes to the name the asset carries inside a
// bundle. Order matters: the first matching suffix wins.
var renameRules = []struct{ from, to string }{
	{".skel", ".skel.bytes"},
	{".skel.txt", ".skel.bytes"},
	{".atlas", ".atlas.txt"},
}

const metadataSuffix = ".modfile"

var folder = cases.Fold()

// Set is the result of scanning a mods folder.
type Set struct {
	// Files maps a logical asset name to the mod file replacing it.
	Files map[string]string
	// Duplicates maps the path that won a logical name to the later paths
	// that claimed the same name.
	Duplicates map[string][]string
	// PendingJSON lists skeleton JSON files with no sibling binary skeleton.
	PendingJSON []string
	// Scanned counts every regular file visited.
	Scanned int
}

// Names returns the logical names in Files sorted.
func (s Set) Names() []string {
	names := make([]string, 0, len(s.Files))
	for name := range s.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LogicalName returns the in-bundle name for a mod file name.
func LogicalName(file string) string {
	for _, rule := range renameRules {
		if strings.HasSuffix(file, rule.from) {
			return strings.TrimSuffix(file, rule.from) + rule.to
		}
	}
	return file
}

// Scan walks root in lexical order. The first file to claim a logical name
// keeps it; comparisons ignore case.
func Scan(root string) (Set, error) {
	set := Set{
		Files:      make(map[string]string),
		Duplicates: make(map[string][]string),
	}
	info, err := os.Stat(root)
	if err != nil {
		return set, services.Wrap(services.ErrFatalInput, "mods", "scan", root, err)
	}
	if !info.IsDir() {
		return set, services.Wrap(services.ErrFatalInput, "mods", "scan", root, errors.New("not a directory"))
	}

	claimed := make(map[string]string)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		set.Scanned++
		name := d.Name()
		if strings.HasSuffix(name, metadataSuffix) {
			return nil
		}
		if strings.HasSuffix(name, ".json") {
			if !hasBinarySibling(path) {
				set.PendingJSON = append(set.PendingJSON, path)
			}
			return nil
		}

		logical := LogicalName(name)
		key := folder.String(logical)
		if first, dup := claimed[key]; dup {
			set.Duplicates[first] = append(set.Duplicates[first], path)
			return nil
		}
		claimed[key] = path
		set.Files[logical] = path
		return nil
	})
	if err != nil {
		return set, services.Wrap(services.ErrFatalInput, "mods", "scan", root, fmt.Errorf("walk: %w", err))
	}
	return set, nil
}

func hasBinarySibling(jsonPath string) bool {
	base := strings.TrimSuffix(jsonPath, ".json")
	for _, candidate := range []string{base + ".skel", base + ".skel.bytes"} {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return true
		}
	}
	return false
}
