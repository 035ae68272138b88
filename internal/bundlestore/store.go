package bundlestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"redust/internal/catalog"
	"redust/internal/config"
	"redust/internal/fileutil"
	"redust/internal/logging"
	"redust/internal/services"
)

const dataFile = "__data"

// Store addresses bundles and catalogs on disk.
type Store struct {
	Root       string
	CatalogDir string
	logger     *slog.Logger
}

// New returns a store rooted at the configured work directory.
func New(cfg *config.Config, logger *slog.Logger) *Store {
	return &Store{
		Root:       cfg.Paths.WorkDir,
		CatalogDir: cfg.Paths.CatalogDir,
		logger:     logging.NewComponentLogger(logger, "bundlestore"),
	}
}

// BundlesDir is the directory holding every cached bundle.
func (s *Store) BundlesDir() string {
	return filepath.Join(s.Root, "bundles")
}

// Path returns Root/bundles/{name}/{hash}/__data without validating its
// elements. Catalog entries go through PathFor.
func (s *Store) Path(name, hash string) string {
	return filepath.Join(s.BundlesDir(), name, hash, dataFile)
}

// PathFor is Path for a catalog bundle entry. Names or hashes that would
// leave BundlesDir are rejected with services.ErrFatalInput.
func (s *Store) PathFor(info catalog.BundleInfo) (string, error) {
	if err := info.Validate(); err != nil {
		return "", services.Wrap(services.ErrFatalInput, "bundlestore", "resolve bundle path", "", err)
	}
	return s.Path(info.Name, info.Hash), nil
}

// Has reports whether the bundle is cached with the catalog's byte size.
func (s *Store) Has(info catalog.BundleInfo) (bool, error) {
	path, err := s.PathFor(info)
	if err != nil {
		return false, err
	}
	return fileutil.SizeMatches(path, info.Size)
}

// Write stores a bundle by streaming fn's output through a temporary file.
// A failed write leaves no partial __data behind; other bundles are not
// touched.
func (s *Store) Write(info catalog.BundleInfo, fn func(w io.Writer) error) error {
	path, err := s.PathFor(info)
	if err != nil {
		return err
	}
	if err := fileutil.WriteAtomic(path, 0o644, fn); err != nil {
		return fmt.Errorf("store bundle %s/%s: %w", info.Name, info.Hash, err)
	}
	return nil
}

// RelPath returns a bundle path relative to BundlesDir.
func (s *Store) RelPath(path string) (string, error) {
	rel, err := filepath.Rel(s.BundlesDir(), path)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", path, s.BundlesDir())
	}
	return rel, nil
}

// Stale lists bundle directories whose name is not in keep, sorted.
func (s *Store) Stale(keep map[string]struct{}) ([]string, error) {
	entries, err := os.ReadDir(s.BundlesDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	var stale []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, ok := keep[entry.Name()]; ok {
			continue
		}
		stale = append(stale, filepath.Join(s.BundlesDir(), entry.Name()))
	}
	sort.Strings(stale)
	return stale, nil
}

// PruneResult contains the outcome of a prune.
type PruneResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// Prune removes bundle directories whose name is not in keep.
func (s *Store) Prune(ctx context.Context, keep map[string]struct{}) PruneResult {
	var result PruneResult
	stale, err := s.Stale(keep)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: s.BundlesDir(), Error: err})
		return result
	}
	for _, dir := range stale {
		if ctx.Err() != nil {
			break
		}
		if err := os.RemoveAll(dir); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
			s.logger.Warn("failed to remove stale bundle directory",
				logging.String("path", dir),
				logging.Error(err),
				logging.String(logging.FieldEventType, "bundle_prune_failed"),
				logging.String(logging.FieldErrorHint, "check work_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dir)
		s.logger.Info("removed stale bundle directory",
			logging.String("path", dir),
			logging.String(logging.FieldEventType, "bundle_prune"),
		)
	}
	return result
}

// CatalogPath returns the local file for a catalog version.
func (s *Store) CatalogPath(version string) string {
	return filepath.Join(s.CatalogDir, "catalog_"+version+".json")
}

func (s *Store) catalogFile(version string) (string, error) {
	if err := catalog.CheckPathElement("catalog version", version); err != nil {
		return "", services.Wrap(services.ErrFatalInput, "bundlestore", "resolve catalog path", "", err)
	}
	return s.CatalogPath(version), nil
}

// HasCatalog reports whether the catalog for version is on disk.
func (s *Store) HasCatalog(version string) bool {
	path, err := s.catalogFile(version)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// WriteCatalog stores a catalog through a temporary file.
func (s *Store) WriteCatalog(version string, fn func(w io.Writer) error) error {
	path, err := s.catalogFile(version)
	if err != nil {
		return err
	}
	if err := fileutil.WriteAtomic(path, 0o644, fn); err != nil {
		return fmt.Errorf("store catalog %s: %w", version, err)
	}
	return nil
}

// RemoveOtherCatalogs deletes catalog_*.json files for any version other
// than keep and returns the removed paths.
func (s *Store) RemoveOtherCatalogs(keep string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.CatalogDir, "catalog_*.json"))
	if err != nil {
		return nil, err
	}
	want := s.CatalogPath(keep)
	var removed []string
	for _, path := range matches {
		if path == want {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove old catalog: %w", err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}

// LatestLocalCatalog returns the version of the catalog file on disk, if
// exactly one is present.
func (s *Store) LatestLocalCatalog() (string, bool) {
	matches, err := filepath.Glob(filepath.Join(s.CatalogDir, "catalog_*.json"))
	if err != nil || len(matches) != 1 {
		return "", false
	}
	name := filepath.Base(matches[0])
	return strings.TrimSuffix(strings.TrimPrefix(name, "catalog_"), ".json"), true
}

// LoadCatalog reads and decodes the catalog for version.
func (s *Store) LoadCatalog(version string) (*catalog.Catalog, error) {
	path, err := s.catalogFile(version)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	doc, err := catalog.ParseDocument(f)
	if err != nil {
		return nil, err
	}
	return catalog.Parse(doc, s.logger)
}
