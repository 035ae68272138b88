package catalogsync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"redust/internal/bundlestore"
	"redust/internal/catalog"
	"redust/internal/cdn"
	"redust/internal/config"
	"redust/internal/ledger"
	"redust/internal/logging"
	"redust/internal/services"
)

const stage = "sync"

// Remote is the subset of the CDN client a sync needs.
type Remote interface {
	BundleVersion(ctx context.Context, quality string) (string, error)
	FetchCatalog(ctx context.Context, quality, version string, w io.Writer) (int64, error)
	DownloadBundle(ctx context.Context, quality, version, remoteName string, w io.Writer, progress cdn.Progress) (int64, error)
}

// ProgressFunc observes bundle download progress.
type ProgressFunc func(bundle string, index, count int, done, total int64)

// Options tune a single sync run.
type Options struct {
	// Version pins the bundle version instead of asking the maintenance endpoint.
	Version string
	// Names restricts the download to the bundles holding these assets.
	// When empty the configured key pattern selects bundles.
	Names []string
	// Prune removes cached bundle directories the catalog no longer names.
	Prune bool
	// Progress is called after every downloaded chunk.
	Progress ProgressFunc
}

// Result summarises a completed sync.
type Result struct {
	Version     string
	Quality     string
	CatalogPath string
	Catalog     *catalog.Catalog
	Bundles     []catalog.BundleInfo
	// Paths are the local __data files of Bundles, deduplicated.
	Paths       []string
	BundleNames map[string]struct{}
	Downloaded  []string
	Cached      []string
	Missing     []string
	Stale       []string
	Pruned      []string
}

// Syncer runs catalog and bundle downloads.
type Syncer struct {
	cfg     *config.Config
	remote  Remote
	store   *bundlestore.Store
	ledger  *ledger.Store
	logger  *slog.Logger
	sampler *logging.ProgressSampler
}

// New constructs a syncer. ledger may be nil.
func New(cfg *config.Config, remote Remote, store *bundlestore.Store, ledgerStore *ledger.Store, logger *slog.Logger) *Syncer {
	return &Syncer{
		cfg:     cfg,
		remote:  remote,
		store:   store,
		ledger:  ledgerStore,
		logger:  logging.NewComponentLogger(logger, "catalogsync"),
		sampler: logging.NewProgressSampler(10),
	}
}

// Sync performs one sync run. Any download failure aborts the run; bundles
// already written stay on disk.
func (s *Syncer) Sync(ctx context.Context, opts Options) (Result, error) {
	ctx = services.WithStage(ctx, stage)
	logger := logging.WithContext(ctx, s.logger)
	quality := s.cfg.CDN.Quality
	result := Result{Quality: quality}

	version := opts.Version
	if version == "" {
		v, err := s.remote.BundleVersion(ctx, quality)
		if err != nil {
			return result, err
		}
		version = v
	}
	if err := catalog.CheckPathElement("bundle version", version); err != nil {
		return result, services.Wrap(services.ErrFatalInput, stage, "check version", "", err)
	}
	result.Version = version
	logger.Info("sync started",
		logging.String("version", version),
		logging.String("quality", quality),
		logging.String(logging.FieldEventType, "sync_start"),
	)

	cat, err := s.ensureCatalog(ctx, logger, quality, version)
	if err != nil {
		return result, err
	}
	result.Catalog = cat
	result.CatalogPath = s.store.CatalogPath(version)
	result.BundleNames = cat.BundleNames()

	bundles, missing := s.selectBundles(cat, opts.Names)
	result.Bundles = bundles
	result.Missing = missing
	for _, name := range missing {
		logging.WarnWithContext(logger, "asset not found in catalog", "asset_unresolved",
			logging.String("asset", name),
			logging.String(logging.FieldErrorHint, "check the asset name against `redust catalog resolve`"),
			logging.String(logging.FieldImpact, "mods for this asset cannot be applied"),
		)
	}

	seen := make(map[string]struct{}, len(bundles))
	for i, info := range bundles {
		path, err := s.store.PathFor(info)
		if err != nil {
			return result, err
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		result.Paths = append(result.Paths, path)

		has, err := s.store.Has(info)
		if err != nil {
			return result, services.Wrap(services.ErrFatalInput, stage, "check cache", info.Name, err)
		}
		if has {
			result.Cached = append(result.Cached, path)
			continue
		}
		if err := s.download(ctx, logger, quality, version, info, i, len(bundles), opts.Progress); err != nil {
			return result, err
		}
		result.Downloaded = append(result.Downloaded, path)
	}

	stale, err := s.store.Stale(result.BundleNames)
	if err != nil {
		return result, services.Wrap(services.ErrFatalInput, stage, "list stale bundles", "", err)
	}
	result.Stale = stale
	if opts.Prune && len(stale) > 0 {
		pruned := s.store.Prune(ctx, result.BundleNames)
		result.Pruned = pruned.Removed
	}

	if err := s.record(ctx, result); err != nil {
		logging.WarnWithContext(logger, "failed to record sync in ledger", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "status history incomplete"),
		)
	}

	logger.Info("sync completed",
		logging.String("version", version),
		logging.Int("bundles", len(result.Paths)),
		logging.Int("downloaded", len(result.Downloaded)),
		logging.Int("cached", len(result.Cached)),
		logging.Int("stale", len(result.Stale)),
		logging.String(logging.FieldEventType, "sync_complete"),
	)
	return result, nil
}

func (s *Syncer) ensureCatalog(ctx context.Context, logger *slog.Logger, quality, version string) (*catalog.Catalog, error) {
	if !s.store.HasCatalog(version) {
		removed, err := s.store.RemoveOtherCatalogs(version)
		if err != nil {
			return nil, services.Wrap(services.ErrFatalInput, stage, "remove old catalogs", "", err)
		}
		for _, path := range removed {
			logger.Info("removed old catalog", logging.String("path", path))
		}
		err = s.store.WriteCatalog(version, func(w io.Writer) error {
			_, err := s.remote.FetchCatalog(ctx, quality, version, w)
			return err
		})
		if err != nil {
			return nil, err
		}
		logger.Info("catalog downloaded",
			logging.String("path", s.store.CatalogPath(version)),
			logging.String(logging.FieldEventType, "catalog_download"),
		)
	} else {
		logger.Debug("catalog already present", logging.String("path", s.store.CatalogPath(version)))
	}

	cat, err := s.store.LoadCatalog(version)
	if err != nil {
		return nil, services.Wrap(services.ErrFatalInput, stage, "parse catalog", version, err)
	}
	logger.Debug("catalog loaded", logging.String("catalog", cat.String()))
	return cat, nil
}

func (s *Syncer) selectBundles(cat *catalog.Catalog, names []string) ([]catalog.BundleInfo, []string) {
	if len(names) == 0 {
		return cat.BundlesMatching(catalog.Pattern{
			Prefix: s.cfg.Catalog.BundlePrefix,
			Suffix: s.cfg.Catalog.BundleSuffix,
		}), nil
	}
	res := cat.Resolve(names)
	seen := make(map[string]struct{})
	var bundles []catalog.BundleInfo
	for _, asset := range res.Assets {
		id := asset.Bundle.Name + "/" + asset.Bundle.Hash
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		bundles = append(bundles, asset.Bundle)
	}
	sort.SliceStable(bundles, func(i, j int) bool { return bundles[i].Key < bundles[j].Key })
	return bundles, res.Missing
}

func (s *Syncer) download(ctx context.Context, logger *slog.Logger, quality, version string, info catalog.BundleInfo, index, count int, progress ProgressFunc) error {
	remote := info.RemoteName()
	itemCtx := services.WithItem(ctx, info.Name)
	s.sampler.Reset()
	err := s.store.Write(info, func(w io.Writer) error {
		_, err := s.remote.DownloadBundle(itemCtx, quality, version, remote, w, func(done, total int64) {
			if total < 0 {
				total = info.Size
			}
			if progress != nil {
				progress(info.Name, index, count, done, total)
			}
			pct := logging.Percent(done, total)
			if s.sampler.ShouldLog(pct, info.Name) {
				logger.Debug("bundle download progress",
					logging.String("bundle", info.Name),
					logging.Float64("percent", pct),
					logging.Size("received", done),
				)
			}
		})
		return err
	})
	if err != nil {
		logging.ErrorWithContext(logger, "bundle download failed", "bundle_download_failed",
			logging.String("bundle", info.Name),
			logging.String("remote", remote),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "rerun sync; cached bundles are kept"),
		)
		if services.HasMarker(err) {
			return err
		}
		return services.Wrap(services.ErrTransient, stage, "download bundle", info.Name, err)
	}
	logger.Info("bundle downloaded",
		logging.String("bundle", info.Name),
		logging.String("hash", info.Hash),
		logging.Size("size", info.Size),
		logging.String(logging.FieldEventType, "bundle_download"),
	)
	return nil
}

func (s *Syncer) record(ctx context.Context, result Result) error {
	if s.ledger == nil {
		return nil
	}
	if err := s.ledger.RecordCatalog(ctx, ledger.CatalogRecord{
		Version:     result.Version,
		Quality:     result.Quality,
		BundleCount: len(result.Bundles),
	}); err != nil {
		return err
	}
	records := make([]ledger.BundleRecord, 0, len(result.Bundles))
	for _, b := range result.Bundles {
		records = append(records, ledger.BundleRecord{Name: b.Name, Hash: b.Hash, Size: b.Size, Key: b.Key})
	}
	if err := s.ledger.RecordBundles(ctx, result.Version, records); err != nil {
		return fmt.Errorf("record bundles: %w", err)
	}
	return nil
}
