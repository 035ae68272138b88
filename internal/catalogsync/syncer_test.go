package catalogsync_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"redust/internal/bundlestore"
	"redust/internal/catalogsync"
	"redust/internal/cdn"
	"redust/internal/config"
	"redust/internal/logging"
	"redust/internal/services"
	"redust/internal/testsupport"
)

type fakeRemote struct {
	version       string
	catalog       []byte
	bundles       map[string][]byte
	fail          map[string]error
	versionCalls  int
	catalogCalls  int
	downloadCalls []string
}

func (f *fakeRemote) BundleVersion(context.Context, string) (string, error) {
	f.versionCalls++
	return f.version, nil
}

func (f *fakeRemote) FetchCatalog(_ context.Context, _, _ string, w io.Writer) (int64, error) {
	f.catalogCalls++
	n, err := w.Write(f.catalog)
	return int64(n), err
}

func (f *fakeRemote) DownloadBundle(_ context.Context, _, _, remoteName string, w io.Writer, progress cdn.Progress) (int64, error) {
	f.downloadCalls = append(f.downloadCalls, remoteName)
	if err := f.fail[remoteName]; err != nil {
		return 0, err
	}
	data, ok := f.bundles[remoteName]
	if !ok {
		return 0, errors.New("not found")
	}
	n, err := w.Write(data)
	if progress != nil {
		progress(int64(n), int64(len(data)))
	}
	return int64(n), err
}

type fixture struct {
	cfg    *config.Config
	remote *fakeRemote
	store  *bundlestore.Store
}

// newFixture builds a catalog with two skeleton bundles, one unrelated
// bundle, and an asset that lives in the first skeleton bundle.
func newFixture(t *testing.T) fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	fx := testsupport.NewCatalogFixture(t)
	keyA := fx.AddKey("common-skeleton-data-a_0a1b.bundle")
	entryA := fx.AddBundleEntry(keyA, "skel-a", "aaaa", 4)
	fx.Link(keyA, entryA)
	keyB := fx.AddKey("common-skeleton-data-b_c2d3.bundle")
	fx.Link(keyB, fx.AddBundleEntry(keyB, "skel-b", "bbbb", 3))
	keyC := fx.AddKey("ui-icons_ffff.bundle")
	fx.Link(keyC, fx.AddBundleEntry(keyC, "icons", "cccc", 2))
	asset := fx.AddKey("Assets/Spine/char000101.skel.bytes")
	fx.Link(asset, fx.AddAssetEntry(asset, keyA))

	remote := &fakeRemote{
		version: "1.2.3",
		catalog: fx.JSON(),
		bundles: map[string][]byte{
			"common-skeleton-data-a.bundle": []byte("AAAA"),
			"common-skeleton-data-b.bundle": []byte("BBB"),
			"ui-icons.bundle":               []byte("CC"),
		},
		fail: map[string]error{},
	}
	return fixture{cfg: cfg, remote: remote, store: bundlestore.New(cfg, logging.NewNop())}
}

func (f fixture) syncer() *catalogsync.Syncer {
	return catalogsync.New(f.cfg, f.remote, f.store, nil, logging.NewNop())
}

func TestSyncDownloadsMatchingBundles(t *testing.T) {
	f := newFixture(t)
	ledgerStore := testsupport.MustOpenLedger(t, f.cfg)
	syncer := catalogsync.New(f.cfg, f.remote, f.store, ledgerStore, logging.NewNop())

	var progressCalls int
	result, err := syncer.Sync(context.Background(), catalogsync.Options{
		Progress: func(string, int, int, int64, int64) { progressCalls++ },
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Version != "1.2.3" {
		t.Fatalf("version = %q", result.Version)
	}
	if len(result.Paths) != 2 || len(result.Downloaded) != 2 || len(result.Cached) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if progressCalls != 2 {
		t.Fatalf("progress calls = %d", progressCalls)
	}
	if _, ok := result.BundleNames["icons"]; !ok {
		t.Fatalf("bundle names missing unselected bundle: %v", result.BundleNames)
	}
	data, err := os.ReadFile(f.store.Path("skel-a", "aaaa"))
	if err != nil || !bytes.Equal(data, []byte("AAAA")) {
		t.Fatalf("bundle a = %q %v", data, err)
	}

	ctx := context.Background()
	latest, err := ledgerStore.LatestCatalog(ctx, f.cfg.CDN.Quality)
	if err != nil || latest == nil || latest.Version != "1.2.3" || latest.BundleCount != 2 {
		t.Fatalf("ledger catalog = %+v err=%v", latest, err)
	}
	known, err := ledgerStore.KnownBundles(ctx, "1.2.3")
	if err != nil || len(known) != 2 {
		t.Fatalf("ledger bundles = %+v err=%v", known, err)
	}
}

func TestSyncSkipsCachedBundlesAndCatalog(t *testing.T) {
	f := newFixture(t)
	syncer := f.syncer()
	ctx := context.Background()

	if _, err := syncer.Sync(ctx, catalogsync.Options{}); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	f.remote.downloadCalls = nil

	result, err := syncer.Sync(ctx, catalogsync.Options{})
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if f.remote.catalogCalls != 1 {
		t.Fatalf("catalog fetched %d times", f.remote.catalogCalls)
	}
	if len(f.remote.downloadCalls) != 0 || len(result.Cached) != 2 {
		t.Fatalf("expected all bundles cached, downloads=%v cached=%v", f.remote.downloadCalls, result.Cached)
	}
}

func TestSyncRedownloadsSizeMismatch(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteFile(t, f.store.Path("skel-a", "aaaa"), 1)

	result, err := f.syncer().Sync(context.Background(), catalogsync.Options{})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(result.Downloaded) != 2 {
		t.Fatalf("downloaded = %v", result.Downloaded)
	}
}

func TestSyncPinnedVersionSkipsMaintenance(t *testing.T) {
	f := newFixture(t)
	result, err := f.syncer().Sync(context.Background(), catalogsync.Options{Version: "9.9.9"})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if f.remote.versionCalls != 0 {
		t.Fatalf("maintenance endpoint called %d times", f.remote.versionCalls)
	}
	if result.CatalogPath != f.store.CatalogPath("9.9.9") {
		t.Fatalf("catalog path = %q", result.CatalogPath)
	}
}

func TestSyncByAssetName(t *testing.T) {
	f := newFixture(t)
	result, err := f.syncer().Sync(context.Background(), catalogsync.Options{
		Names: []string{"CHAR000101.skel.bytes", "char999999.skel.bytes"},
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(result.Bundles) != 1 || result.Bundles[0].Name != "skel-a" {
		t.Fatalf("bundles = %+v", result.Bundles)
	}
	if len(result.Missing) != 1 || result.Missing[0] != "char999999.skel.bytes" {
		t.Fatalf("missing = %v", result.Missing)
	}
	if len(f.remote.downloadCalls) != 1 {
		t.Fatalf("downloads = %v", f.remote.downloadCalls)
	}
}

func TestSyncDownloadFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.remote.fail["common-skeleton-data-b.bundle"] = errors.New("connection reset")

	_, err := f.syncer().Sync(context.Background(), catalogsync.Options{})
	if err == nil {
		t.Fatal("expected failure")
	}
	if !errors.Is(err, services.ErrTransient) || !services.IsFatal(err) {
		t.Fatalf("expected fatal transient error, got %v", err)
	}
	if _, err := os.Stat(f.store.Path("skel-a", "aaaa")); err != nil {
		t.Fatalf("earlier bundle should remain: %v", err)
	}
	if _, err := os.Stat(f.store.Path("skel-b", "bbbb")); !os.IsNotExist(err) {
		t.Fatalf("failed bundle left on disk: %v", err)
	}
}

func TestSyncReplacesOldCatalogAndPrunes(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteText(t, f.store.CatalogPath("1.0.0"), "{}")
	testsupport.WriteFile(t, f.store.Path("retired", "0000"), 1)

	result, err := f.syncer().Sync(context.Background(), catalogsync.Options{Prune: true})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if _, err := os.Stat(f.store.CatalogPath("1.0.0")); !os.IsNotExist(err) {
		t.Fatalf("old catalog not removed: %v", err)
	}
	if len(result.Stale) != 1 || len(result.Pruned) != 1 {
		t.Fatalf("stale=%v pruned=%v", result.Stale, result.Pruned)
	}
	if _, err := os.Stat(f.store.Path("retired", "0000")); !os.IsNotExist(err) {
		t.Fatalf("stale bundle not pruned: %v", err)
	}
}

func TestSyncRejectsVersionOutsideCatalogDir(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteText(t, f.store.CatalogPath("1.0.0"), "{}")
	f.remote.version = "../../1.2.3"

	_, err := f.syncer().Sync(context.Background(), catalogsync.Options{})
	if !errors.Is(err, services.ErrFatalInput) {
		t.Fatalf("expected fatal input, got %v", err)
	}
	if f.remote.catalogCalls != 0 {
		t.Fatalf("catalog fetched %d times", f.remote.catalogCalls)
	}
	if _, err := os.Stat(f.store.CatalogPath("1.0.0")); err != nil {
		t.Fatalf("existing catalog removed: %v", err)
	}
}

func TestSyncRejectsCatalogWithEscapingBundleName(t *testing.T) {
	f := newFixture(t)
	fx := testsupport.NewCatalogFixture(t)
	key := fx.AddKey("common-skeleton-data-x_0a1b.bundle")
	fx.Link(key, fx.AddBundleEntry(key, "../../escaped", "h", 1))
	f.remote.catalog = fx.JSON()
	f.remote.bundles["common-skeleton-data-x.bundle"] = []byte("X")

	_, err := f.syncer().Sync(context.Background(), catalogsync.Options{})
	if !errors.Is(err, services.ErrFatalInput) {
		t.Fatalf("expected fatal input, got %v", err)
	}
	if len(f.remote.downloadCalls) != 0 {
		t.Fatalf("downloads = %v", f.remote.downloadCalls)
	}
}
