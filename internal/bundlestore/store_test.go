package bundlestore_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"redust/internal/bundlestore"
	"redust/internal/catalog"
	"redust/internal/logging"
	"redust/internal/services"
	"redust/internal/testsupport"
)

func newStore(t *testing.T) *bundlestore.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}
	return bundlestore.New(cfg, logging.NewNop())
}

func TestPathLayout(t *testing.T) {
	store := newStore(t)
	got := store.Path("common-skeleton-data-abc", "0123")
	want := filepath.Join(store.Root, "bundles", "common-skeleton-data-abc", "0123", "__data")
	if got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}
	info := catalog.BundleInfo{Name: "common-skeleton-data-abc", Hash: "0123"}
	path, err := store.Path(info.Name, info.Hash)
	if err != nil || path != want {
		t.Fatalf("PathFor = %q, %v", path, err)
	}
}

func TestHasChecksSize(t *testing.T) {
	store := newStore(t)
	info := catalog.BundleInfo{Name: "b", Hash: "h", Size: 10}

	has, err := store.Has(info)
	if err != nil || has {
		t.Fatalf("missing bundle: has=%v err=%v", has, err)
	}

	testsupport.WriteFile(t, store.Path(info.Name, info.Hash), 9)
	if has, _ := store.Has(info); has {
		t.Fatal("size mismatch reported as cached")
	}

	testsupport.WriteFile(t, store.Path(info.Name, info.Hash), 10)
	if has, _ := store.Has(info); !has {
		t.Fatal("matching size not reported as cached")
	}
}

func TestWriteFailureKeepsOtherBundles(t *testing.T) {
	store := newStore(t)
	first := catalog.BundleInfo{Name: "a", Hash: "1", Size: 3}
	second := catalog.BundleInfo{Name: "b", Hash: "2", Size: 3}

	if err := store.Write(first, func(w io.Writer) error {
		_, err := w.Write([]byte("abc"))
		return err
	}); err != nil {
		t.Fatalf("write first: %v", err)
	}

	boom := errors.New("connection reset")
	err := store.Write(second, func(w io.Writer) error {
		_, _ = w.Write([]byte("x"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
	if _, err := os.Stat(store.Path(second.Name, second.Hash)); !os.IsNotExist(err) {
		t.Fatalf("partial bundle left behind: %v", err)
	}
	data, err := os.ReadFile(store.Path(first.Name, first.Hash))
	if err != nil || !bytes.Equal(data, []byte("abc")) {
		t.Fatalf("first bundle damaged: %q %v", data, err)
	}
}

func TestStaleAndPrune(t *testing.T) {
	store := newStore(t)
	testsupport.WriteFile(t, store.Path("keep", "h1"), 1)
	testsupport.WriteFile(t, store.Path("old-a", "h2"), 1)
	testsupport.WriteFile(t, store.Path("old-b", "h3"), 1)
	testsupport.WriteFile(t, filepath.Join(store.BundlesDir(), "stray.txt"), 1)

	keep := map[string]struct{}{"keep": {}}
	stale, err := store.Stale(keep)
	if err != nil {
		t.Fatalf("stale: %v", err)
	}
	want := []string{
		filepath.Join(store.BundlesDir(), "old-a"),
		filepath.Join(store.BundlesDir(), "old-b"),
	}
	if len(stale) != len(want) || stale[0] != want[0] || stale[1] != want[1] {
		t.Fatalf("stale = %v, want %v", stale, want)
	}

	result := store.Prune(context.Background(), keep)
	if len(result.Errors) != 0 {
		t.Fatalf("prune errors: %+v", result.Errors)
	}
	if len(result.Removed) != 2 {
		t.Fatalf("removed = %v", result.Removed)
	}
	if _, err := os.Stat(store.Path("keep", "h1")); err != nil {
		t.Fatalf("kept bundle removed: %v", err)
	}
	for _, dir := range want {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Fatalf("%s still present", dir)
		}
	}
}

func TestStaleWithoutBundlesDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := bundlestore.New(cfg, logging.NewNop())
	stale, err := store.Stale(nil)
	if err != nil || len(stale) != 0 {
		t.Fatalf("stale = %v err=%v", stale, err)
	}
}

func TestCatalogFiles(t *testing.T) {
	store := newStore(t)
	testsupport.WriteText(t, store.CatalogPath("1.0.0"), "{}")
	testsupport.WriteText(t, store.CatalogPath("1.0.1"), "{}")

	if !store.HasCatalog("1.0.1") {
		t.Fatal("expected catalog 1.0.1")
	}
	if _, ok := store.LatestLocalCatalog(); ok {
		t.Fatal("two catalogs should not report a single local version")
	}

	removed, err := store.RemoveOtherCatalogs("1.0.1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(removed) != 1 || removed[0] != store.CatalogPath("1.0.0") {
		t.Fatalf("removed = %v", removed)
	}
	version, ok := store.LatestLocalCatalog()
	if !ok || version != "1.0.1" {
		t.Fatalf("local version = %q %v", version, ok)
	}
}

func TestLoadCatalog(t *testing.T) {
	store := newStore(t)
	fx := testsupport.NewCatalogFixture(t)
	key := fx.AddKey("common-skeleton-data-x_0a1b.bundle")
	fx.AddBundleEntry(key, "bundle-x", "abcd", 42)
	if err := store.WriteCatalog("2.0.0", func(w io.Writer) error {
		_, err := w.Write(fx.JSON())
		return err
	}); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cat, err := store.LoadCatalog("2.0.0")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	bundles := cat.Bundles()
	if len(bundles) != 1 || bundles[0].Name != "bundle-x" || bundles[0].Size != 42 {
		t.Fatalf("bundles = %+v", bundles)
	}
}

func TestRelPath(t *testing.T) {
	store := newStore(t)
	rel, err := store.RelPath(store.Path("n", "h"))
	if err != nil {
		t.Fatalf("rel: %v", err)
	}
	if rel != filepath.Join("n", "h", "__data") {
		t.Fatalf("rel = %q", rel)
	}
	if _, err := store.RelPath(filepath.Join(store.Root, "elsewhere")); err == nil {
		t.Fatal("expected error for path outside bundles dir")
	}
}

func TestWriteRejectsEscapingBundleNames(t *testing.T) {
	store := newStore(t)
	cases := []catalog.BundleInfo{
		{Name: "../../escaped", Hash: "h", Size: 1},
		{Name: "skel", Hash: "../h", Size: 1},
		{Name: "a/b", Hash: "h", Size: 1},
		{Name: `a\b`, Hash: "h", Size: 1},
		{Name: "", Hash: "h", Size: 1},
		{Name: "skel", Hash: "..", Size: 1},
	}
	for _, info := range cases {
		err := store.Write(info, func(w io.Writer) error {
			_, err := w.Write([]byte("x"))
			return err
		})
		if !errors.Is(err, services.ErrFatalInput) || !errors.Is(err, catalog.ErrUnsafeName) {
			t.Fatalf("write %q/%q: expected unsafe name error, got %v", info.Name, info.Hash, err)
		}
		if _, err := store.Has(info); !errors.Is(err, services.ErrFatalInput) {
			t.Fatalf("has %q/%q: expected fatal input, got %v", info.Name, info.Hash, err)
		}
	}
	if _, err := os.Stat(filepath.Join(store.BundlesDir(), "..", "..", "escaped")); !os.IsNotExist(err) {
		t.Fatalf("bundle written outside cache: %v", err)
	}
}

func TestCatalogVersionMustBeSinglePathElement(t *testing.T) {
	store := newStore(t)
	err := store.WriteCatalog("../../1.0.0", func(w io.Writer) error {
		_, err := w.Write([]byte("{}"))
		return err
	})
	if !errors.Is(err, services.ErrFatalInput) {
		t.Fatalf("expected fatal input, got %v", err)
	}
	if store.HasCatalog("../1.0.0") {
		t.Fatal("unsafe version reported as present")
	}
	if _, err := store.LoadCatalog("a/b"); !errors.Is(err, catalog.ErrUnsafeName) {
		t.Fatalf("expected unsafe name error, got %v", err)
	}
}
