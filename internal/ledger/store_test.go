package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"redust/internal/ledger"
	"redust/internal/services"
	"redust/internal/testsupport"
)

func TestOpenCreatesSchemaAndReopens(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	if store.Path() != cfg.LedgerPath() {
		t.Fatalf("unexpected ledger path %q", store.Path())
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
}

func TestCatalogRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := services.WithRunID(context.Background(), "run-a")

	if rec, err := store.LatestCatalog(ctx, "HD"); err != nil || rec != nil {
		t.Fatalf("expected no catalog yet, got %v %v", rec, err)
	}

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := store.RecordCatalog(ctx, ledger.CatalogRecord{Version: "1.0.0", Quality: "HD", FetchedAt: older, BundleCount: 3}); err != nil {
		t.Fatalf("RecordCatalog: %v", err)
	}
	if err := store.RecordCatalog(ctx, ledger.CatalogRecord{Version: "1.0.1", Quality: "HD", BundleCount: 4}); err != nil {
		t.Fatalf("RecordCatalog: %v", err)
	}
	if err := store.RecordCatalog(ctx, ledger.CatalogRecord{Version: "9.9.9", Quality: "SD", FetchedAt: older}); err != nil {
		t.Fatalf("RecordCatalog: %v", err)
	}

	latest, err := store.LatestCatalog(ctx, "HD")
	if err != nil {
		t.Fatalf("LatestCatalog: %v", err)
	}
	if latest == nil || latest.Version != "1.0.1" || latest.BundleCount != 4 || latest.RunID != "run-a" {
		t.Fatalf("unexpected latest catalog %+v", latest)
	}

	// Re-recording the same version updates in place.
	if err := store.RecordCatalog(ctx, ledger.CatalogRecord{Version: "1.0.0", Quality: "HD", BundleCount: 7}); err != nil {
		t.Fatalf("RecordCatalog: %v", err)
	}
	latest, err = store.LatestCatalog(ctx, "")
	if err != nil {
		t.Fatalf("LatestCatalog: %v", err)
	}
	if latest.Version != "1.0.0" || latest.BundleCount != 7 {
		t.Fatalf("expected upserted 1.0.0, got %+v", latest)
	}

	if err := store.RecordCatalog(ctx, ledger.CatalogRecord{}); err == nil {
		t.Fatal("expected error for empty version")
	}
}

func TestBundleRecordsReplacePerVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	first := []ledger.BundleRecord{
		{Name: "b", Hash: "h2", Size: 20, Key: "common-skeleton-data-b.bundle"},
		{Name: "a", Hash: "h1", Size: 10, Key: "common-skeleton-data-a.bundle"},
	}
	if err := store.RecordBundles(ctx, "1.0.0", first); err != nil {
		t.Fatalf("RecordBundles: %v", err)
	}
	if err := store.RecordBundles(ctx, "1.0.1", first[:1]); err != nil {
		t.Fatalf("RecordBundles: %v", err)
	}
	if err := store.RecordBundles(ctx, "1.0.0", first[1:]); err != nil {
		t.Fatalf("RecordBundles: %v", err)
	}

	got, err := store.KnownBundles(ctx, "1.0.0")
	if err != nil {
		t.Fatalf("KnownBundles: %v", err)
	}
	if len(got) != 1 || got[0].Name != "a" || got[0].Version != "1.0.0" || got[0].Size != 10 {
		t.Fatalf("unexpected bundles for 1.0.0: %+v", got)
	}
	other, err := store.KnownBundles(ctx, "1.0.1")
	if err != nil {
		t.Fatalf("KnownBundles: %v", err)
	}
	if len(other) != 1 || other[0].Name != "b" {
		t.Fatalf("unexpected bundles for 1.0.1: %+v", other)
	}
}

func TestOutputsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := services.WithRunID(context.Background(), "run-b")

	for _, path := range []string{"x/__data", "y/__data", "z/__data"} {
		if _, err := store.RecordOutput(ctx, ledger.OutputRecord{BundlePath: path, Digest: "d-" + path, ModCount: 2}); err != nil {
			t.Fatalf("RecordOutput: %v", err)
		}
	}

	limited, err := store.Outputs(ctx, 2)
	if err != nil {
		t.Fatalf("Outputs: %v", err)
	}
	if len(limited) != 2 || limited[0].BundlePath != "z/__data" || limited[1].BundlePath != "y/__data" {
		t.Fatalf("unexpected outputs %+v", limited)
	}
	if limited[0].RunID != "run-b" || limited[0].WrittenAt.IsZero() {
		t.Fatalf("expected run id and timestamp, got %+v", limited[0])
	}

	all, err := store.Outputs(ctx, 0)
	if err != nil {
		t.Fatalf("Outputs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 outputs, got %d", len(all))
	}
}

func TestSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	path := store.Path()
	store.Close()

	db, err := ledger.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	if err := db.ForceSchemaVersion(context.Background(), 99); err != nil {
		t.Fatalf("force version: %v", err)
	}
	db.Close()

	if _, err := ledger.OpenPath(path); !errors.Is(err, ledger.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
