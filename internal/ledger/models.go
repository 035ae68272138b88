package ledger

import "time"

// CatalogRecord is one fetched catalog version.
type CatalogRecord struct {
	Version     string
	Quality     string
	FetchedAt   time.Time
	BundleCount int
	RunID       string
}

// BundleRecord is a bundle selected from a catalog version.
type BundleRecord struct {
	Name    string
	Hash    string
	Size    int64
	Key     string
	Version string
}

// OutputRecord is a modded bundle written by a repack run.
type OutputRecord struct {
	ID         int64
	BundlePath string
	Digest     string
	ModCount   int
	WrittenAt  time.Time
	RunID      string
}
