// Package catalogsync brings the local bundle cache in line with the CDN.
//
// A sync resolves the live bundle version (unless one is pinned), fetches
// that version's catalog when it is not already on disk, selects the bundles
// of interest and downloads the ones that are missing or whose size differs
// from the catalog. Every step is recorded in the ledger when one is
// attached.
package catalogsync
