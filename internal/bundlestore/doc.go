// Package bundlestore manages the local bundle cache and catalog files.
//
// Bundles live at {work}/bundles/{bundleName}/{hash}/__data, mirroring the
// game's own cache layout so the modded copies can be dropped in place.
// Catalogs are kept as catalog_{version}.json, one version at a time.
package bundlestore
