// Package catalog decodes content catalogs published next to the game's
// asset bundles.
//
// A catalog document carries four base64 blobs: a bucket table, a key blob,
// an extra-data blob and an entry table. Parse turns them into an immutable
// Catalog that can enumerate bundle entries and resolve logical asset names
// to the bundle that contains them. Resolution is a pure function of the
// input bytes, so re-parsing an unchanged catalog always yields the same
// answer.
//
// Only corrupt bucket or entry tables, and bundle entries whose name or hash
// would not stay a single path element, are fatal. Keys that cannot be decoded
// are treated as absent and requested names that do not resolve are reported
// as missing, never as errors.
package catalog
