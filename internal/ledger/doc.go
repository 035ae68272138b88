// Package ledger records redust run history in SQLite.
//
// The Store remembers which catalog versions were fetched, which bundles each
// catalog selected, and which modded bundles were written together with their
// BLAKE3 digest. `redust status` reads it back; nothing in the pipelines depends
// on it for correctness, so the database can be deleted at any time.
//
// Schema changes bump schemaVersion in schema.go; users delete the database to
// adopt the new schema.
package ledger
