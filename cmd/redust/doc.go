// Package main hosts the redust CLI entrypoint and command graph.
//
// The Cobra command tree wires configuration, logging, the ledger, and the
// workspace lock, then hands off to the internal pipelines: catalog sync,
// JSON skeleton conversion, and bundle repacking. Commands stay thin; the
// work lives in internal packages.
package main
