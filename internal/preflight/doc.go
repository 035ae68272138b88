// Package preflight provides readiness checks for the CDN, external helpers,
// and the workspace directories redust writes into.
//
// The CLI "redust doctor" command runs every check; mutating commands run
// the directory checks before taking the workspace lock.
package preflight
