// Package services defines shared utilities consumed by the sync, convert, and
// repack pipelines.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and item names for
//     logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     fatal for the run or local to one item.
//   - ItemErrors, the collection per-item failures are gathered into so a batch
//     can finish and report them together.
package services
