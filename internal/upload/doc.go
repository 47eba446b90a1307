// Package upload persists corrected spectra idempotently.
//
// A sample whose water sample id already has persisted rows is skipped unless
// the caller forces an update, which replaces the old rows wholesale. Side
// effects are strictly ordered: spectrum rows, then the audit log entry (both
// in one transaction), then the archive move of the source file.
package upload
