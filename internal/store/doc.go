// Package store persists corrected spectra and the upload audit log in SQLite.
//
// The Store owns the transactional boundary for uploads: ReplaceSpectrum
// clears and rewrites a water sample's 701 rows and appends the audit entry in
// one transaction, so the database never holds a half-uploaded sample. The
// labware lookup table resolves external text identifiers to water sample ids;
// more than one match is surfaced as a data-integrity error rather than
// picking a winner.
//
// Schema changes bump schemaVersion in schema.go; there is no migration path.
package store
