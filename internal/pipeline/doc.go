// Package pipeline defines the shared error taxonomy for the ingestion run.
//
// Sentinel markers distinguish per-sample failures (format, alignment, lookup
// multiplicity) from batch-fatal ones (unassignable blank) so the batch runner
// can mechanically decide whether to continue with the next sample or reject
// the whole folder. Wrap attaches component and operation context while keeping
// the marker reachable through errors.Is.
package pipeline
