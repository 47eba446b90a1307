// Package batch orchestrates one ingestion run over a data root.
//
// Each qualifying folder is one batch: its blanks are assigned to its samples
// up front, then every sample flows through read, correct, and upload. The
// runner isolates per-sample failures and records them in the run report;
// only a blank-assignment failure rejects a folder outright, because it means
// the instrument run itself is structurally broken.
package batch
