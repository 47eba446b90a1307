// Package report holds the structured end-of-run summary and its rendering.
package report

import (
	"fmt"
	"strings"
	"time"
)

// Outcome classifies what happened to one sample file.
type Outcome string

const (
	OutcomeUploaded         Outcome = "uploaded"
	OutcomeSkippedDuplicate Outcome = "skipped_duplicate"
	OutcomeSkippedUnknown   Outcome = "skipped_unknown"
	OutcomeFailed           Outcome = "failed"
)

// SampleResult records the outcome for one sample file.
type SampleResult struct {
	Folder    string
	File      string
	LabwareID string
	Outcome   Outcome
	Detail    string
}

// FolderFailure records a batch-fatal error that rejected a whole folder.
type FolderFailure struct {
	Folder string
	Reason string
}

// Counts aggregates sample outcomes.
type Counts struct {
	Uploaded         int
	SkippedDuplicate int
	SkippedUnknown   int
	Failed           int
}

// Report is the structured end-of-run summary delivered to the operator.
type Report struct {
	RunID          string
	Started        time.Time
	Finished       time.Time
	FoldersScanned int
	Results        []SampleResult
	FolderFailures []FolderFailure
}

// Counts tallies the per-sample outcomes.
func (r *Report) Counts() Counts {
	var c Counts
	for _, result := range r.Results {
		switch result.Outcome {
		case OutcomeUploaded:
			c.Uploaded++
		case OutcomeSkippedDuplicate:
			c.SkippedDuplicate++
		case OutcomeSkippedUnknown:
			c.SkippedUnknown++
		case OutcomeFailed:
			c.Failed++
		}
	}
	return c
}

// HasFailures reports whether any sample failed or any folder was rejected.
func (r *Report) HasFailures() bool {
	return r.Counts().Failed > 0 || len(r.FolderFailures) > 0
}

// Duration returns the wall-clock run time.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Render produces the human-readable report text delivered at the end of the
// run.
func (r *Report) Render() string {
	var b strings.Builder
	counts := r.Counts()

	fmt.Fprintf(&b, "UV absorbance upload report (run %s)\n", r.RunID)
	fmt.Fprintf(&b, "Started:  %s\n", r.Started.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Finished: %s\n", r.Finished.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Folders scanned: %d\n", r.FoldersScanned)
	fmt.Fprintf(&b, "Uploaded: %d, skipped duplicates: %d, skipped unknown: %d, failed: %d\n",
		counts.Uploaded, counts.SkippedDuplicate, counts.SkippedUnknown, counts.Failed)

	if len(r.FolderFailures) > 0 {
		b.WriteString("\nRejected folders:\n")
		for _, failure := range r.FolderFailures {
			fmt.Fprintf(&b, "  %s: %s\n", failure.Folder, failure.Reason)
		}
	}

	if len(r.Results) > 0 {
		b.WriteString("\nSamples:\n")
		for _, result := range r.Results {
			line := fmt.Sprintf("  %s/%s [%s]", result.Folder, result.File, result.Outcome)
			if result.LabwareID != "" {
				line += " " + result.LabwareID
			}
			if result.Detail != "" {
				line += ": " + result.Detail
			}
			b.WriteString(line + "\n")
		}
	}

	return b.String()
}
