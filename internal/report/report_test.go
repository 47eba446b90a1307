package report_test

import (
	"strings"
	"testing"
	"time"

	"uvabs/internal/report"
)

func sampleReport() *report.Report {
	started := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	return &report.Report{
		RunID:          "0d9c6f2e",
		Started:        started,
		Finished:       started.Add(42 * time.Second),
		FoldersScanned: 2,
		Results: []report.SampleResult{
			{Folder: "AB2024_03", File: "00001.SP", LabwareID: "NR-2024-00001", Outcome: report.OutcomeUploaded},
			{Folder: "AB2024_03", File: "00002.SP", LabwareID: "NR-2024-00002", Outcome: report.OutcomeSkippedDuplicate, Detail: "values already exist"},
			{Folder: "AB2024_03", File: "00003.SP", LabwareID: "NR-2024-00003", Outcome: report.OutcomeSkippedUnknown, Detail: "no water sample id found"},
			{Folder: "AB2024_04", File: "00004.SP", LabwareID: "NR-2024-00004", Outcome: report.OutcomeFailed, Detail: "format error"},
		},
		FolderFailures: []report.FolderFailure{
			{Folder: "AB2024_05", Reason: "no blank files in batch"},
		},
	}
}

func TestCountsTallyOutcomes(t *testing.T) {
	counts := sampleReport().Counts()
	want := report.Counts{Uploaded: 1, SkippedDuplicate: 1, SkippedUnknown: 1, Failed: 1}
	if counts != want {
		t.Fatalf("got %+v, want %+v", counts, want)
	}
}

func TestHasFailures(t *testing.T) {
	rep := sampleReport()
	if !rep.HasFailures() {
		t.Fatal("report with a failed sample and a rejected folder must flag failures")
	}

	clean := &report.Report{
		RunID: "clean",
		Results: []report.SampleResult{
			{File: "00001.SP", Outcome: report.OutcomeUploaded},
			{File: "00002.SP", Outcome: report.OutcomeSkippedDuplicate},
		},
	}
	if clean.HasFailures() {
		t.Fatal("skips are not failures")
	}
}

func TestDuration(t *testing.T) {
	if got := sampleReport().Duration(); got != 42*time.Second {
		t.Fatalf("got %s, want 42s", got)
	}
}

func TestRenderListsEverySection(t *testing.T) {
	text := sampleReport().Render()

	for _, want := range []string{
		"run 0d9c6f2e",
		"Folders scanned: 2",
		"Uploaded: 1, skipped duplicates: 1, skipped unknown: 1, failed: 1",
		"Rejected folders:",
		"AB2024_05: no blank files in batch",
		"AB2024_03/00001.SP [uploaded] NR-2024-00001",
		"AB2024_04/00004.SP [failed] NR-2024-00004: format error",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered report missing %q:\n%s", want, text)
		}
	}
}
