package upload_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"uvabs/internal/correct"
	"uvabs/internal/fileutil"
	"uvabs/internal/logging"
	"uvabs/internal/spectrum"
	"uvabs/internal/testsupport"
	"uvabs/internal/upload"
)

func makeCorrected(wsID int64) *correct.Corrected {
	rows := make([]correct.Row, spectrum.PointCount)
	for i := range rows {
		rows[i] = correct.Row{Wavelength: 200 + i, Value: 0.15}
	}
	return &correct.Corrected{WaterSampleID: wsID, MethodID: 10666, Rows: rows}
}

func makeBatch(t *testing.T, folder string) upload.BatchContext {
	t.Helper()
	src := filepath.Join(folder, "00123.SP")
	if err := os.WriteFile(src, []byte("raw"), 0o644); err != nil {
		t.Fatalf("write source file: %v", err)
	}
	return upload.BatchContext{
		Folder:        folder,
		LabwareTextID: "NR-2024-00123",
		SerialNo:      "00123",
		Year:          2024,
		BlankFile:     "BLANK.SP",
		Dilution:      1,
		CuvetteLenCM:  5,
		SourcePath:    src,
		ArchiveDir:    "uploaded",
	}
}

func TestUploadPersistsAuditsAndArchives(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.NewStore(t, cfg)
	coordinator := upload.NewCoordinator(st, logging.NewNop())
	ctx := context.Background()

	folder := t.TempDir()
	batch := makeBatch(t, folder)

	outcome, err := coordinator.Upload(ctx, makeCorrected(42), batch, false)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if outcome != upload.OutcomeUploaded {
		t.Fatalf("expected OutcomeUploaded, got %q", outcome)
	}

	count, err := st.SpectrumRowCount(ctx, 42)
	if err != nil {
		t.Fatalf("SpectrumRowCount failed: %v", err)
	}
	if count != spectrum.PointCount {
		t.Fatalf("expected %d rows persisted, got %d", spectrum.PointCount, count)
	}

	entries, err := st.UploadLog(ctx)
	if err != nil {
		t.Fatalf("UploadLog failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].ArchivePath != filepath.Join(folder, "uploaded", "00123.SP") {
		t.Fatalf("unexpected archive path: %q", entries[0].ArchivePath)
	}

	if _, err := os.Stat(batch.SourcePath); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("source file should have been archived")
	}
	if _, err := os.Stat(filepath.Join(folder, "uploaded", "00123.SP")); err != nil {
		t.Fatalf("archived file missing: %v", err)
	}
}

func TestUploadSecondRunSkipsDuplicate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.NewStore(t, cfg)
	coordinator := upload.NewCoordinator(st, logging.NewNop())
	ctx := context.Background()

	first := makeBatch(t, t.TempDir())
	if _, err := coordinator.Upload(ctx, makeCorrected(42), first, false); err != nil {
		t.Fatalf("first Upload failed: %v", err)
	}

	second := makeBatch(t, t.TempDir())
	outcome, err := coordinator.Upload(ctx, makeCorrected(42), second, false)
	if err != nil {
		t.Fatalf("second Upload failed: %v", err)
	}
	if outcome != upload.OutcomeSkippedDuplicate {
		t.Fatalf("expected OutcomeSkippedDuplicate, got %q", outcome)
	}

	// The duplicate run must not mutate anything: one audit entry, untouched source.
	entries, err := st.UploadLog(ctx)
	if err != nil {
		t.Fatalf("UploadLog failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry after duplicate skip, got %d", len(entries))
	}
	if _, err := os.Stat(second.SourcePath); err != nil {
		t.Fatalf("skipped sample's source file should remain: %v", err)
	}
}

func TestUploadForceReplacesRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.NewStore(t, cfg)
	coordinator := upload.NewCoordinator(st, logging.NewNop())
	ctx := context.Background()

	if _, err := coordinator.Upload(ctx, makeCorrected(42), makeBatch(t, t.TempDir()), true); err != nil {
		t.Fatalf("first forced Upload failed: %v", err)
	}
	outcome, err := coordinator.Upload(ctx, makeCorrected(42), makeBatch(t, t.TempDir()), true)
	if err != nil {
		t.Fatalf("second forced Upload failed: %v", err)
	}
	if outcome != upload.OutcomeUploaded {
		t.Fatalf("expected forced re-upload, got %q", outcome)
	}

	// Exactly one final copy: replaced, not appended.
	count, err := st.SpectrumRowCount(ctx, 42)
	if err != nil {
		t.Fatalf("SpectrumRowCount failed: %v", err)
	}
	if count != spectrum.PointCount {
		t.Fatalf("expected %d rows after forced re-upload, got %d", spectrum.PointCount, count)
	}
}

func TestUploadArchiveCollisionSurfacesError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.NewStore(t, cfg)
	coordinator := upload.NewCoordinator(st, logging.NewNop())
	ctx := context.Background()

	folder := t.TempDir()
	batch := makeBatch(t, folder)
	archive := filepath.Join(folder, "uploaded")
	if err := os.MkdirAll(archive, 0o755); err != nil {
		t.Fatalf("create archive dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(archive, "00123.SP"), []byte("old"), 0o644); err != nil {
		t.Fatalf("seed archive collision: %v", err)
	}

	_, err := coordinator.Upload(ctx, makeCorrected(42), batch, false)
	if err == nil {
		t.Fatal("expected archive collision error")
	}
	if !errors.Is(err, fileutil.ErrDestinationExists) {
		t.Fatalf("expected ErrDestinationExists, got %v", err)
	}

	// Database state is committed before the move, so the rows exist and the
	// failure is diagnosable from the audit log.
	count, err := st.SpectrumRowCount(ctx, 42)
	if err != nil {
		t.Fatalf("SpectrumRowCount failed: %v", err)
	}
	if count != spectrum.PointCount {
		t.Fatalf("expected committed rows despite archive failure, got %d", count)
	}
}
