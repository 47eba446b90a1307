package spectrum_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"uvabs/internal/pipeline"
	"uvabs/internal/spectrum"
	"uvabs/internal/testsupport"
)

func TestReadParsesFullSpectrum(t *testing.T) {
	dir := t.TempDir()
	acquired := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	path := testsupport.WriteSP(t, dir, "00123.SP", acquired, func(w int) float64 {
		return float64(w) / 1000
	})

	spec, err := spectrum.Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(spec.Points) != spectrum.PointCount {
		t.Fatalf("expected %d points, got %d", spectrum.PointCount, len(spec.Points))
	}
	if !spec.AcquiredAt.Equal(acquired) {
		t.Fatalf("unexpected acquisition time: %v", spec.AcquiredAt)
	}
	if spec.Points[0].Wavelength != 200 {
		t.Fatalf("unexpected first wavelength: %d", spec.Points[0].Wavelength)
	}
	if got, want := spec.Points[0].Value, 0.2; got != want {
		t.Fatalf("unexpected first value: %v want %v", got, want)
	}
	if spec.Points[len(spec.Points)-1].Wavelength != 900 {
		t.Fatalf("unexpected last wavelength: %d", spec.Points[len(spec.Points)-1].Wavelength)
	}
}

func TestReadRejectsWrongRowCounts(t *testing.T) {
	dir := t.TempDir()
	acquired := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	for _, rows := range []int{700, 702} {
		path := testsupport.WriteSPRows(t, dir, "bad.SP", acquired, rows, nil)
		_, err := spectrum.Read(path)
		if err == nil {
			t.Fatalf("expected error for %d rows", rows)
		}
		if !errors.Is(err, pipeline.ErrFormat) {
			t.Fatalf("expected ErrFormat for %d rows, got %v", rows, err)
		}
	}
}

func TestReadRejectsMissingFile(t *testing.T) {
	_, err := spectrum.Read(t.TempDir() + "/absent.SP")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, pipeline.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
}

func TestAcquisitionTimeReadsHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	acquired := time.Date(2023, 11, 2, 14, 30, 45, 0, time.UTC)
	path := testsupport.WriteSP(t, dir, "BLANK.SP", acquired, nil)

	got, err := spectrum.AcquisitionTime(path)
	if err != nil {
		t.Fatalf("AcquisitionTime returned error: %v", err)
	}
	if !got.Equal(acquired) {
		t.Fatalf("unexpected acquisition time: %v want %v", got, acquired)
	}
}

func TestAcquisitionTimeRejectsTruncatedHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.SP")
	if err := os.WriteFile(path, []byte("line1\nline2\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, err := spectrum.AcquisitionTime(path)
	if !errors.Is(err, pipeline.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}
