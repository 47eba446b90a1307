package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const (
	headerLineCount = 86
	startWavelength = 200
	pointCount      = 701
)

// FlatValue returns a value function yielding the same intensity at every
// wavelength.
func FlatValue(value float64) func(int) float64 {
	return func(int) float64 { return value }
}

// WriteSP writes a well-formed instrument file with 701 rows into dir and
// returns its path. The value function maps wavelength to intensity.
func WriteSP(t testing.TB, dir, name string, acquiredAt time.Time, value func(wavelength int) float64) string {
	t.Helper()
	return WriteSPRows(t, dir, name, acquiredAt, pointCount, value)
}

// WriteSPRows writes an instrument file with an arbitrary row count, for
// exercising format validation.
func WriteSPRows(t testing.TB, dir, name string, acquiredAt time.Time, rows int, value func(wavelength int) float64) string {
	t.Helper()

	if value == nil {
		value = FlatValue(0)
	}

	var builder strings.Builder
	for line := 1; line <= headerLineCount; line++ {
		switch line {
		case 1:
			builder.WriteString("PE UV    SPECTRUM    ASCII    PEDS    1.60\n")
		case 6:
			builder.WriteString(acquiredAt.Format("06/01/02") + "\n")
		case 7:
			builder.WriteString(acquiredAt.Format("15:04:05") + ".00\n")
		default:
			builder.WriteString(fmt.Sprintf("#H%d\n", line))
		}
	}
	for i := 0; i < rows; i++ {
		wavelength := startWavelength + i
		builder.WriteString(fmt.Sprintf("%d\t%.6f\n", wavelength, value(wavelength)))
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(builder.String()), 0o644); err != nil {
		t.Fatalf("write instrument file %s: %v", path, err)
	}
	return path
}
