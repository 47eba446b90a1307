package spectrum

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"uvabs/internal/pipeline"
)

const (
	// headerLineCount is the fixed instrument header length. Data rows start
	// on the following line.
	headerLineCount = 86
	// dateHeaderLine and timeHeaderLine are the 1-based header lines carrying
	// the acquisition timestamp.
	dateHeaderLine = 6
	timeHeaderLine = 7

	timestampLayout = "06/01/02 15:04:05"
)

// Read parses a raw instrument file into a validated Spectrum. The file must
// carry the fixed 86-line header followed by exactly 701 whitespace-delimited
// (wavelength, value) rows.
func Read(path string) (*Spectrum, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrTransient, "reader", "open", path, err)
	}
	defer file.Close()

	// Instrument headers are written in Latin-1, including the degree sign in
	// the unit lines.
	scanner := bufio.NewScanner(transform.NewReader(file, charmap.ISO8859_1.NewDecoder()))

	var (
		lineNo   int
		dateLine string
		timeLine string
		points   = make([]Point, 0, PointCount)
		seen     = make(map[int]struct{}, PointCount)
	)

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		switch lineNo {
		case dateHeaderLine:
			dateLine = line
		case timeHeaderLine:
			timeLine = line
		}
		if lineNo <= headerLineCount {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, pipeline.Wrap(pipeline.ErrFormat, "reader", "parse",
				fmt.Sprintf("%s: line %d has %d fields (expected 2)", path, lineNo, len(fields)), nil)
		}
		wavelength, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, pipeline.Wrap(pipeline.ErrFormat, "reader", "parse",
				fmt.Sprintf("%s: line %d wavelength %q", path, lineNo, fields[0]), err)
		}
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, pipeline.Wrap(pipeline.ErrFormat, "reader", "parse",
				fmt.Sprintf("%s: line %d value %q", path, lineNo, fields[1]), err)
		}
		if _, dup := seen[wavelength]; dup {
			return nil, pipeline.Wrap(pipeline.ErrFormat, "reader", "parse",
				fmt.Sprintf("%s: duplicate wavelength %d", path, wavelength), nil)
		}
		seen[wavelength] = struct{}{}
		points = append(points, Point{Wavelength: wavelength, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, pipeline.Wrap(pipeline.ErrTransient, "reader", "scan", path, err)
	}

	if lineNo < headerLineCount {
		return nil, pipeline.Wrap(pipeline.ErrFormat, "reader", "parse",
			fmt.Sprintf("%s: truncated header (%d lines)", path, lineNo), nil)
	}
	if len(points) != PointCount {
		return nil, pipeline.Wrap(pipeline.ErrFormat, "reader", "parse",
			fmt.Sprintf("%s: contains %d rows (expected %d)", path, len(points), PointCount), nil)
	}

	acquired, err := parseTimestamp(dateLine, timeLine)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrFormat, "reader", "parse",
			fmt.Sprintf("%s: acquisition timestamp", path), err)
	}

	return &Spectrum{Path: path, AcquiredAt: acquired, Points: points}, nil
}

// AcquisitionTime extracts the acquisition timestamp from the file header
// without parsing the data table.
func AcquisitionTime(path string) (time.Time, error) {
	file, err := os.Open(path)
	if err != nil {
		return time.Time{}, pipeline.Wrap(pipeline.ErrTransient, "reader", "open", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(transform.NewReader(file, charmap.ISO8859_1.NewDecoder()))
	var dateLine, timeLine string
	for lineNo := 1; lineNo <= timeHeaderLine; lineNo++ {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return time.Time{}, pipeline.Wrap(pipeline.ErrTransient, "reader", "scan", path, err)
			}
			return time.Time{}, pipeline.Wrap(pipeline.ErrFormat, "reader", "parse",
				fmt.Sprintf("%s: truncated header (%d lines)", path, lineNo-1), nil)
		}
		switch lineNo {
		case dateHeaderLine:
			dateLine = scanner.Text()
		case timeHeaderLine:
			timeLine = scanner.Text()
		}
	}

	acquired, err := parseTimestamp(dateLine, timeLine)
	if err != nil {
		return time.Time{}, pipeline.Wrap(pipeline.ErrFormat, "reader", "parse",
			fmt.Sprintf("%s: acquisition timestamp", path), err)
	}
	return acquired, nil
}

// parseTimestamp combines the date header line with the first eight characters
// of the time header line, matching the instrument's yy/mm/dd + HH:MM:SS layout.
func parseTimestamp(dateLine, timeLine string) (time.Time, error) {
	date := strings.TrimSpace(dateLine)
	clock := strings.TrimSpace(timeLine)
	if len(clock) > 8 {
		clock = clock[:8]
	}
	return time.Parse(timestampLayout, date+" "+clock)
}
