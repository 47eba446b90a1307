package blanks

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"uvabs/internal/pipeline"
)

// Reading identifies one instrument file by path and acquisition time.
// Assignment never needs the spectrum table itself.
type Reading struct {
	Path       string
	AcquiredAt time.Time
}

// Assignment maps each sample path to the blank path covering its interval.
type Assignment struct {
	byPath map[string]string
}

// BlankFor returns the blank assigned to a sample path.
func (a Assignment) BlankFor(samplePath string) (string, bool) {
	blank, ok := a.byPath[samplePath]
	return blank, ok
}

// Len returns the number of assigned samples.
func (a Assignment) Len() int {
	return len(a.byPath)
}

// Assign pairs every sample with the most recent blank acquired at or before
// it. An instrument run begins with a blank, measures several samples, then
// re-blanks; the blanks partition the timeline into half-open intervals
// [blank_i, blank_{i+1}), the last one extending to the horizon. A sample
// acquired exactly at a blank's timestamp belongs to that blank.
//
// Any sample acquired before the earliest blank, or at or after the horizon,
// fails the whole batch: partial assignment would mean uploading samples
// corrected against the wrong baseline.
func Assign(samples, blanks []Reading, horizon time.Time) (Assignment, error) {
	if len(blanks) == 0 {
		return Assignment{}, pipeline.Wrap(pipeline.ErrUnassignableBlank, "blanks", "assign", "no blank files in batch", nil)
	}

	sortedBlanks := make([]Reading, len(blanks))
	copy(sortedBlanks, blanks)
	sort.Slice(sortedBlanks, func(i, j int) bool {
		return sortedBlanks[i].AcquiredAt.Before(sortedBlanks[j].AcquiredAt)
	})

	byPath := make(map[string]string, len(samples))
	var unassigned []string

	for _, sample := range samples {
		blank, ok := blankAtOrBefore(sortedBlanks, sample.AcquiredAt)
		if !ok || !sample.AcquiredAt.Before(horizon) {
			unassigned = append(unassigned, fmt.Sprintf("%s (%s)", sample.Path, sample.AcquiredAt.Format(time.RFC3339)))
			continue
		}
		byPath[sample.Path] = blank.Path
	}

	if len(unassigned) > 0 {
		sort.Strings(unassigned)
		return Assignment{}, pipeline.Wrap(pipeline.ErrUnassignableBlank, "blanks", "assign",
			"cannot assign blanks for all files: "+strings.Join(unassigned, ", "), nil)
	}

	return Assignment{byPath: byPath}, nil
}

// blankAtOrBefore finds the latest blank whose timestamp is <= t. Blanks must
// be sorted ascending.
func blankAtOrBefore(blanks []Reading, t time.Time) (Reading, bool) {
	idx := sort.Search(len(blanks), func(i int) bool {
		return blanks[i].AcquiredAt.After(t)
	})
	if idx == 0 {
		return Reading{}, false
	}
	return blanks[idx-1], true
}
