package blanks_test

import (
	"errors"
	"testing"
	"time"

	"uvabs/internal/blanks"
	"uvabs/internal/pipeline"
)

var horizon = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 15, hour, minute, 0, 0, time.UTC)
}

func TestAssignPicksMostRecentPriorBlank(t *testing.T) {
	samples := []blanks.Reading{
		{Path: "00001.SP", AcquiredAt: at(10, 0)},
		{Path: "00002.SP", AcquiredAt: at(10, 30)},
		{Path: "00003.SP", AcquiredAt: at(11, 15)},
	}
	blankFiles := []blanks.Reading{
		{Path: "BLANK.SP", AcquiredAt: at(9, 55)},
		{Path: "BL.SP", AcquiredAt: at(11, 0)},
	}

	assignment, err := blanks.Assign(samples, blankFiles, horizon)
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	want := map[string]string{
		"00001.SP": "BLANK.SP",
		"00002.SP": "BLANK.SP",
		"00003.SP": "BL.SP",
	}
	for sample, blank := range want {
		got, ok := assignment.BlankFor(sample)
		if !ok {
			t.Fatalf("no blank assigned for %s", sample)
		}
		if got != blank {
			t.Fatalf("sample %s assigned %s, want %s", sample, got, blank)
		}
	}
}

func TestAssignTieGoesToBlankAtSameInstant(t *testing.T) {
	samples := []blanks.Reading{{Path: "00001.SP", AcquiredAt: at(11, 0)}}
	blankFiles := []blanks.Reading{
		{Path: "BLANK.SP", AcquiredAt: at(9, 55)},
		{Path: "BL.SP", AcquiredAt: at(11, 0)},
	}

	assignment, err := blanks.Assign(samples, blankFiles, horizon)
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if got, _ := assignment.BlankFor("00001.SP"); got != "BL.SP" {
		t.Fatalf("expected interval lower bound to be inclusive, got %s", got)
	}
}

func TestAssignFailsBatchWhenSamplePrecedesAllBlanks(t *testing.T) {
	samples := []blanks.Reading{
		{Path: "00001.SP", AcquiredAt: at(9, 0)},
		{Path: "00002.SP", AcquiredAt: at(10, 30)},
	}
	blankFiles := []blanks.Reading{{Path: "BLANK.SP", AcquiredAt: at(9, 55)}}

	_, err := blanks.Assign(samples, blankFiles, horizon)
	if err == nil {
		t.Fatal("expected batch-fatal error")
	}
	if !errors.Is(err, pipeline.ErrUnassignableBlank) {
		t.Fatalf("expected ErrUnassignableBlank, got %v", err)
	}
	if !pipeline.BatchFatal(err) {
		t.Fatal("unassignable blank must be batch fatal")
	}
}

func TestAssignFailsAtOrBeyondHorizon(t *testing.T) {
	samples := []blanks.Reading{{Path: "00001.SP", AcquiredAt: horizon}}
	blankFiles := []blanks.Reading{{Path: "BLANK.SP", AcquiredAt: at(9, 55)}}

	_, err := blanks.Assign(samples, blankFiles, horizon)
	if !errors.Is(err, pipeline.ErrUnassignableBlank) {
		t.Fatalf("expected ErrUnassignableBlank, got %v", err)
	}
}

func TestAssignFailsWithoutBlanks(t *testing.T) {
	samples := []blanks.Reading{{Path: "00001.SP", AcquiredAt: at(10, 0)}}
	_, err := blanks.Assign(samples, nil, horizon)
	if !errors.Is(err, pipeline.ErrUnassignableBlank) {
		t.Fatalf("expected ErrUnassignableBlank, got %v", err)
	}
}

func TestAssignIsOrderIndependent(t *testing.T) {
	samples := []blanks.Reading{
		{Path: "00003.SP", AcquiredAt: at(11, 15)},
		{Path: "00001.SP", AcquiredAt: at(10, 0)},
		{Path: "00002.SP", AcquiredAt: at(10, 30)},
	}
	blankFiles := []blanks.Reading{
		{Path: "BL.SP", AcquiredAt: at(11, 0)},
		{Path: "BLANK.SP", AcquiredAt: at(9, 55)},
	}

	assignment, err := blanks.Assign(samples, blankFiles, horizon)
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if assignment.Len() != 3 {
		t.Fatalf("expected 3 assignments, got %d", assignment.Len())
	}
	if got, _ := assignment.BlankFor("00001.SP"); got != "BLANK.SP" {
		t.Fatalf("sample 00001 assigned %s", got)
	}
	if got, _ := assignment.BlankFor("00003.SP"); got != "BL.SP" {
		t.Fatalf("sample 00003 assigned %s", got)
	}
}

func TestAssignEveryBlankNotLaterThanSample(t *testing.T) {
	samples := []blanks.Reading{
		{Path: "a.SP", AcquiredAt: at(10, 5)},
		{Path: "b.SP", AcquiredAt: at(12, 45)},
		{Path: "c.SP", AcquiredAt: at(15, 59)},
	}
	blankFiles := []blanks.Reading{
		{Path: "BL1.SP", AcquiredAt: at(10, 0)},
		{Path: "BL2.SP", AcquiredAt: at(12, 0)},
		{Path: "BL3.SP", AcquiredAt: at(16, 0)},
	}
	times := map[string]time.Time{}
	for _, b := range blankFiles {
		times[b.Path] = b.AcquiredAt
	}

	assignment, err := blanks.Assign(samples, blankFiles, horizon)
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	for _, sample := range samples {
		assigned, ok := assignment.BlankFor(sample.Path)
		if !ok {
			t.Fatalf("no blank for %s", sample.Path)
		}
		if times[assigned].After(sample.AcquiredAt) {
			t.Fatalf("blank %s is later than sample %s", assigned, sample.Path)
		}
		// No other blank may sit between the assigned blank and the sample.
		for _, blank := range blankFiles {
			if blank.AcquiredAt.After(times[assigned]) && !blank.AcquiredAt.After(sample.AcquiredAt) {
				t.Fatalf("blank %s is more recent than assigned %s for sample %s", blank.Path, assigned, sample.Path)
			}
		}
	}
}
