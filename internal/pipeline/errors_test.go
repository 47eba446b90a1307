package pipeline_test

import (
	"errors"
	"strings"
	"testing"

	"uvabs/internal/pipeline"
)

func TestWrapKeepsMarkerReachable(t *testing.T) {
	base := errors.New("boom")
	err := pipeline.Wrap(pipeline.ErrFormat, "reader", "parse", "bad row", base)
	if !errors.Is(err, pipeline.ErrFormat) {
		t.Fatalf("expected ErrFormat marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
	for _, fragment := range []string{"reader", "parse", "bad row"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in message %q", fragment, err.Error())
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := pipeline.Wrap(nil, "store", "count", "", nil)
	if !errors.Is(err, pipeline.ErrTransient) {
		t.Fatalf("expected ErrTransient fallback, got %v", err)
	}
}

func TestBatchFatal(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"unassignable blank", pipeline.Wrap(pipeline.ErrUnassignableBlank, "blanks", "assign", "", nil), true},
		{"format", pipeline.Wrap(pipeline.ErrFormat, "reader", "parse", "", nil), false},
		{"alignment", pipeline.Wrap(pipeline.ErrAlignment, "corrector", "join", "", nil), false},
		{"lookup multiplicity", pipeline.Wrap(pipeline.ErrLookupMultiplicity, "store", "lookup", "", nil), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := pipeline.BatchFatal(tc.err); got != tc.want {
				t.Fatalf("BatchFatal(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
