package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormat marks a raw file that does not match the expected spectrum shape.
	ErrFormat = errors.New("format error")
	// ErrAlignment marks a sample/blank pair whose wavelength sets do not join cleanly.
	ErrAlignment = errors.New("alignment error")
	// ErrUnassignableBlank marks a batch in which a sample cannot be placed into
	// any blank interval. It is fatal to the whole batch, not just one sample.
	ErrUnassignableBlank = errors.New("unassignable blank")
	// ErrLookupMultiplicity marks a labware identifier that resolves to more than
	// one water sample. This is a data-integrity signal, not a routine miss.
	ErrLookupMultiplicity = errors.New("lookup multiplicity")
	// ErrConfiguration marks unusable configuration or parameters.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient marks I/O and database failures without a more specific kind.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// BatchFatal reports whether an error must abort the whole batch folder rather
// than skip a single sample. Callers decide abort-vs-continue from this alone.
func BatchFatal(err error) bool {
	return errors.Is(err, ErrUnassignableBlank)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
