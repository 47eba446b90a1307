// Package logging builds slog loggers for the CLI and run pipeline.
//
// The console handler renders one line per record with a UTC timestamp, level
// label, component prefix, and key=value attributes; the JSON handler is the
// structured alternative for machine consumption. Output fans out to stdout
// and the per-run log file so the end-of-run report can attach the full log.
package logging
