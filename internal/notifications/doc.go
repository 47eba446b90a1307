// Package notifications delivers run events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Run-level and error-level delivery are toggled independently so an
// operator can receive end-of-run summaries without per-folder alerts.
//
// Extend this package if you need alternative transports; the run command
// depends only on the simple Service interface.
package notifications
