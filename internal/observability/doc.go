// Package observability provides the slog logger, the phase transition
// event log, and the metrics and alerts derived from it. Events persist as
// JSON Lines (JSONL); metrics and alerts are computed on demand by reading
// the log.
package observability
