// Package observability provides logging and metrics support for the
// annotation browser service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for store queries, sessions, and exports
//   - Context helpers for propagating request and session identifiers
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:     "info",
//	    Format:    "json",
//	    Output:    "stdout",
//	    AddSource: true,
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("session_id", sessionID).Msg("session created")
//
// Add session context to a logger:
//
//	logger = observability.WithSessionContext(logger, sessionID)
//
// # Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics("soorena")
//
// Record metrics:
//
//	metrics.RecordQuery(observability.ConsumerPage, elapsed.Seconds())
//	metrics.RecordSessionCreated()
//	metrics.RecordUnrecognizedLabel("autoglycosylation")
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - request_id: HTTP request identifier
//   - session_id: Browsing session identifier
//   - consumer: Query consumer (count, page, stats, export)
//   - ac: Record accession
//   - dimension: Statistics grouping dimension
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
