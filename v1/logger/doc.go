// Package logger provides the structured zap logger used across colbert-search.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Logger interface: the contract consumed by the pipelines and the HTTP server
//   - LoggerClient struct: zap-backed implementation
//   - NewLoggerClient constructor: returns *LoggerClient
//   - FX module: provides both *LoggerClient and Logger
//
// # Usage
//
//	log := logger.NewLoggerClient(logger.Config{Level: "info", EnableTracing: true})
//	log.Info("collection recreated", nil, map[string]interface{}{"collection": "colbert_docs"})
//	log.ErrorWithContext(ctx, "upsert failed", err, nil)
//
// # Configuration
//
//	ZAP_LOGGER_LEVEL=debug          # debug, info, warning, error
//	LOGGER_ENABLE_TRACING=true      # add trace_id/span_id in *WithContext methods
//	LOGGER_SERVICE_NAME=colbert-search
//
// All methods are safe for concurrent use.
package logger
