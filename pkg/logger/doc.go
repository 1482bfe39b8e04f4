// Package logger provides a structured logging interface for vkbackup.
//
// It wraps zerolog behind a small Logger interface so the API clients and the
// backup runner can be handed a TestLogger in tests:
//
//	logger.Initialize(&cfg.Logging)
//	log := logger.WithField("run_id", runID)
//	log.InfoWithFields("upload accepted", map[string]interface{}{
//	    "file_name": "10.jpg",
//	    "size_tag":  "z",
//	})
//
// Console output is colored text on stderr unless the format is "json".
// When a log file is configured every line is also appended to it as JSON.
package logger
