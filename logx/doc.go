// Package logx provides leveled, structured logging configured from the
// environment.
//
// Environment Variables:
//   - LOG_LEVEL: minimum log level (TRACE, DEBUG, INFO, WARN, ERROR, OFF)
//   - LOG_FORMAT: output format (console, json)
//   - LOG_COLOR: colored console output (true/false, default: true)
//
// Basic Usage:
//
//	logx.Info("Server starting on port %d", 8080)
//	logx.ErrorFields("Test error message", logx.Fields{
//		"errorCode": "TEST_ERROR",
//		"path":      "/test",
//	})
//
// Console output:
//
//	[2025-06-08 18:57:52] [ERROR]: Test error message errorCode=TEST_ERROR path=/test
//
// JSON output (LOG_FORMAT=json):
//
//	{"errorCode":"TEST_ERROR","level":"ERROR","message":"Test error message","path":"/test","timestamp":"2025-06-08T18:57:52Z"}
package logx
