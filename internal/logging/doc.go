// Package logging provides logging utilities for create-sandbox.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("running command", "cmd", "yarn install", "dir", dir)
//	logging.Warn("build script not declared", "script", script)
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Cloning %s...", url)
//	logging.UserSuccess("Sandbox %s created", name)
//	logging.UserWarning("Script %q is not declared", script)
//	logging.UserError("%v", err)
//	logging.UserHint("rm -rf widget-sandbox")
//
// Output destinations:
//   - UserInfo, UserSuccess: Stdout
//   - UserWarning, UserError, UserHint: Stderr
//
// # Next Steps
//
// NextSteps renders the closing message after a successful run. On a
// terminal it is rendered as markdown with glamour; otherwise it is
// written as plain text.
package logging
