// Package services defines shared utilities consumed by the curation
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp record positions, operation names, and run
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent record outcomes (rejected vs aborted).
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability, retries) stays uniform across commands.
package services
