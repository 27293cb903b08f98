// Package tasks runs long holiday-review operations with real-time progress reporting.
//
// # Core Operations
//
// [ReviewEngine] offers two operations:
//
//  1. [ReviewEngine.Pending] : list holiday requests still awaiting a decision
//
//  2. [ReviewEngine.Review] : apply many accept/reject decisions concurrently
//     - a bounded worker pool shares one rate limiter
//     - an expired session stops the remaining decisions instead of failing each one
//     - every outcome is recorded through the optional [ReviewRecorder]
//     - an optional report is written with the formatter package
//
// # Progress Reporting
//
// Operations accept a send-only [ProgressUpdate] channel. Updates are sent with select/default, so a slow
// or absent reader never blocks the work; a nil channel disables reporting.
package tasks
