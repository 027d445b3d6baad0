// Package backup drives one backup run across all configured GitHub
// organizations. For every organization it lists repositories via the
// remote API, ensures the organization's backup directory exists and syncs
// each repository through a bounded worker pool, aggregating per run
// statistics.
//
// Failures are isolated: an organization whose listing fails is skipped
// and a repository whose sync fails is counted but never stops the run.
package backup
