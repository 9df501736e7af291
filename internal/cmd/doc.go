// Package cmd provides helpers for executing external commands with
// proper error handling. Failed commands surface trimmed stderr in the
// returned error so callers can report the real cause instead of a bare
// "exit status 1".
package cmd
