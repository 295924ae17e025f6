// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging and timeouts via ShellExecutor, exposes
// OSCommandRunner for default process execution, and defines the seam used
// throughout gitgovern to run git and gh in a testable manner.
package execshell
