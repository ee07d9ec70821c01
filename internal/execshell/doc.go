// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with lifecycle events and typed errors,
// OSCommandRunner runs processes through os/exec, and the wrappers expose the
// version control tools (git, hg, darcs, pijul) that repohq drives.
package execshell
