// Package reference parses the repository references users type on the command line.
//
// Three shapes are recognized, in order: scheme URLs (https://host/org/repo),
// scp-like addresses (user@host:org/repo) and bare paths (org/repo or
// host/org/repo). Parsing is pure; no trimming or case folding is applied.
package reference
