// Package vcs detects version-control markers and drives the git, hg, darcs
// and pijul executables that create, clone and describe repositories.
package vcs
