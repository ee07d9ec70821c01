// Package workspace keeps the index of known repositories and carries out the
// new, clone, add, import, refresh, list and foreach operations against it.
package workspace
