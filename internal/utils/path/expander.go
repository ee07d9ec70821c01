// Package pathutils normalizes filesystem paths supplied by users and configuration files.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
	environmentReferencePrefix      = "$"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// EnvironmentLookup resolves environment variables.
type EnvironmentLookup func(name string) (string, bool)

// PathExpander resolves leading tildes and $VARIABLE references the way a shell would.
type PathExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	environmentLookup     EnvironmentLookup
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewPathExpander constructs a PathExpander using the operating system lookups.
func NewPathExpander() *PathExpander {
	return NewPathExpanderWithProviders(os.UserHomeDir, os.LookupEnv)
}

// NewPathExpanderWithProviders constructs a PathExpander with custom lookups.
func NewPathExpanderWithProviders(homeProvider HomeDirectoryProvider, environmentLookup EnvironmentLookup) *PathExpander {
	if homeProvider == nil {
		homeProvider = os.UserHomeDir
	}
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	return &PathExpander{homeDirectoryProvider: homeProvider, environmentLookup: environmentLookup}
}

// Expand substitutes environment references and then resolves a leading tilde.
// Undefined variables are left untouched.
func (expander *PathExpander) Expand(candidatePath string) string {
	if expander == nil || len(candidatePath) == 0 {
		return candidatePath
	}
	return expander.expandHome(expander.expandEnvironment(candidatePath))
}

// ExpandAll expands every path in order.
func (expander *PathExpander) ExpandAll(candidatePaths []string) []string {
	expandedPaths := make([]string, 0, len(candidatePaths))
	for _, candidatePath := range candidatePaths {
		expandedPaths = append(expandedPaths, expander.Expand(candidatePath))
	}
	return expandedPaths
}

func (expander *PathExpander) expandEnvironment(candidatePath string) string {
	if !strings.Contains(candidatePath, environmentReferencePrefix) {
		return candidatePath
	}
	return os.Expand(candidatePath, func(variableName string) string {
		if value, defined := expander.environmentLookup(variableName); defined {
			return value
		}
		return environmentReferencePrefix + variableName
	})
}

func (expander *PathExpander) expandHome(candidatePath string) string {
	if !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	resolvedHomeDirectory := expander.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return candidatePath
	}

	if candidatePath == tildeSymbolConstant {
		return resolvedHomeDirectory
	}

	if strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant) {
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant))
	}

	if tildeWithPathSeparatorPrefix != tildeForwardSlashPrefixConstant && strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix) {
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix))
	}

	return candidatePath
}

func (expander *PathExpander) resolveHomeDirectory() string {
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
	})
	if expander.homeDirectoryError != nil {
		return ""
	}
	return expander.homeDirectory
}
