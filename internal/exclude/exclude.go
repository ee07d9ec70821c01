// Package exclude compiles the glob patterns that keep directories out of scans and the index.
//
// Patterns use doublestar syntax on forward-slash paths: * matches within one
// path element and ** matches across elements.
package exclude

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	pathutils "github.com/temirov/repohq/internal/utils/path"
)

const (
	invalidPatternMessageConstant = "invalid exclude pattern"
	invalidPatternTemplate        = "%w %q"
)

// ErrInvalidPattern indicates a pattern doublestar cannot parse.
var ErrInvalidPattern = errors.New(invalidPatternMessageConstant)

// Pattern is a compiled exclude glob.
type Pattern struct {
	source     string
	normalized string
}

// Compile expands shell shortcuts, normalizes separators and validates the glob.
func Compile(rawPattern string, expander *pathutils.PathExpander) (Pattern, error) {
	expandedPattern := strings.TrimSpace(rawPattern)
	if expander != nil {
		expandedPattern = expander.Expand(expandedPattern)
	}
	normalizedPattern := pathutils.ToSlashPath(expandedPattern)
	if len(normalizedPattern) == 0 || !doublestar.ValidatePattern(normalizedPattern) {
		return Pattern{}, fmt.Errorf(invalidPatternTemplate, ErrInvalidPattern, rawPattern)
	}
	return Pattern{source: rawPattern, normalized: normalizedPattern}, nil
}

// String returns the pattern as configured.
func (pattern Pattern) String() string {
	return pattern.source
}

// Matches reports whether the path, normalized to forward slashes, matches the pattern.
func (pattern Pattern) Matches(candidatePath string) bool {
	matched, matchError := doublestar.Match(pattern.normalized, pathutils.ToSlashPath(candidatePath))
	return matchError == nil && matched
}

// Set is an ordered collection of patterns.
type Set []Pattern

// CompileAll compiles every raw pattern and joins the failures.
func CompileAll(rawPatterns []string, expander *pathutils.PathExpander) (Set, error) {
	compiledSet := make(Set, 0, len(rawPatterns))
	var compileErrors []error
	for _, rawPattern := range rawPatterns {
		compiledPattern, compileError := Compile(rawPattern, expander)
		if compileError != nil {
			compileErrors = append(compileErrors, compileError)
			continue
		}
		compiledSet = append(compiledSet, compiledPattern)
	}
	if len(compileErrors) > 0 {
		return nil, errors.Join(compileErrors...)
	}
	return compiledSet, nil
}

// Match returns the first pattern matching the path.
func (set Set) Match(candidatePath string) (Pattern, bool) {
	for _, pattern := range set {
		if pattern.Matches(candidatePath) {
			return pattern, true
		}
	}
	return Pattern{}, false
}

// Strings returns the configured form of every pattern.
func (set Set) Strings() []string {
	rawPatterns := make([]string, 0, len(set))
	for _, pattern := range set {
		rawPatterns = append(rawPatterns, pattern.source)
	}
	return rawPatterns
}
