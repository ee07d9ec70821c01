package pathutils

import "strings"

// PathListSanitizerConfiguration controls path list sanitization behavior.
type PathListSanitizerConfiguration struct {
	// PruneNestedPaths removes paths nested within other provided paths.
	PruneNestedPaths bool
}

// PathListSanitizer normalizes path arguments consistently across commands.
type PathListSanitizer struct {
	expander      *PathExpander
	configuration PathListSanitizerConfiguration
}

// NewPathListSanitizer constructs a sanitizer using the provided expander and configuration.
func NewPathListSanitizer(expander *PathExpander, configuration PathListSanitizerConfiguration) *PathListSanitizer {
	if expander == nil {
		expander = NewPathExpander()
	}
	return &PathListSanitizer{expander: expander, configuration: configuration}
}

// Sanitize trims whitespace, expands shell shortcuts and drops empty entries.
func (sanitizer *PathListSanitizer) Sanitize(candidatePaths []string) []string {
	sanitizedPaths := make([]string, 0, len(candidatePaths))
	for _, candidatePath := range candidatePaths {
		trimmedCandidate := strings.TrimSpace(candidatePath)
		if len(trimmedCandidate) == 0 {
			continue
		}
		sanitizedPaths = append(sanitizedPaths, sanitizer.expander.Expand(trimmedCandidate))
	}

	if len(sanitizedPaths) == 0 {
		return nil
	}
	if sanitizer.configuration.PruneNestedPaths {
		return PruneNestedPaths(sanitizedPaths)
	}
	return sanitizedPaths
}
