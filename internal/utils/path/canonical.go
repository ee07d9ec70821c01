package pathutils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

const (
	canonicalPathErrorTemplateConstant = "unable to resolve %s: %w"
	windowsVerbatimPrefixConstant      = `\\?\`
	backslashSeparatorConstant         = `\`
	forwardSlashSeparatorConstant      = "/"
)

// ResolveCanonicalPath returns the absolute, symlink-free form of an existing path.
func ResolveCanonicalPath(candidatePath string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(candidatePath)
	if absoluteError != nil {
		return "", fmt.Errorf(canonicalPathErrorTemplateConstant, candidatePath, absoluteError)
	}
	resolvedPath, resolveError := filepath.EvalSymlinks(absolutePath)
	if resolveError != nil {
		return "", fmt.Errorf(canonicalPathErrorTemplateConstant, candidatePath, resolveError)
	}
	return filepath.Clean(strings.TrimPrefix(resolvedPath, windowsVerbatimPrefixConstant)), nil
}

// ToSlashPath converts every separator, including literal backslashes, to forward slashes.
func ToSlashPath(candidatePath string) string {
	return strings.ReplaceAll(filepath.ToSlash(candidatePath), backslashSeparatorConstant, forwardSlashSeparatorConstant)
}

// PruneNestedPaths keeps the outermost paths, preserving input order and dropping duplicates.
func PruneNestedPaths(candidatePaths []string) []string {
	if len(candidatePaths) == 0 {
		return nil
	}

	type pathDetails struct {
		originalIndex int
		value         string
		comparison    string
	}

	paths := make([]pathDetails, 0, len(candidatePaths))
	for index, candidatePath := range candidatePaths {
		paths = append(paths, pathDetails{
			originalIndex: index,
			value:         candidatePath,
			comparison:    comparisonPath(absolutePathOrClean(candidatePath)),
		})
	}

	slices.SortStableFunc(paths, func(first pathDetails, second pathDetails) int {
		return len(first.comparison) - len(second.comparison)
	})

	selected := make([]pathDetails, 0, len(paths))
	for _, candidate := range paths {
		nested := slices.ContainsFunc(selected, func(existing pathDetails) bool {
			return isNestedPath(existing.comparison, candidate.comparison)
		})
		if !nested {
			selected = append(selected, candidate)
		}
	}

	slices.SortStableFunc(selected, func(first pathDetails, second pathDetails) int {
		return first.originalIndex - second.originalIndex
	})

	pruned := make([]string, 0, len(selected))
	for _, candidate := range selected {
		pruned = append(pruned, candidate.value)
	}
	return pruned
}

func absolutePathOrClean(candidatePath string) string {
	cleanedPath := filepath.Clean(candidatePath)
	if resolvedPath, resolveError := ResolveCanonicalPath(cleanedPath); resolveError == nil {
		return resolvedPath
	}
	if absolutePath, absoluteError := filepath.Abs(cleanedPath); absoluteError == nil {
		return absolutePath
	}
	return cleanedPath
}

func comparisonPath(candidatePath string) string {
	comparison := filepath.Clean(candidatePath)
	if runtime.GOOS == "windows" {
		comparison = strings.ToLower(comparison)
	}
	return comparison
}

func isNestedPath(parent string, candidate string) bool {
	if candidate == parent {
		return true
	}
	if len(candidate) <= len(parent) || !strings.HasPrefix(candidate, parent) {
		return false
	}
	if parent[len(parent)-1] == os.PathSeparator {
		return true
	}
	return candidate[len(parent)] == os.PathSeparator
}
