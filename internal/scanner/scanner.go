// Package scanner walks directory trees and reports the repositories it finds.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/repohq/internal/exclude"
	"github.com/temirov/repohq/internal/repository"
	pathutils "github.com/temirov/repohq/internal/utils/path"
)

const (
	rootNotDirectoryMessageConstant  = "scan root is not a directory"
	rootErrorTemplateConstant        = "unable to scan %s: %w"
	skippedEntryLogMessageConstant   = "skipping unreadable entry"
	skippedInspectLogMessageConstant = "skipping repository that could not be inspected"
	excludedLogMessageConstant       = "excluded by pattern"
	pathLogFieldConstant             = "path"
	patternLogFieldConstant          = "pattern"
)

// ErrRootNotDirectory indicates a scan root that exists but is not a directory.
var ErrRootNotDirectory = errors.New(rootNotDirectoryMessageConstant)

// Options bound a scan.
type Options struct {
	// MaxDepth limits how far below the root the walk descends; zero means unbounded.
	MaxDepth int
	Excludes exclude.Set
	// OnExcluded is called with the canonical path of every entry an exclude pattern removed.
	OnExcluded func(excludedPath string, pattern exclude.Pattern)
}

// Inspector builds a Repository for a directory carrying a version control marker.
type Inspector interface {
	Inspect(executionContext context.Context, directory string) (repository.Repository, error)
}

// Scanner discovers repositories below a root directory.
type Scanner struct {
	inspector Inspector
	logger    *zap.Logger
}

// NewScanner constructs a Scanner.
func NewScanner(inspector Inspector, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{inspector: inspector, logger: logger}
}

// Scan validates root and returns a lazy sequence of the repositories beneath it.
// Every range over the sequence walks the filesystem again. The walk follows
// symbolic links, visits each canonical directory once and never descends
// into a detected repository.
func (scanner *Scanner) Scan(executionContext context.Context, root string, options Options) (iter.Seq[repository.Repository], error) {
	canonicalRoot, canonicalError := pathutils.ResolveCanonicalPath(root)
	if canonicalError != nil {
		return nil, fmt.Errorf(rootErrorTemplateConstant, root, canonicalError)
	}
	rootInfo, statError := os.Stat(canonicalRoot)
	if statError != nil {
		return nil, fmt.Errorf(rootErrorTemplateConstant, root, statError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf(rootErrorTemplateConstant, root, ErrRootNotDirectory)
	}
	if _, readError := os.ReadDir(canonicalRoot); readError != nil {
		return nil, fmt.Errorf(rootErrorTemplateConstant, root, readError)
	}

	return func(yield func(repository.Repository) bool) {
		walk := directoryWalk{
			scanner:          scanner,
			executionContext: executionContext,
			options:          options,
			visited:          make(map[string]struct{}),
			yield:            yield,
		}
		walk.visit(canonicalRoot, 0)
	}, nil
}

type directoryWalk struct {
	scanner          *Scanner
	executionContext context.Context
	options          Options
	visited          map[string]struct{}
	yield            func(repository.Repository) bool
}

// visit returns false once the consumer stops or the context is done.
func (walk *directoryWalk) visit(directory string, depth int) bool {
	if walk.executionContext.Err() != nil {
		return false
	}
	if _, seen := walk.visited[directory]; seen {
		return true
	}
	walk.visited[directory] = struct{}{}

	if pattern, excluded := walk.options.Excludes.Match(directory); excluded {
		walk.scanner.logger.Debug(excludedLogMessageConstant, zap.String(pathLogFieldConstant, directory), zap.String(patternLogFieldConstant, pattern.String()))
		if walk.options.OnExcluded != nil {
			walk.options.OnExcluded(directory, pattern)
		}
		return true
	}

	if inspected, inspectError := walk.scanner.inspector.Inspect(walk.executionContext, directory); inspectError == nil {
		return walk.yield(inspected)
	} else if !errors.Is(inspectError, repository.ErrNotRepository) {
		walk.scanner.logger.Debug(skippedInspectLogMessageConstant, zap.String(pathLogFieldConstant, directory), zap.Error(inspectError))
		return true
	}

	if walk.options.MaxDepth > 0 && depth >= walk.options.MaxDepth {
		return true
	}

	entries, readError := os.ReadDir(directory)
	if readError != nil {
		walk.scanner.logger.Debug(skippedEntryLogMessageConstant, zap.String(pathLogFieldConstant, directory), zap.Error(readError))
		return true
	}

	for _, entry := range entries {
		childDirectory, isDirectory := walk.resolveChild(directory, entry)
		if !isDirectory {
			continue
		}
		if !walk.visit(childDirectory, depth+1) {
			return false
		}
	}
	return true
}

// resolveChild returns the canonical path of entry when it is, or links to, a directory.
func (walk *directoryWalk) resolveChild(parent string, entry fs.DirEntry) (string, bool) {
	isSymbolicLink := entry.Type()&fs.ModeSymlink != 0
	if !entry.IsDir() && !isSymbolicLink {
		return "", false
	}

	childPath := filepath.Join(parent, entry.Name())
	canonicalChild, canonicalError := pathutils.ResolveCanonicalPath(childPath)
	if canonicalError != nil {
		walk.scanner.logger.Debug(skippedEntryLogMessageConstant, zap.String(pathLogFieldConstant, childPath), zap.Error(canonicalError))
		return "", false
	}
	if !isSymbolicLink {
		return canonicalChild, true
	}

	targetInfo, statError := os.Stat(canonicalChild)
	if statError != nil || !targetInfo.IsDir() {
		return "", false
	}
	return canonicalChild, true
}
