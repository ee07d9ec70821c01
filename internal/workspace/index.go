package workspace

import (
	"context"
	"iter"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/repohq/internal/exclude"
	"github.com/temirov/repohq/internal/printer"
	"github.com/temirov/repohq/internal/repository"
)

const (
	addedNoticeTemplateConstant       = "Add new entry: %s\n"
	overwrittenNoticeTemplateConstant = "Overwrite existing entry: %s\n"
	droppedNoticeTemplateConstant     = "Dropped: %s\n"
	droppedExcludedTemplateConstant   = "Dropped: %s (excluded by %s)\n"
	indexEntryAddedLogMessage         = "index entry added"
	indexEntryReplacedLogMessage      = "index entry replaced"
	indexEntryDroppedLogMessage       = "index entry dropped"
	indexPathLogFieldConstant         = "path"
	indexKindLogFieldConstant         = "vcs"
	indexReasonLogFieldConstant       = "reason"
)

// AddOutcome describes what Add did with a repository.
type AddOutcome int

const (
	// AddOutcomeAdded indicates the repository was appended.
	AddOutcomeAdded AddOutcome = iota + 1
	// AddOutcomeOverwritten indicates an entry with the same path was replaced in place.
	AddOutcomeOverwritten
)

// Validator re-inspects a recorded repository path.
type Validator interface {
	Inspect(executionContext context.Context, directory string) (repository.Repository, error)
}

// Index is the ordered, path-unique list of known repositories.
type Index struct {
	repositories []repository.Repository
	lastSaved    time.Time
	loaded       bool
	notices      printer.Printer
	logger       *zap.Logger
}

// NewIndex constructs an empty, unloaded index.
func NewIndex(notices printer.Printer, logger *zap.Logger) *Index {
	if notices == nil {
		notices = printer.Discard()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{notices: notices, logger: logger}
}

// Load replaces the contents with persisted entries and marks the index loaded.
func (index *Index) Load(repositories []repository.Repository, lastSaved time.Time) {
	index.repositories = nil
	for _, loadedRepository := range repositories {
		if position := index.position(loadedRepository.Path); position >= 0 {
			index.repositories[position] = loadedRepository
			continue
		}
		index.repositories = append(index.repositories, loadedRepository)
	}
	index.lastSaved = lastSaved
	index.loaded = true
}

// Add upserts by path: a same-path entry is replaced in place, otherwise the repository is appended.
func (index *Index) Add(addedRepository repository.Repository) AddOutcome {
	index.loaded = true
	if position := index.position(addedRepository.Path); position >= 0 {
		index.repositories[position] = addedRepository
		index.notices.Printf(overwrittenNoticeTemplateConstant, addedRepository.Path)
		index.logger.Debug(indexEntryReplacedLogMessage, zap.String(indexPathLogFieldConstant, addedRepository.Path), zap.String(indexKindLogFieldConstant, string(addedRepository.Kind)))
		return AddOutcomeOverwritten
	}

	index.repositories = append(index.repositories, addedRepository)
	index.notices.Printf(addedNoticeTemplateConstant, addedRepository.Path)
	index.logger.Debug(indexEntryAddedLogMessage, zap.String(indexPathLogFieldConstant, addedRepository.Path), zap.String(indexKindLogFieldConstant, string(addedRepository.Kind)))
	return AddOutcomeAdded
}

// Merge adds every repository the sequence yields and returns how many were consumed.
func (index *Index) Merge(repositories iter.Seq[repository.Repository]) int {
	merged := 0
	for scannedRepository := range repositories {
		index.Add(scannedRepository)
		merged++
	}
	return merged
}

// DropInvalid re-inspects every entry and keeps the refreshed copy. Entries that
// fail inspection or match an exclude pattern are removed. It returns the
// number of dropped entries.
func (index *Index) DropInvalid(executionContext context.Context, validator Validator, excludes exclude.Set) int {
	retained := make([]repository.Repository, 0, len(index.repositories))
	dropped := 0
	for _, recordedRepository := range index.repositories {
		refreshedRepository, inspectError := validator.Inspect(executionContext, recordedRepository.Path)
		if inspectError != nil {
			dropped++
			index.notices.Printf(droppedNoticeTemplateConstant, recordedRepository.Path)
			index.logger.Debug(indexEntryDroppedLogMessage, zap.String(indexPathLogFieldConstant, recordedRepository.Path), zap.Error(inspectError))
			continue
		}
		if pattern, excluded := excludes.Match(refreshedRepository.Path); excluded {
			dropped++
			index.notices.Printf(droppedExcludedTemplateConstant, refreshedRepository.Path, pattern.String())
			index.logger.Debug(indexEntryDroppedLogMessage, zap.String(indexPathLogFieldConstant, refreshedRepository.Path), zap.String(indexReasonLogFieldConstant, pattern.String()))
			continue
		}
		if existing := slices.IndexFunc(retained, func(candidate repository.Repository) bool {
			return candidate.Path == refreshedRepository.Path
		}); existing >= 0 {
			retained[existing] = refreshedRepository
			continue
		}
		retained = append(retained, refreshedRepository)
	}
	index.repositories = retained
	return dropped
}

// Sort orders entries by name, keeping the relative order of equal names.
func (index *Index) Sort() {
	slices.SortStableFunc(index.repositories, func(first repository.Repository, second repository.Repository) int {
		return strings.Compare(first.Name, second.Name)
	})
}

// All returns a snapshot of the entries.
func (index *Index) All() []repository.Repository {
	return slices.Clone(index.repositories)
}

// Len returns the number of entries.
func (index *Index) Len() int {
	return len(index.repositories)
}

// Loaded reports whether the index was populated from a cache or by Add.
func (index *Index) Loaded() bool {
	return index.loaded
}

// LastSaved returns the timestamp of the last persisted snapshot.
func (index *Index) LastSaved() time.Time {
	return index.lastSaved
}

// MarkSaved records a successful save.
func (index *Index) MarkSaved(savedAt time.Time) {
	index.lastSaved = savedAt
	index.loaded = true
}

func (index *Index) position(repositoryPath string) int {
	return slices.IndexFunc(index.repositories, func(candidate repository.Repository) bool {
		return candidate.Path == repositoryPath
	})
}
