// Package repository describes a managed local repository and inspects
// directories to build one.
package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/repohq/internal/remote"
	pathutils "github.com/temirov/repohq/internal/utils/path"
	"github.com/temirov/repohq/internal/vcs"
)

const (
	notRepositoryMessageConstant   = "no version control marker found"
	notRepositoryTemplateConstant  = "%s: %w"
	remoteLookupFailedLogMessage   = "remote lookup failed"
	repositoryPathLogFieldConstant = "path"
	repositoryKindLogFieldConstant = "vcs"
)

// ErrNotRepository indicates a directory without any recognized marker.
var ErrNotRepository = errors.New(notRepositoryMessageConstant)

// Repository is one managed local repository.
type Repository struct {
	Name   string
	Path   string
	Kind   vcs.Kind
	Remote remote.Remote
}

// New builds a Repository for repositoryPath, resolving it to its canonical form.
func New(repositoryPath string, kind vcs.Kind, repositoryRemote remote.Remote) (Repository, error) {
	canonicalPath, canonicalError := pathutils.ResolveCanonicalPath(repositoryPath)
	if canonicalError != nil {
		return Repository{}, canonicalError
	}
	return Repository{
		Name:   filepath.Base(canonicalPath),
		Path:   canonicalPath,
		Kind:   kind,
		Remote: repositoryRemote,
	}, nil
}

// HasRemote reports whether a remote is recorded.
func (repository Repository) HasRemote() bool {
	return !repository.Remote.IsZero()
}

// RemoteLookup reads the remote of a repository of a given kind.
type RemoteLookup interface {
	LookupRemote(executionContext context.Context, kind vcs.Kind, repositoryPath string) (remote.Remote, bool, error)
}

// Inspector builds Repository values from directories on disk.
type Inspector struct {
	lookup RemoteLookup
	logger *zap.Logger
}

// NewInspector constructs an Inspector. A nil lookup records every repository without a remote.
func NewInspector(lookup RemoteLookup, logger *zap.Logger) *Inspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inspector{lookup: lookup, logger: logger}
}

// Inspect detects the repository rooted at directory. It returns ErrNotRepository
// when no marker is present. Remote lookup is best effort: failures are logged
// and the repository is returned without a remote.
func (inspector *Inspector) Inspect(executionContext context.Context, directory string) (Repository, error) {
	kind, detected := vcs.Detect(directory)
	if !detected {
		return Repository{}, fmt.Errorf(notRepositoryTemplateConstant, directory, ErrNotRepository)
	}

	repository, buildError := New(directory, kind, "")
	if buildError != nil {
		return Repository{}, buildError
	}

	if inspector.lookup == nil {
		return repository, nil
	}

	repositoryRemote, found, lookupError := inspector.lookup.LookupRemote(executionContext, kind, repository.Path)
	if lookupError != nil {
		inspector.logger.Debug(
			remoteLookupFailedLogMessage,
			zap.String(repositoryPathLogFieldConstant, repository.Path),
			zap.String(repositoryKindLogFieldConstant, string(kind)),
			zap.Error(lookupError),
		)
		return repository, nil
	}
	if found {
		repository.Remote = repositoryRemote
	}
	return repository, nil
}
