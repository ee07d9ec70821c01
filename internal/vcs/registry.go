package vcs

import (
	"context"
	"fmt"

	"github.com/temirov/repohq/internal/remote"
)

const backendMissingTemplateConstant = "%w: no backend registered for %q"

// Registry selects the backend for a kind.
type Registry struct {
	backends map[Kind]Backend
}

// NewRegistry registers the git, hg, darcs and pijul backends over executor.
func NewRegistry(executor CommandExecutor, streams Streams) *Registry {
	return NewRegistryWithBackends(
		NewGitBackend(executor, streams),
		NewMercurialBackend(executor, streams),
		NewDarcsBackend(executor, streams),
		NewPijulBackend(executor, streams),
	)
}

// NewRegistryWithBackends registers the provided backends; later entries replace earlier ones of the same kind.
func NewRegistryWithBackends(backends ...Backend) *Registry {
	registry := &Registry{backends: make(map[Kind]Backend, len(backends))}
	for _, backend := range backends {
		if backend != nil {
			registry.backends[backend.Kind()] = backend
		}
	}
	return registry
}

// Backend returns the backend for kind.
func (registry *Registry) Backend(kind Kind) (Backend, error) {
	backend, found := registry.backends[kind]
	if !found {
		return nil, fmt.Errorf(backendMissingTemplateConstant, ErrUnknownKind, string(kind))
	}
	return backend, nil
}

// LookupRemote reads the remote of the repository at repositoryPath through the backend for kind.
func (registry *Registry) LookupRemote(executionContext context.Context, kind Kind, repositoryPath string) (remote.Remote, bool, error) {
	backend, backendError := registry.Backend(kind)
	if backendError != nil {
		return "", false, backendError
	}
	remoteURL, found, lookupError := backend.RemoteURL(executionContext, repositoryPath)
	if lookupError != nil || !found {
		return "", false, lookupError
	}
	return remote.Remote(remoteURL), true, nil
}
