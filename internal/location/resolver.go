// Package location maps repository references onto the workspace directory layout.
package location

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/repohq/internal/reference"
)

const (
	rootDirectoryRequiredMessageConstant = "workspace root directory is not configured"
	emptyHostMessageConstant             = "repository reference has no host and no default host is configured"
	emptyPathMessageConstant             = "repository reference has no repository path"
	resolveErrorTemplateConstant         = "unable to place %q in the workspace: %w"
	traversalMessageConstant             = "repository path must not contain . or .. segments"
	pathSeparatorConstant                = "/"
	currentDirectorySegmentConstant      = "."
	parentDirectorySegmentConstant       = ".."
)

// ErrRootDirectoryRequired indicates a resolver constructed without a root.
var ErrRootDirectoryRequired = errors.New(rootDirectoryRequiredMessageConstant)

// ErrEmptyHost indicates that neither the reference nor the resolver names a host.
var ErrEmptyHost = errors.New(emptyHostMessageConstant)

// ErrEmptyPath indicates a reference without a repository path.
var ErrEmptyPath = errors.New(emptyPathMessageConstant)

// ErrPathTraversal indicates a repository path that would escape its host directory.
var ErrPathTraversal = errors.New(traversalMessageConstant)

// Resolver places repositories at <root>/<host>/<path>.
type Resolver struct {
	rootDirectory string
	defaultHost   string
}

// NewResolver constructs a Resolver for the given root and fallback host.
func NewResolver(rootDirectory string, defaultHost string) Resolver {
	return Resolver{rootDirectory: rootDirectory, defaultHost: defaultHost}
}

// Resolve returns the local directory for a reference. The host is taken from
// the reference when it names one and from the default host otherwise, so every
// shape of the same repository lands in the same directory.
func (resolver Resolver) Resolve(parsedReference reference.Reference) (string, error) {
	if len(strings.TrimSpace(resolver.rootDirectory)) == 0 {
		return "", fmt.Errorf(resolveErrorTemplateConstant, parsedReference.String(), ErrRootDirectoryRequired)
	}

	host, hasHost := parsedReference.Host()
	if !hasHost {
		host = resolver.defaultHost
	}
	if len(host) == 0 {
		return "", fmt.Errorf(resolveErrorTemplateConstant, parsedReference.String(), ErrEmptyHost)
	}

	repositoryPath := parsedReference.RepositoryPath()
	if len(repositoryPath) == 0 {
		return "", fmt.Errorf(resolveErrorTemplateConstant, parsedReference.String(), ErrEmptyPath)
	}

	repositorySegments := strings.Split(repositoryPath, pathSeparatorConstant)
	for _, segment := range append([]string{host}, repositorySegments...) {
		if segment == currentDirectorySegmentConstant || segment == parentDirectorySegmentConstant {
			return "", fmt.Errorf(resolveErrorTemplateConstant, parsedReference.String(), ErrPathTraversal)
		}
	}

	pathElements := append([]string{resolver.rootDirectory, host}, repositorySegments...)
	return filepath.Join(pathElements...), nil
}
