package vcs

import (
	"context"
	"strings"

	"github.com/temirov/repohq/internal/execshell"
)

const (
	mercurialInitSubcommandConstant  = "init"
	mercurialCloneSubcommandConstant = "clone"
	mercurialPathsSubcommandConstant = "paths"
	mercurialDefaultPathConstant     = "default"
)

// MercurialBackend drives hg.
type MercurialBackend struct {
	commandBackend
}

// NewMercurialBackend constructs an hg backend.
func NewMercurialBackend(executor CommandExecutor, streams Streams) *MercurialBackend {
	return &MercurialBackend{commandBackend: commandBackend{kind: KindMercurial, command: execshell.CommandMercurial, executor: executor, streams: streams}}
}

// Init runs hg init at repositoryPath.
func (backend *MercurialBackend) Init(executionContext context.Context, repositoryPath string) error {
	if parentError := ensureParentDirectory(repositoryPath); parentError != nil {
		return parentError
	}
	return backend.runStreaming(executionContext, "", mercurialInitSubcommandConstant, repositoryPath)
}

// Clone runs hg clone with extraArguments ahead of the source and destination.
func (backend *MercurialBackend) Clone(executionContext context.Context, repositoryPath string, remoteURL string, extraArguments []string) error {
	if parentError := ensureParentDirectory(repositoryPath); parentError != nil {
		return parentError
	}
	arguments := append([]string{mercurialCloneSubcommandConstant}, extraArguments...)
	arguments = append(arguments, remoteURL, repositoryPath)
	return backend.runStreaming(executionContext, "", arguments...)
}

// RemoteURL returns the default path. hg exits non-zero when it is not configured.
func (backend *MercurialBackend) RemoteURL(executionContext context.Context, repositoryPath string) (string, bool, error) {
	executionResult, executionError := backend.run(executionContext, repositoryPath, mercurialPathsSubcommandConstant, mercurialDefaultPathConstant)
	if executionError != nil {
		if isCommandFailure(executionError) {
			return "", false, nil
		}
		return "", false, executionError
	}
	remoteURL := strings.TrimSpace(executionResult.StandardOutput)
	if len(remoteURL) == 0 {
		return "", false, nil
	}
	return remoteURL, true, nil
}

// SetRemoteURL is not supported for hg.
func (backend *MercurialBackend) SetRemoteURL(context.Context, string, string) error {
	return backend.unsupported(OperationSetRemoteURL)
}
