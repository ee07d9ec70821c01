package vcs

import (
	"context"
	"fmt"
	"os"

	"github.com/temirov/repohq/internal/execshell"
)

const (
	pijulInitSubcommandConstant  = "init"
	pijulCloneSubcommandConstant = "clone"
	pijulDirectoryErrorTemplate  = "unable to create pijul repository directory %s: %w"
)

// PijulBackend drives pijul.
type PijulBackend struct {
	commandBackend
}

// NewPijulBackend constructs a pijul backend.
func NewPijulBackend(executor CommandExecutor, streams Streams) *PijulBackend {
	return &PijulBackend{commandBackend: commandBackend{kind: KindPijul, command: execshell.CommandPijul, executor: executor, streams: streams}}
}

// Init creates repositoryPath and runs pijul init inside it.
func (backend *PijulBackend) Init(executionContext context.Context, repositoryPath string) error {
	if mkdirError := os.MkdirAll(repositoryPath, parentDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(pijulDirectoryErrorTemplate, repositoryPath, mkdirError)
	}
	return backend.runStreaming(executionContext, repositoryPath, pijulInitSubcommandConstant)
}

// Clone runs pijul clone with extraArguments ahead of the source and destination.
func (backend *PijulBackend) Clone(executionContext context.Context, repositoryPath string, remoteURL string, extraArguments []string) error {
	if parentError := ensureParentDirectory(repositoryPath); parentError != nil {
		return parentError
	}
	arguments := append([]string{pijulCloneSubcommandConstant}, extraArguments...)
	arguments = append(arguments, remoteURL, repositoryPath)
	return backend.runStreaming(executionContext, "", arguments...)
}

// RemoteURL is not supported for pijul.
func (backend *PijulBackend) RemoteURL(context.Context, string) (string, bool, error) {
	return "", false, backend.unsupported(OperationRemoteURL)
}

// SetRemoteURL is not supported for pijul.
func (backend *PijulBackend) SetRemoteURL(context.Context, string, string) error {
	return backend.unsupported(OperationSetRemoteURL)
}
