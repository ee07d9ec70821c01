package vcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/temirov/repohq/internal/execshell"
)

// Operation names a backend capability.
type Operation string

const (
	// OperationRemoteURL reads the remote a repository tracks.
	OperationRemoteURL Operation = "remote lookup"
	// OperationSetRemoteURL records a remote for a repository.
	OperationSetRemoteURL Operation = "remote configuration"
)

const (
	unsupportedOperationTemplateConstant = "%s does not support %s yet"
	parentDirectoryErrorTemplateConstant = "unable to create parent directory for %s: %w"
	parentDirectoryPermissionsConstant   = 0o755
)

// UnsupportedOperationError reports a capability a backend does not provide.
type UnsupportedOperationError struct {
	Kind      Kind
	Operation Operation
}

// Error describes the missing capability.
func (unsupportedError UnsupportedOperationError) Error() string {
	return fmt.Sprintf(unsupportedOperationTemplateConstant, unsupportedError.Kind, unsupportedError.Operation)
}

// IsUnsupportedOperation reports whether err carries an UnsupportedOperationError.
func IsUnsupportedOperation(err error) bool {
	var unsupportedError UnsupportedOperationError
	return errors.As(err, &unsupportedError)
}

// CommandExecutor runs VCS executables.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Streams receives live output of init and clone commands.
type Streams struct {
	Output io.Writer
	Error  io.Writer
}

// Backend performs repository operations for one kind.
type Backend interface {
	Kind() Kind
	Init(executionContext context.Context, repositoryPath string) error
	Clone(executionContext context.Context, repositoryPath string, remoteURL string, extraArguments []string) error
	// RemoteURL returns the remote the repository tracks; false means none is configured.
	RemoteURL(executionContext context.Context, repositoryPath string) (string, bool, error)
	SetRemoteURL(executionContext context.Context, repositoryPath string, remoteURL string) error
}

// commandBackend holds what every executable-driven backend shares.
type commandBackend struct {
	kind     Kind
	command  execshell.CommandName
	executor CommandExecutor
	streams  Streams
}

func (backend commandBackend) Kind() Kind {
	return backend.kind
}

func (backend commandBackend) run(executionContext context.Context, workingDirectory string, arguments ...string) (execshell.ExecutionResult, error) {
	return backend.executor.Execute(executionContext, execshell.ShellCommand{
		Name: backend.command,
		Details: execshell.CommandDetails{
			Arguments:        arguments,
			WorkingDirectory: workingDirectory,
		},
	})
}

func (backend commandBackend) runStreaming(executionContext context.Context, workingDirectory string, arguments ...string) error {
	_, executionError := backend.executor.Execute(executionContext, execshell.ShellCommand{
		Name: backend.command,
		Details: execshell.CommandDetails{
			Arguments:        arguments,
			WorkingDirectory: workingDirectory,
			StandardOutput:   backend.streams.Output,
			StandardError:    backend.streams.Error,
		},
	})
	return executionError
}

func (backend commandBackend) unsupported(operation Operation) error {
	return UnsupportedOperationError{Kind: backend.kind, Operation: operation}
}

func ensureParentDirectory(repositoryPath string) error {
	parentDirectory := filepath.Dir(repositoryPath)
	if mkdirError := os.MkdirAll(parentDirectory, parentDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(parentDirectoryErrorTemplateConstant, repositoryPath, mkdirError)
	}
	return nil
}

// isCommandFailure reports whether err is a non-zero exit rather than a launch failure.
func isCommandFailure(err error) bool {
	var failedError execshell.CommandFailedError
	return errors.As(err, &failedError)
}
