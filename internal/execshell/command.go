package execshell

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// CommandName identifies an executable launched by the executor.
type CommandName string

const (
	// CommandGit runs the git executable.
	CommandGit CommandName = "git"
	// CommandMercurial runs the hg executable.
	CommandMercurial CommandName = "hg"
	// CommandDarcs runs the darcs executable.
	CommandDarcs CommandName = "darcs"
	// CommandPijul runs the pijul executable.
	CommandPijul CommandName = "pijul"
)

const (
	commandFailedErrorTemplateConstant      = "%s exited with code %d"
	commandFailedStandardErrorTemplate      = "%s: %s"
	commandExecutionErrorTemplateConstant   = "%s could not be executed: %v"
	commandDisplayArgumentSeparatorConstant = " "
)

// CommandDetails describes how a command is launched.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
	// StandardOutput and StandardError receive a live copy of the process streams when set.
	StandardOutput io.Writer
	StandardError  io.Writer
}

// ShellCommand couples an executable with its launch details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// String renders the command line for diagnostics.
func (command ShellCommand) String() string {
	commandParts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(commandParts, commandDisplayArgumentSeparatorConstant)
}

// ExecutionResult captures the captured output and exit code of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner launches processes.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a process that exited with a non-zero status.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failing command and its standard error output.
func (failure CommandFailedError) Error() string {
	baseMessage := fmt.Sprintf(commandFailedErrorTemplateConstant, failure.Command.String(), failure.Result.ExitCode)
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmedStandardError) == 0 {
		return baseMessage
	}
	return fmt.Sprintf(commandFailedStandardErrorTemplate, baseMessage, trimmedStandardError)
}

// CommandExecutionError reports a process that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the command and the underlying failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, failure.Command.String(), failure.Cause)
}

// Unwrap exposes the underlying failure.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}
