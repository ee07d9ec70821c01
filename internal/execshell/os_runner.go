package execshell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"maps"
	"os"
	"os/exec"
	"slices"
)

const environmentAssignmentSeparatorConstant = "="

// OSCommandRunner launches version control executables as child processes.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run starts the command and waits for it. A non-zero exit is reported through
// ExecutionResult.ExitCode; only launch failures and cancellation return an error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	details := command.Details
	process := exec.CommandContext(executionContext, string(command.Name), slices.Clone(details.Arguments)...)
	process.Dir = details.WorkingDirectory
	process.Env = mergeEnvironment(details.EnvironmentVariables)
	if len(details.StandardInput) > 0 {
		process.Stdin = bytes.NewReader(details.StandardInput)
	}

	var capturedOutput, capturedError bytes.Buffer
	process.Stdout = captureInto(&capturedOutput, details.StandardOutput)
	process.Stderr = captureInto(&capturedError, details.StandardError)

	runError := process.Run()
	result := ExecutionResult{
		StandardOutput: capturedOutput.String(),
		StandardError:  capturedError.String(),
	}
	if runError == nil {
		return result, nil
	}
	if contextError := executionContext.Err(); contextError != nil {
		return ExecutionResult{}, contextError
	}

	var exitError *exec.ExitError
	if !errors.As(runError, &exitError) {
		return ExecutionResult{}, runError
	}
	result.ExitCode = exitError.ExitCode()
	return result, nil
}

// mergeEnvironment returns nil when there is nothing to add so the child inherits the parent environment.
func mergeEnvironment(overrides map[string]string) []string {
	if len(overrides) == 0 {
		return nil
	}
	environment := os.Environ()
	for _, key := range slices.Sorted(maps.Keys(overrides)) {
		environment = append(environment, key+environmentAssignmentSeparatorConstant+overrides[key])
	}
	return environment
}

func captureInto(buffer *bytes.Buffer, passthrough io.Writer) io.Writer {
	if passthrough == nil {
		return buffer
	}
	return io.MultiWriter(buffer, passthrough)
}
