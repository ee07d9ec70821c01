package execshell_test

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repohq/internal/execshell"
)

const testShellExecutableNameConstant = "sh"

func TestOSCommandRunnerCapturesOutputAndExitCode(testInstance *testing.T) {
	if _, lookupError := exec.LookPath(testShellExecutableNameConstant); lookupError != nil {
		testInstance.Skip("sh is not available")
	}

	testCases := []struct {
		name             string
		script           string
		environment      map[string]string
		expectedOutput   string
		expectedError    string
		expectedExitCode int
	}{
		{
			name:           "successful_command",
			script:         "printf hello",
			expectedOutput: "hello",
		},
		{
			name:             "non_zero_exit",
			script:           "printf broken >&2; exit 3",
			expectedError:    "broken",
			expectedExitCode: 3,
		},
		{
			name:           "environment_merged",
			script:         "printf \"$REPOHQ_TEST_VALUE\"",
			environment:    map[string]string{"REPOHQ_TEST_VALUE": "merged"},
			expectedOutput: "merged",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			runner := execshell.NewOSCommandRunner()
			result, runError := runner.Run(context.Background(), execshell.ShellCommand{
				Name: execshell.CommandName(testShellExecutableNameConstant),
				Details: execshell.CommandDetails{
					Arguments:            []string{"-c", testCase.script},
					WorkingDirectory:     testInstance.TempDir(),
					EnvironmentVariables: testCase.environment,
				},
			})
			require.NoError(testInstance, runError)
			require.Equal(testInstance, testCase.expectedOutput, result.StandardOutput)
			require.Equal(testInstance, testCase.expectedError, result.StandardError)
			require.Equal(testInstance, testCase.expectedExitCode, result.ExitCode)
		})
	}
}

func TestOSCommandRunnerStreamsToProvidedWriters(testInstance *testing.T) {
	if _, lookupError := exec.LookPath(testShellExecutableNameConstant); lookupError != nil {
		testInstance.Skip("sh is not available")
	}

	var streamedOutput bytes.Buffer
	var streamedError bytes.Buffer
	runner := execshell.NewOSCommandRunner()
	result, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Name: execshell.CommandName(testShellExecutableNameConstant),
		Details: execshell.CommandDetails{
			Arguments:      []string{"-c", "printf out; printf err >&2"},
			StandardOutput: &streamedOutput,
			StandardError:  &streamedError,
		},
	})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, "out", streamedOutput.String())
	require.Equal(testInstance, "err", streamedError.String())
	require.Equal(testInstance, "out", result.StandardOutput)
}

func TestOSCommandRunnerReportsCancellation(testInstance *testing.T) {
	if _, lookupError := exec.LookPath(testShellExecutableNameConstant); lookupError != nil {
		testInstance.Skip("sh is not available")
	}

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	runner := execshell.NewOSCommandRunner()
	_, runError := runner.Run(cancelledContext, execshell.ShellCommand{
		Name:    execshell.CommandName(testShellExecutableNameConstant),
		Details: execshell.CommandDetails{Arguments: []string{"-c", "sleep 5"}},
	})
	require.ErrorIs(testInstance, runError, context.Canceled)
}

func TestOSCommandRunnerReportsMissingExecutable(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()
	_, runError := runner.Run(context.Background(), execshell.ShellCommand{Name: "repohq-missing-vcs-tool"})
	require.ErrorIs(testInstance, runError, exec.ErrNotFound)
}
