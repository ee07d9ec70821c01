package vcs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repohq/internal/execshell"
	"github.com/temirov/repohq/internal/vcs"
)

const (
	testRemoteURLConstant          = "https://github.com/peco/peco.git"
	testRepositoryNameConstant     = "peco"
	testCloneDepthArgumentConstant = "--depth=1"
)

type recordingExecutor struct {
	commands []execshell.ShellCommand
	result   execshell.ExecutionResult
	err      error
}

func (executor *recordingExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.commands = append(executor.commands, command)
	return executor.result, executor.err
}

func TestBackendCommandLines(testInstance *testing.T) {
	workspaceDirectory := testInstance.TempDir()
	repositoryPath := filepath.Join(workspaceDirectory, "github.com", "peco", testRepositoryNameConstant)
	extraArguments := []string{testCloneDepthArgumentConstant}

	testCases := []struct {
		name              string
		construct         func(vcs.CommandExecutor) vcs.Backend
		operation         func(context.Context, vcs.Backend) error
		expectedName      execshell.CommandName
		expectedArguments []string
		expectedDirectory string
	}{
		{
			name:              "git_init",
			construct:         func(executor vcs.CommandExecutor) vcs.Backend { return vcs.NewGitBackend(executor, vcs.Streams{}) },
			operation:         func(ctx context.Context, backend vcs.Backend) error { return backend.Init(ctx, repositoryPath) },
			expectedName:      execshell.CommandGit,
			expectedArguments: []string{"init", repositoryPath},
		},
		{
			name:      "git_clone",
			construct: func(executor vcs.CommandExecutor) vcs.Backend { return vcs.NewGitBackend(executor, vcs.Streams{}) },
			operation: func(ctx context.Context, backend vcs.Backend) error {
				return backend.Clone(ctx, repositoryPath, testRemoteURLConstant, extraArguments)
			},
			expectedName:      execshell.CommandGit,
			expectedArguments: []string{"clone", testRemoteURLConstant, repositoryPath, testCloneDepthArgumentConstant},
		},
		{
			name:      "git_set_remote_without_repository",
			construct: func(executor vcs.CommandExecutor) vcs.Backend { return vcs.NewGitBackend(executor, vcs.Streams{}) },
			operation: func(ctx context.Context, backend vcs.Backend) error {
				return backend.SetRemoteURL(ctx, repositoryPath, testRemoteURLConstant)
			},
			expectedName:      execshell.CommandGit,
			expectedArguments: []string{"remote", "add", "origin", testRemoteURLConstant},
			expectedDirectory: repositoryPath,
		},
		{
			name: "hg_init",
			construct: func(executor vcs.CommandExecutor) vcs.Backend {
				return vcs.NewMercurialBackend(executor, vcs.Streams{})
			},
			operation:         func(ctx context.Context, backend vcs.Backend) error { return backend.Init(ctx, repositoryPath) },
			expectedName:      execshell.CommandMercurial,
			expectedArguments: []string{"init", repositoryPath},
		},
		{
			name: "hg_clone",
			construct: func(executor vcs.CommandExecutor) vcs.Backend {
				return vcs.NewMercurialBackend(executor, vcs.Streams{})
			},
			operation: func(ctx context.Context, backend vcs.Backend) error {
				return backend.Clone(ctx, repositoryPath, testRemoteURLConstant, extraArguments)
			},
			expectedName:      execshell.CommandMercurial,
			expectedArguments: []string{"clone", testCloneDepthArgumentConstant, testRemoteURLConstant, repositoryPath},
		},
		{
			name:              "darcs_init",
			construct:         func(executor vcs.CommandExecutor) vcs.Backend { return vcs.NewDarcsBackend(executor, vcs.Streams{}) },
			operation:         func(ctx context.Context, backend vcs.Backend) error { return backend.Init(ctx, repositoryPath) },
			expectedName:      execshell.CommandDarcs,
			expectedArguments: []string{"initialize", repositoryPath},
		},
		{
			name:      "darcs_clone",
			construct: func(executor vcs.CommandExecutor) vcs.Backend { return vcs.NewDarcsBackend(executor, vcs.Streams{}) },
			operation: func(ctx context.Context, backend vcs.Backend) error {
				return backend.Clone(ctx, repositoryPath, testRemoteURLConstant, nil)
			},
			expectedName:      execshell.CommandDarcs,
			expectedArguments: []string{"clone", testRemoteURLConstant, repositoryPath},
		},
		{
			name:              "pijul_init",
			construct:         func(executor vcs.CommandExecutor) vcs.Backend { return vcs.NewPijulBackend(executor, vcs.Streams{}) },
			operation:         func(ctx context.Context, backend vcs.Backend) error { return backend.Init(ctx, repositoryPath) },
			expectedName:      execshell.CommandPijul,
			expectedArguments: []string{"init"},
			expectedDirectory: repositoryPath,
		},
		{
			name:      "pijul_clone",
			construct: func(executor vcs.CommandExecutor) vcs.Backend { return vcs.NewPijulBackend(executor, vcs.Streams{}) },
			operation: func(ctx context.Context, backend vcs.Backend) error {
				return backend.Clone(ctx, repositoryPath, testRemoteURLConstant, extraArguments)
			},
			expectedName:      execshell.CommandPijul,
			expectedArguments: []string{"clone", testCloneDepthArgumentConstant, testRemoteURLConstant, repositoryPath},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingExecutor{}
			backend := testCase.construct(executor)

			require.NoError(testInstance, testCase.operation(context.Background(), backend))
			require.Len(testInstance, executor.commands, 1)
			require.Equal(testInstance, testCase.expectedName, executor.commands[0].Name)
			require.Equal(testInstance, testCase.expectedArguments, executor.commands[0].Details.Arguments)
			require.Equal(testInstance, testCase.expectedDirectory, executor.commands[0].Details.WorkingDirectory)
		})
	}
}

func TestCloneCreatesParentDirectory(testInstance *testing.T) {
	repositoryPath := filepath.Join(testInstance.TempDir(), "gitlab.com", "group", testRepositoryNameConstant)
	executor := &recordingExecutor{}

	require.NoError(testInstance, vcs.NewMercurialBackend(executor, vcs.Streams{}).Clone(context.Background(), repositoryPath, testRemoteURLConstant, nil))

	parentInfo, statError := os.Stat(filepath.Dir(repositoryPath))
	require.NoError(testInstance, statError)
	require.True(testInstance, parentInfo.IsDir())
}

func TestCloneStreamsOutput(testInstance *testing.T) {
	executor := &recordingExecutor{}
	streams := vcs.Streams{Output: os.Stdout, Error: os.Stderr}
	repositoryPath := filepath.Join(testInstance.TempDir(), testRepositoryNameConstant)

	require.NoError(testInstance, vcs.NewGitBackend(executor, streams).Clone(context.Background(), repositoryPath, testRemoteURLConstant, nil))
	require.Len(testInstance, executor.commands, 1)
	require.Equal(testInstance, os.Stdout, executor.commands[0].Details.StandardOutput)
	require.Equal(testInstance, os.Stderr, executor.commands[0].Details.StandardError)
}

func TestMercurialRemoteURL(testInstance *testing.T) {
	failedCommand := execshell.ShellCommand{Name: execshell.CommandMercurial}

	testCases := []struct {
		name          string
		executor      *recordingExecutor
		expectedURL   string
		expectedFound bool
		expectError   bool
	}{
		{
			name:          "configured",
			executor:      &recordingExecutor{result: execshell.ExecutionResult{StandardOutput: testRemoteURLConstant + "\n"}},
			expectedURL:   testRemoteURLConstant,
			expectedFound: true,
		},
		{
			name:     "blank_output",
			executor: &recordingExecutor{result: execshell.ExecutionResult{StandardOutput: "  \n"}},
		},
		{
			name:     "not_configured",
			executor: &recordingExecutor{err: execshell.CommandFailedError{Command: failedCommand, Result: execshell.ExecutionResult{ExitCode: 1}}},
		},
		{
			name:        "launch_failure",
			executor:    &recordingExecutor{err: execshell.CommandExecutionError{Command: failedCommand, Cause: os.ErrNotExist}},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			backend := vcs.NewMercurialBackend(testCase.executor, vcs.Streams{})
			remoteURL, found, lookupError := backend.RemoteURL(context.Background(), "/srv/hg/repository")
			if testCase.expectError {
				require.Error(testInstance, lookupError)
				return
			}
			require.NoError(testInstance, lookupError)
			require.Equal(testInstance, testCase.expectedFound, found)
			require.Equal(testInstance, testCase.expectedURL, remoteURL)
			require.Equal(testInstance, []string{"paths", "default"}, testCase.executor.commands[0].Details.Arguments)
			require.Equal(testInstance, "/srv/hg/repository", testCase.executor.commands[0].Details.WorkingDirectory)
		})
	}
}

func TestDarcsRemoteURLReadsDefaultRepository(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	backend := vcs.NewDarcsBackend(&recordingExecutor{}, vcs.Streams{})

	_, found, lookupError := backend.RemoteURL(context.Background(), repositoryPath)
	require.NoError(testInstance, lookupError)
	require.False(testInstance, found)

	preferencesDirectory := filepath.Join(repositoryPath, "_darcs", "prefs")
	require.NoError(testInstance, os.MkdirAll(preferencesDirectory, testMarkerPermissions))
	require.NoError(testInstance, os.WriteFile(filepath.Join(preferencesDirectory, "defaultrepo"), []byte("\nhttps://hub.darcs.net/user/project\n"), 0o600))

	remoteURL, found, lookupError := backend.RemoteURL(context.Background(), repositoryPath)
	require.NoError(testInstance, lookupError)
	require.True(testInstance, found)
	require.Equal(testInstance, "https://hub.darcs.net/user/project", remoteURL)
}

func TestUnsupportedOperations(testInstance *testing.T) {
	executor := &recordingExecutor{}
	testCases := []struct {
		name      string
		operation func() error
		kind      vcs.Kind
	}{
		{
			name: "hg_set_remote",
			operation: func() error {
				return vcs.NewMercurialBackend(executor, vcs.Streams{}).SetRemoteURL(context.Background(), "", testRemoteURLConstant)
			},
			kind: vcs.KindMercurial,
		},
		{
			name: "darcs_set_remote",
			operation: func() error {
				return vcs.NewDarcsBackend(executor, vcs.Streams{}).SetRemoteURL(context.Background(), "", testRemoteURLConstant)
			},
			kind: vcs.KindDarcs,
		},
		{
			name: "pijul_remote_lookup",
			operation: func() error {
				_, _, lookupError := vcs.NewPijulBackend(executor, vcs.Streams{}).RemoteURL(context.Background(), "")
				return lookupError
			},
			kind: vcs.KindPijul,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			operationError := testCase.operation()
			require.True(testInstance, vcs.IsUnsupportedOperation(operationError))

			var unsupportedError vcs.UnsupportedOperationError
			require.ErrorAs(testInstance, operationError, &unsupportedError)
			require.Equal(testInstance, testCase.kind, unsupportedError.Kind)
		})
	}
	require.Empty(testInstance, executor.commands)
}
