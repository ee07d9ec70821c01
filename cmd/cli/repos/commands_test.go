package repos_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/repohq/cmd/cli/repos"
	"github.com/temirov/repohq/internal/execshell"
	"github.com/temirov/repohq/internal/store"
	"github.com/temirov/repohq/internal/vcs"
	"github.com/temirov/repohq/internal/workspace"
)

const (
	testDirectoryPermissionsConstant = 0o755
	testBareQueryConstant            = "peco/peco"
	testSourcesDirectoryConstant     = "src"
	testAlphaRepositoryConstant      = "alpha"
	testBravoRepositoryConstant      = "bravo"
	testDefaultHostConstant          = "github.com"
	testCloneDestinationConstant     = "custom"
)

type fakeBackend struct {
	kind           vcs.Kind
	initPaths      []string
	clonePaths     []string
	cloneArguments [][]string
	remoteURLs     []string
}

func (backend *fakeBackend) Kind() vcs.Kind { return backend.kind }

func (backend *fakeBackend) Init(_ context.Context, repositoryPath string) error {
	backend.initPaths = append(backend.initPaths, repositoryPath)
	return os.MkdirAll(filepath.Join(repositoryPath, backend.kind.Marker()), testDirectoryPermissionsConstant)
}

func (backend *fakeBackend) Clone(_ context.Context, repositoryPath string, _ string, extraArguments []string) error {
	backend.clonePaths = append(backend.clonePaths, repositoryPath)
	backend.cloneArguments = append(backend.cloneArguments, extraArguments)
	return os.MkdirAll(filepath.Join(repositoryPath, backend.kind.Marker()), testDirectoryPermissionsConstant)
}

func (backend *fakeBackend) RemoteURL(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (backend *fakeBackend) SetRemoteURL(_ context.Context, _ string, remoteURL string) error {
	backend.remoteURLs = append(backend.remoteURLs, remoteURL)
	return nil
}

type recordingExecutor struct {
	commands []execshell.ShellCommand
}

func (executor *recordingExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.commands = append(executor.commands, command)
	return execshell.ExecutionResult{}, nil
}

type commandFixture struct {
	root         string
	store        *store.MemoryStore
	backends     map[vcs.Kind]*fakeBackend
	executor     *recordingExecutor
	dependencies repos.CommandDependencies
}

func newCommandFixture(testInstance *testing.T) *commandFixture {
	testInstance.Helper()
	root, evalError := filepath.EvalSymlinks(testInstance.TempDir())
	require.NoError(testInstance, evalError)

	fixture := &commandFixture{
		root: root,
		store: store.NewMemoryStore(store.Config{
			RootDirectory:         root,
			DefaultHost:           testDefaultHostConstant,
			DefaultVersionControl: vcs.KindGit,
		}),
		backends: map[vcs.Kind]*fakeBackend{},
		executor: &recordingExecutor{},
	}
	registered := make([]vcs.Backend, 0, len(vcs.Kinds()))
	for _, kind := range vcs.Kinds() {
		fixture.backends[kind] = &fakeBackend{kind: kind}
		registered = append(registered, fixture.backends[kind])
	}
	fixture.dependencies = repos.CommandDependencies{
		StoreProvider: func() (store.Store, error) {
			return fixture.store, nil
		},
		Executor: fixture.executor,
		Backends: vcs.NewRegistryWithBackends(registered...),
	}
	return fixture
}

func (fixture *commandFixture) execute(testInstance *testing.T, builder repos.CommandBuilder, arguments ...string) (string, string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	standardOutput := &bytes.Buffer{}
	standardError := &bytes.Buffer{}
	command.SetOut(standardOutput)
	command.SetErr(standardError)
	command.SetArgs(append([]string{}, arguments...))
	executionError := command.ExecuteContext(context.Background())
	return standardOutput.String(), standardError.String(), executionError
}

func (fixture *commandFixture) importSources(testInstance *testing.T) string {
	testInstance.Helper()
	sources := filepath.Join(fixture.root, testSourcesDirectoryConstant)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(sources, testAlphaRepositoryConstant, vcs.KindGit.Marker()), testDirectoryPermissionsConstant))
	require.NoError(testInstance, os.MkdirAll(filepath.Join(sources, testBravoRepositoryConstant, vcs.KindMercurial.Marker()), testDirectoryPermissionsConstant))

	_, _, importError := fixture.execute(testInstance, &repos.ImportCommandBuilder{Dependencies: fixture.dependencies}, sources)
	require.NoError(testInstance, importError)
	return sources
}

func TestNewCommandCreatesAndRecordsRepository(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedKind  vcs.Kind
		expectedURL   string
		expectedSaves int
	}{
		{
			name:          "default_backend_https",
			arguments:     []string{testBareQueryConstant},
			expectedKind:  vcs.KindGit,
			expectedURL:   "https://github.com/peco/peco.git",
			expectedSaves: 1,
		},
		{
			name:          "selected_backend_ssh",
			arguments:     []string{"--vcs", "HG", "--ssh", testBareQueryConstant},
			expectedKind:  vcs.KindMercurial,
			expectedURL:   "git@github.com:peco/peco.git",
			expectedSaves: 1,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			fixture := newCommandFixture(subTest)
			_, _, executionError := fixture.execute(subTest, &repos.NewCommandBuilder{Dependencies: fixture.dependencies}, testCase.arguments...)
			require.NoError(subTest, executionError)

			expectedPath := filepath.Join(fixture.root, testDefaultHostConstant, "peco", "peco")
			backend := fixture.backends[testCase.expectedKind]
			require.Equal(subTest, []string{expectedPath}, backend.initPaths)
			require.Equal(subTest, []string{testCase.expectedURL}, backend.remoteURLs)
			require.Equal(subTest, testCase.expectedSaves, fixture.store.Saves)
			require.Len(subTest, fixture.store.Cache.Repositories, 1)
			require.Equal(subTest, expectedPath, fixture.store.Cache.Repositories[0].Path)
			require.Equal(subTest, testCase.expectedKind, fixture.store.Cache.Repositories[0].Kind)
		})
	}
}

func TestNewCommandSkipsExistingRepository(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	existingPath := filepath.Join(fixture.root, testDefaultHostConstant, "peco", "peco")
	require.NoError(testInstance, os.MkdirAll(filepath.Join(existingPath, vcs.KindGit.Marker()), testDirectoryPermissionsConstant))

	_, _, executionError := fixture.execute(testInstance, &repos.NewCommandBuilder{Dependencies: fixture.dependencies}, testBareQueryConstant)
	require.NoError(testInstance, executionError)
	require.Empty(testInstance, fixture.backends[vcs.KindGit].initPaths)
	require.Zero(testInstance, fixture.store.Saves)
}

func TestNewCommandRejectsUnknownBackend(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	_, _, executionError := fixture.execute(testInstance, &repos.NewCommandBuilder{Dependencies: fixture.dependencies}, "--vcs", "svn", testBareQueryConstant)
	require.ErrorContains(testInstance, executionError, "svn")
	require.Zero(testInstance, fixture.store.Saves)
}

func TestCloneCommandPassesDestinationAndExtraArguments(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	destination := filepath.Join(fixture.root, testCloneDestinationConstant)

	_, _, executionError := fixture.execute(
		testInstance,
		&repos.CloneCommandBuilder{Dependencies: fixture.dependencies},
		testBareQueryConstant, destination, "--", "--depth", "1",
	)
	require.NoError(testInstance, executionError)

	backend := fixture.backends[vcs.KindGit]
	require.Equal(testInstance, []string{destination}, backend.clonePaths)
	require.Equal(testInstance, [][]string{{"--depth", "1"}}, backend.cloneArguments)
	require.Len(testInstance, fixture.store.Cache.Repositories, 1)
	require.Equal(testInstance, "https://github.com/peco/peco.git", fixture.store.Cache.Repositories[0].Remote.String())
}

func TestCloneCommandValidatesPositionalArguments(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "missing_query", arguments: nil},
		{name: "too_many_positionals", arguments: []string{testBareQueryConstant, "first", "second"}},
		{name: "extra_arguments_only", arguments: []string{"--", "--depth", "1"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			fixture := newCommandFixture(subTest)
			_, _, executionError := fixture.execute(subTest, &repos.CloneCommandBuilder{Dependencies: fixture.dependencies}, testCase.arguments...)
			require.Error(subTest, executionError)
			require.Empty(subTest, fixture.backends[vcs.KindGit].clonePaths)
		})
	}
}

func TestAddCommandDefaultsToWorkingDirectory(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	repositoryPath := filepath.Join(fixture.root, testAlphaRepositoryConstant)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, vcs.KindDarcs.Marker()), testDirectoryPermissionsConstant))

	fixture.dependencies.VerboseProvider = func() bool { return true }
	builder := &repos.AddCommandBuilder{
		Dependencies: fixture.dependencies,
		WorkingDirectoryProvider: func() (string, error) {
			return repositoryPath, nil
		},
	}
	_, standardError, executionError := fixture.execute(testInstance, builder)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, standardError, "Add new entry: "+repositoryPath)
	require.Len(testInstance, fixture.store.Cache.Repositories, 1)
	require.Equal(testInstance, vcs.KindDarcs, fixture.store.Cache.Repositories[0].Kind)
}

func TestAddCommandReportsNonRepositories(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	plainDirectory := filepath.Join(fixture.root, "plain")
	require.NoError(testInstance, os.MkdirAll(plainDirectory, testDirectoryPermissionsConstant))

	fixture.dependencies.VerboseProvider = func() bool { return true }
	_, standardError, executionError := fixture.execute(testInstance, &repos.AddCommandBuilder{Dependencies: fixture.dependencies}, plainDirectory)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, standardError, "Ignored: "+plainDirectory+" is not a repository")
	require.Empty(testInstance, fixture.store.Cache.Repositories)
	require.True(testInstance, fixture.store.Cache.Exists)
}

func TestImportCommandRequiresRoots(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	_, _, executionError := fixture.execute(testInstance, &repos.ImportCommandBuilder{Dependencies: fixture.dependencies})
	require.ErrorIs(testInstance, executionError, workspace.ErrNoImportRoots)
	require.Zero(testInstance, fixture.store.Saves)
}

func TestImportCommandHonorsDepth(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	nestedRepository := filepath.Join(fixture.root, "one", "two", testAlphaRepositoryConstant)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(nestedRepository, vcs.KindGit.Marker()), testDirectoryPermissionsConstant))

	_, _, shallowError := fixture.execute(testInstance, &repos.ImportCommandBuilder{Dependencies: fixture.dependencies}, "--depth", "2", fixture.root)
	require.NoError(testInstance, shallowError)
	require.Empty(testInstance, fixture.store.Cache.Repositories)

	_, _, deepError := fixture.execute(testInstance, &repos.ImportCommandBuilder{Dependencies: fixture.dependencies}, "--depth", "3", fixture.root)
	require.NoError(testInstance, deepError)
	require.Len(testInstance, fixture.store.Cache.Repositories, 1)
}

func TestListCommandFormats(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	sources := fixture.importSources(testInstance)
	alphaPath := filepath.Join(sources, testAlphaRepositoryConstant)
	bravoPath := filepath.Join(sources, testBravoRepositoryConstant)

	expectedEntries := []map[string]string{
		{"name": testAlphaRepositoryConstant, "path": alphaPath, "vcs": "git"},
		{"name": testBravoRepositoryConstant, "path": bravoPath, "vcs": "hg"},
	}

	testCases := []struct {
		name      string
		arguments []string
		assertion func(testing.TB, string)
	}{
		{
			name: "default_fullpath",
			assertion: func(assertionTarget testing.TB, output string) {
				require.Equal(assertionTarget, alphaPath+"\n"+bravoPath+"\n", output)
			},
		},
		{
			name:      "name",
			arguments: []string{"--format", "name"},
			assertion: func(assertionTarget testing.TB, output string) {
				require.Equal(assertionTarget, testAlphaRepositoryConstant+"\n"+testBravoRepositoryConstant+"\n", output)
			},
		},
		{
			name:      "json",
			arguments: []string{"--format", "json"},
			assertion: func(assertionTarget testing.TB, output string) {
				var decoded []map[string]string
				require.NoError(assertionTarget, json.Unmarshal([]byte(output), &decoded))
				require.Equal(assertionTarget, expectedEntries, decoded)
			},
		},
		{
			name:      "yaml",
			arguments: []string{"--format", "YAML"},
			assertion: func(assertionTarget testing.TB, output string) {
				var decoded []map[string]string
				require.NoError(assertionTarget, yaml.Unmarshal([]byte(output), &decoded))
				require.Equal(assertionTarget, expectedEntries, decoded)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			output, _, executionError := fixture.execute(subTest, &repos.ListCommandBuilder{Dependencies: fixture.dependencies}, testCase.arguments...)
			require.NoError(subTest, executionError)
			testCase.assertion(subTest, output)
		})
	}
}

func TestListCommandRejectsUnknownFormat(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	_, _, executionError := fixture.execute(testInstance, &repos.ListCommandBuilder{Dependencies: fixture.dependencies}, "--format", "table")
	require.ErrorContains(testInstance, executionError, "table")
}

func TestListCommandRequiresCache(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	_, _, executionError := fixture.execute(testInstance, &repos.ListCommandBuilder{Dependencies: fixture.dependencies})
	require.ErrorIs(testInstance, executionError, workspace.ErrCacheNotInitialized)
}

func TestRefreshCommandDropsVanishedRepositories(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	sources := fixture.importSources(testInstance)
	require.NoError(testInstance, os.RemoveAll(filepath.Join(sources, testBravoRepositoryConstant)))

	fixture.dependencies.VerboseProvider = func() bool { return true }
	_, standardError, executionError := fixture.execute(testInstance, &repos.RefreshCommandBuilder{Dependencies: fixture.dependencies}, "--sort")
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, standardError, "Dropped: "+filepath.Join(sources, testBravoRepositoryConstant))

	remaining := make([]string, 0, len(fixture.store.Cache.Repositories))
	for _, recordedRepository := range fixture.store.Cache.Repositories {
		remaining = append(remaining, recordedRepository.Name)
	}
	require.Equal(testInstance, []string{testAlphaRepositoryConstant}, remaining)
}

func TestRefreshCommandKeepsCacheWhenInterrupted(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	sources := fixture.importSources(testInstance)
	require.NoError(testInstance, os.RemoveAll(filepath.Join(sources, testBravoRepositoryConstant)))
	cachedBefore := len(fixture.store.Cache.Repositories)

	command, buildError := (&repos.RefreshCommandBuilder{Dependencies: fixture.dependencies}).Build()
	require.NoError(testInstance, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{})

	interruptedContext, interrupt := context.WithCancel(context.Background())
	interrupt()
	require.ErrorIs(testInstance, command.ExecuteContext(interruptedContext), context.Canceled)
	require.Len(testInstance, fixture.store.Cache.Repositories, cachedBefore)
}

func TestForEachCommand(testInstance *testing.T) {
	testCases := []struct {
		name             string
		arguments        []string
		expectedOutput   []string
		expectedCommands int
		expectedArgs     []string
	}{
		{
			name:             "dry_run_prints_commands",
			arguments:        []string{"-n", "git", "status", "--short"},
			expectedOutput:   []string{"+ cd %s && git status --short", "+ cd %s && git status --short"},
			expectedCommands: 0,
		},
		{
			name:             "flags_after_command_are_forwarded",
			arguments:        []string{"git", "log", "-n", "1"},
			expectedCommands: 2,
			expectedArgs:     []string{"log", "-n", "1"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			fixture := newCommandFixture(subTest)
			sources := fixture.importSources(subTest)
			repositoryPaths := []string{
				filepath.Join(sources, testAlphaRepositoryConstant),
				filepath.Join(sources, testBravoRepositoryConstant),
			}

			output, _, executionError := fixture.execute(subTest, &repos.ForEachCommandBuilder{Dependencies: fixture.dependencies}, testCase.arguments...)
			require.NoError(subTest, executionError)
			require.Len(subTest, fixture.executor.commands, testCase.expectedCommands)

			if len(testCase.expectedOutput) > 0 {
				expectedLines := make([]string, 0, len(testCase.expectedOutput))
				for index, template := range testCase.expectedOutput {
					expectedLines = append(expectedLines, strings.Replace(template, "%s", repositoryPaths[index], 1))
				}
				require.Equal(subTest, strings.Join(expectedLines, "\n")+"\n", output)
			}
			for index, executedCommand := range fixture.executor.commands {
				require.Equal(subTest, execshell.CommandGit, executedCommand.Name)
				require.Equal(subTest, testCase.expectedArgs, executedCommand.Details.Arguments)
				require.Equal(subTest, repositoryPaths[index], executedCommand.Details.WorkingDirectory)
			}
		})
	}
}

func TestCommandsRequireStoreProvider(testInstance *testing.T) {
	failingProvider := errors.New("store unavailable")
	testCases := []struct {
		name          string
		dependencies  repos.CommandDependencies
		expectedError string
	}{
		{
			name:          "missing_provider",
			dependencies:  repos.CommandDependencies{},
			expectedError: "store provider",
		},
		{
			name: "provider_error",
			dependencies: repos.CommandDependencies{
				StoreProvider: func() (store.Store, error) { return nil, failingProvider },
			},
			expectedError: failingProvider.Error(),
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			fixture := newCommandFixture(subTest)
			_, _, executionError := fixture.execute(subTest, &repos.RefreshCommandBuilder{Dependencies: testCase.dependencies})
			require.ErrorContains(subTest, executionError, testCase.expectedError)
		})
	}
}

func TestCommandBuildersRegisterEveryCommand(testInstance *testing.T) {
	parent := &cobra.Command{Use: "repohq"}
	require.NoError(testInstance, repos.AddCommands(parent, repos.CommandDependencies{}))

	registered := make([]string, 0, len(parent.Commands()))
	for _, command := range parent.Commands() {
		registered = append(registered, command.Name())
	}
	require.ElementsMatch(testInstance, []string{"new", "clone", "add", "import", "refresh", "list", "foreach"}, registered)
}
