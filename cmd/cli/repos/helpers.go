// Package repos contains the Cobra commands that create, record and iterate repositories.
package repos

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repohq/internal/dependencies"
	"github.com/temirov/repohq/internal/printer"
	"github.com/temirov/repohq/internal/store"
	"github.com/temirov/repohq/internal/vcs"
	"github.com/temirov/repohq/internal/workspace"
)

const (
	storeProviderMissingMessageConstant = "repository commands require a store provider"
	storeMissingMessageConstant         = "store provider returned no store"
)

var (
	errStoreProviderMissing = errors.New(storeProviderMissingMessageConstant)
	errStoreMissing         = errors.New(storeMissingMessageConstant)
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// StoreProvider yields the store that holds configuration and the repository cache.
type StoreProvider func() (store.Store, error)

// CommandDependencies are shared by every repository command builder.
type CommandDependencies struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	VerboseProvider              func() bool
	StoreProvider                StoreProvider
	// Executor and Backends replace the shell-backed defaults when set.
	Executor workspace.CommandExecutor
	Backends *vcs.Registry
}

func (commandDependencies CommandDependencies) openService(command *cobra.Command) (*workspace.Service, error) {
	if commandDependencies.StoreProvider == nil {
		return nil, errStoreProviderMissing
	}
	repositoryStore, storeError := commandDependencies.StoreProvider()
	if storeError != nil {
		return nil, storeError
	}
	if repositoryStore == nil {
		return nil, errStoreMissing
	}

	return dependencies.ResolveWorkspaceService(dependencies.WorkspaceOptions{
		Store:    repositoryStore,
		Executor: commandDependencies.Executor,
		Backends: commandDependencies.Backends,
		Streams: vcs.Streams{
			Output: command.OutOrStdout(),
			Error:  command.ErrOrStderr(),
		},
		Printer:              printer.NewWriterPrinter(command.ErrOrStderr(), resolveFlag(commandDependencies.VerboseProvider)),
		Logger:               resolveLogger(commandDependencies.LoggerProvider),
		HumanReadableLogging: resolveFlag(commandDependencies.HumanReadableLoggingProvider),
	})
}

// saveIndex writes the cache unless the command was interrupted, so a cancelled
// scan or refresh never replaces the cache with a partial index.
func saveIndex(command *cobra.Command, service *workspace.Service) error {
	if interruptError := command.Context().Err(); interruptError != nil {
		return interruptError
	}
	return service.Save()
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveFlag(provider func() bool) bool {
	if provider == nil {
		return false
	}
	return provider()
}

func parseKindFlag(rawKind string) (vcs.Kind, error) {
	if len(rawKind) == 0 {
		return "", nil
	}
	return vcs.ParseKind(rawKind)
}
