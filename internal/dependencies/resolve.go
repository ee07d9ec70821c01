// Package dependencies constructs the default collaborators used by command builders.
package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/repohq/internal/execshell"
	"github.com/temirov/repohq/internal/printer"
	"github.com/temirov/repohq/internal/repository"
	"github.com/temirov/repohq/internal/scanner"
	"github.com/temirov/repohq/internal/store"
	"github.com/temirov/repohq/internal/ui"
	"github.com/temirov/repohq/internal/vcs"
	"github.com/temirov/repohq/internal/workspace"
)

// ResolveCommandExecutor returns the provided executor or a shell-backed default.
// Human-readable logging swaps structured command events for console messages.
func ResolveCommandExecutor(existing workspace.CommandExecutor, logger *zap.Logger, humanReadableLogging bool) (workspace.CommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	var observers []execshell.CommandEventObserver
	if humanReadableLogging {
		observers = append(observers, ui.NewCommandReporter(logger))
	}
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, observers...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveBackends returns the provided backends or a registry over executor.
func ResolveBackends(existing *vcs.Registry, executor vcs.CommandExecutor, streams vcs.Streams) *vcs.Registry {
	if existing != nil {
		return existing
	}
	return vcs.NewRegistry(executor, streams)
}

// ResolveInspector returns an inspector that looks remotes up through lookup.
func ResolveInspector(lookup repository.RemoteLookup, logger *zap.Logger) *repository.Inspector {
	return repository.NewInspector(lookup, logger)
}

// ResolveScanner returns a scanner over inspector.
func ResolveScanner(inspector scanner.Inspector, logger *zap.Logger) *scanner.Scanner {
	return scanner.NewScanner(inspector, logger)
}

// WorkspaceOptions collect what ResolveWorkspaceService needs beyond defaults.
type WorkspaceOptions struct {
	Store                store.Store
	Executor             workspace.CommandExecutor
	Backends             *vcs.Registry
	Streams              vcs.Streams
	Printer              printer.Printer
	Logger               *zap.Logger
	HumanReadableLogging bool
}

// ResolveWorkspaceService wires the executor, backends, inspector and scanner
// into a workspace service loaded from options.Store.
func ResolveWorkspaceService(options WorkspaceOptions) (*workspace.Service, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	executor, executorError := ResolveCommandExecutor(options.Executor, logger, options.HumanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}

	backends := ResolveBackends(options.Backends, executor, options.Streams)
	inspector := ResolveInspector(backends, logger)

	return workspace.NewService(workspace.ServiceDependencies{
		Store:     options.Store,
		Backends:  backends,
		Inspector: inspector,
		Scanner:   ResolveScanner(inspector, logger),
		Executor:  executor,
		Printer:   options.Printer,
		Logger:    logger,
	})
}
