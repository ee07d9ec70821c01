package repos

import (
	"os"

	"github.com/spf13/cobra"
)

const (
	addUseConstant              = "add [path ...]"
	addShortDescriptionConstant = "Record existing repositories in the cache"
	addLongDescriptionConstant  = "add records each path that holds a repository, defaulting to the current directory. Paths that are not repositories are reported and skipped."
)

// AddCommandBuilder assembles the add command.
type AddCommandBuilder struct {
	Dependencies CommandDependencies
	// WorkingDirectoryProvider defaults to os.Getwd.
	WorkingDirectoryProvider func() (string, error)
}

// Build constructs the add command.
func (builder *AddCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   addUseConstant,
		Short: addShortDescriptionConstant,
		Long:  addLongDescriptionConstant,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *AddCommandBuilder) run(command *cobra.Command, arguments []string) error {
	paths := arguments
	if len(paths) == 0 {
		workingDirectoryProvider := builder.WorkingDirectoryProvider
		if workingDirectoryProvider == nil {
			workingDirectoryProvider = os.Getwd
		}
		workingDirectory, workingDirectoryError := workingDirectoryProvider()
		if workingDirectoryError != nil {
			return workingDirectoryError
		}
		paths = []string{workingDirectory}
	}

	service, serviceError := builder.Dependencies.openService(command)
	if serviceError != nil {
		return serviceError
	}

	service.AddPaths(command.Context(), paths)
	return saveIndex(command, service)
}
