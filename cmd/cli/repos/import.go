package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/repohq/internal/workspace"
)

const (
	importUseConstant              = "import [root ...]"
	importShortDescriptionConstant = "Scan directories for repositories and record them"
	importLongDescriptionConstant  = "import walks each root, or the configured includes when none are given, and records every repository it finds. Configured excludes are honored."
	importDepthFlagNameConstant    = "depth"
	importDepthFlagUsageConstant   = "Maximum directory depth to scan below each root (0 scans without limit)"
)

// ImportCommandBuilder assembles the import command.
type ImportCommandBuilder struct {
	Dependencies CommandDependencies
}

// Build constructs the import command.
func (builder *ImportCommandBuilder) Build() (*cobra.Command, error) {
	var maximumDepth int
	command := &cobra.Command{
		Use:   importUseConstant,
		Short: importShortDescriptionConstant,
		Long:  importLongDescriptionConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, maximumDepth)
		},
	}
	command.Flags().IntVar(&maximumDepth, importDepthFlagNameConstant, 0, importDepthFlagUsageConstant)
	return command, nil
}

func (builder *ImportCommandBuilder) run(command *cobra.Command, arguments []string, maximumDepth int) error {
	service, serviceError := builder.Dependencies.openService(command)
	if serviceError != nil {
		return serviceError
	}

	_, importError := service.Import(command.Context(), workspace.ImportOptions{
		Roots:    arguments,
		MaxDepth: maximumDepth,
	})
	if importError != nil {
		return importError
	}
	return saveIndex(command, service)
}
