package repos

import (
	"github.com/spf13/cobra"

	flagutils "github.com/temirov/repohq/internal/utils/flags"
	"github.com/temirov/repohq/internal/workspace"
)

const (
	foreachUseConstant              = "foreach <command> [argument ...]"
	foreachShortDescriptionConstant = "Run a command inside every recorded repository"
	foreachLongDescriptionConstant  = "foreach runs <command> in the directory of each recorded repository, one at a time, and stops at the first failure. Flags after <command> belong to it."
	foreachDryRunShorthandConstant  = "n"
	foreachMinimumArgumentsConstant = 1
	foreachCommandIndexConstant     = 0
	foreachArgumentsOffsetConstant  = 1
)

// ForEachCommandBuilder assembles the foreach command.
type ForEachCommandBuilder struct {
	Dependencies CommandDependencies
}

// Build constructs the foreach command.
func (builder *ForEachCommandBuilder) Build() (*cobra.Command, error) {
	var dryRun bool
	command := &cobra.Command{
		Use:   foreachUseConstant,
		Short: foreachShortDescriptionConstant,
		Long:  foreachLongDescriptionConstant,
		Args:  cobra.MinimumNArgs(foreachMinimumArgumentsConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			service, serviceError := builder.Dependencies.openService(command)
			if serviceError != nil {
				return serviceError
			}
			return service.ForEach(
				command.Context(),
				arguments[foreachCommandIndexConstant],
				arguments[foreachArgumentsOffsetConstant:],
				workspace.ForEachOptions{
					DryRun: dryRun,
					Output: command.OutOrStdout(),
					Error:  command.ErrOrStderr(),
				},
			)
		},
	}
	command.Flags().SetInterspersed(false)
	command.Flags().BoolVarP(&dryRun, flagutils.DryRunFlagName, foreachDryRunShorthandConstant, false, flagutils.DryRunFlagUsage)
	return command, nil
}
