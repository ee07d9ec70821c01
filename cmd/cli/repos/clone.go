package repos

import (
	"fmt"

	"github.com/spf13/cobra"

	flagutils "github.com/temirov/repohq/internal/utils/flags"
	"github.com/temirov/repohq/internal/vcs"
	"github.com/temirov/repohq/internal/workspace"
)

const (
	cloneUseConstant                     = "clone <query> [dest] [-- <clone arguments>...]"
	cloneShortDescriptionConstant        = "Clone a remote repository into the workspace"
	cloneLongDescriptionConstant         = "clone resolves <query> to a remote URL and clones it into [dest], or into <root>/<host>/<path> when no destination is given. Arguments after -- are passed to the version control tool."
	clonePositionalErrorTemplateConstant = "clone expects <query> and an optional [dest], received %d arguments"
	clonePositionalMinimumConstant       = 1
	clonePositionalMaximumConstant       = 2
	cloneNoDashIndexConstant             = -1
	cloneDestinationIndexConstant        = 1
	cloneQueryIndexConstant              = 0
)

// CloneCommandBuilder assembles the clone command.
type CloneCommandBuilder struct {
	Dependencies CommandDependencies
}

// Build constructs the clone command.
func (builder *CloneCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   cloneUseConstant,
		Short: cloneShortDescriptionConstant,
		Long:  cloneLongDescriptionConstant,
		Args: func(command *cobra.Command, arguments []string) error {
			positional, _ := splitCloneArguments(command, arguments)
			if len(positional) < clonePositionalMinimumConstant || len(positional) > clonePositionalMaximumConstant {
				return fmt.Errorf(clonePositionalErrorTemplateConstant, len(positional))
			}
			return nil
		},
	}
	workspaceFlags := flagutils.BindWorkspaceFlags(command, vcs.KindNames(), "")
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, arguments, workspaceFlags)
	}
	return command, nil
}

func (builder *CloneCommandBuilder) run(command *cobra.Command, arguments []string, workspaceFlags *flagutils.WorkspaceFlagValues) error {
	kind, kindError := parseKindFlag(workspaceFlags.VersionControl)
	if kindError != nil {
		return kindError
	}

	positional, extraArguments := splitCloneArguments(command, arguments)
	options := workspace.CloneOptions{
		Kind:           kind,
		UseSSH:         workspaceFlags.SecureShell,
		RootDirectory:  workspaceFlags.Root,
		ExtraArguments: extraArguments,
	}
	if len(positional) > cloneDestinationIndexConstant {
		options.Destination = positional[cloneDestinationIndexConstant]
	}

	service, serviceError := builder.Dependencies.openService(command)
	if serviceError != nil {
		return serviceError
	}

	result, cloneError := service.Clone(command.Context(), positional[cloneQueryIndexConstant], options)
	if cloneError != nil {
		return cloneError
	}
	if !result.Cloned {
		return nil
	}
	return saveIndex(command, service)
}

func splitCloneArguments(command *cobra.Command, arguments []string) ([]string, []string) {
	dashIndex := command.ArgsLenAtDash()
	if dashIndex == cloneNoDashIndexConstant || dashIndex > len(arguments) {
		return arguments, nil
	}
	return arguments[:dashIndex], append([]string{}, arguments[dashIndex:]...)
}
