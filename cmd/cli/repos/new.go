package repos

import (
	"github.com/spf13/cobra"

	flagutils "github.com/temirov/repohq/internal/utils/flags"
	"github.com/temirov/repohq/internal/vcs"
	"github.com/temirov/repohq/internal/workspace"
)

const (
	newUseConstant              = "new <query>"
	newShortDescriptionConstant = "Create an empty repository at its workspace location"
	newLongDescriptionConstant  = "new resolves <query> to <root>/<host>/<path>, initializes an empty repository there, points it at the matching remote and records it."
)

// NewCommandBuilder assembles the new command.
type NewCommandBuilder struct {
	Dependencies CommandDependencies
}

// Build constructs the new command.
func (builder *NewCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   newUseConstant,
		Short: newShortDescriptionConstant,
		Long:  newLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
	}
	workspaceFlags := flagutils.BindWorkspaceFlags(command, vcs.KindNames(), "")
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, arguments, workspaceFlags)
	}
	return command, nil
}

func (builder *NewCommandBuilder) run(command *cobra.Command, arguments []string, workspaceFlags *flagutils.WorkspaceFlagValues) error {
	kind, kindError := parseKindFlag(workspaceFlags.VersionControl)
	if kindError != nil {
		return kindError
	}

	service, serviceError := builder.Dependencies.openService(command)
	if serviceError != nil {
		return serviceError
	}

	result, createError := service.Create(command.Context(), arguments[0], workspace.CreateOptions{
		Kind:          kind,
		UseSSH:        workspaceFlags.SecureShell,
		RootDirectory: workspaceFlags.Root,
	})
	if createError != nil {
		return createError
	}
	if !result.Created {
		return nil
	}
	return saveIndex(command, service)
}
