package repos

import "github.com/spf13/cobra"

const (
	refreshUseConstant              = "refresh"
	refreshShortDescriptionConstant = "Drop cache entries that are no longer repositories"
	refreshLongDescriptionConstant  = "refresh re-inspects every recorded repository, drops entries that vanished or are now excluded and updates remotes of the rest."
	refreshSortFlagNameConstant     = "sort"
	refreshSortFlagUsageConstant    = "Sort the cache by repository name after refreshing"
)

// RefreshCommandBuilder assembles the refresh command.
type RefreshCommandBuilder struct {
	Dependencies CommandDependencies
}

// Build constructs the refresh command.
func (builder *RefreshCommandBuilder) Build() (*cobra.Command, error) {
	var sortEntries bool
	command := &cobra.Command{
		Use:   refreshUseConstant,
		Short: refreshShortDescriptionConstant,
		Long:  refreshLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, serviceError := builder.Dependencies.openService(command)
			if serviceError != nil {
				return serviceError
			}
			service.Refresh(command.Context(), sortEntries)
			return saveIndex(command, service)
		},
	}
	command.Flags().BoolVar(&sortEntries, refreshSortFlagNameConstant, false, refreshSortFlagUsageConstant)
	return command, nil
}
