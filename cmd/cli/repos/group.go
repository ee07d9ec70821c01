package repos

import "github.com/spf13/cobra"

// CommandBuilder constructs a single Cobra command.
type CommandBuilder interface {
	Build() (*cobra.Command, error)
}

// CommandBuilders returns a builder for every repository command, all sharing commandDependencies.
func CommandBuilders(commandDependencies CommandDependencies) []CommandBuilder {
	return []CommandBuilder{
		&NewCommandBuilder{Dependencies: commandDependencies},
		&CloneCommandBuilder{Dependencies: commandDependencies},
		&AddCommandBuilder{Dependencies: commandDependencies},
		&ImportCommandBuilder{Dependencies: commandDependencies},
		&RefreshCommandBuilder{Dependencies: commandDependencies},
		&ListCommandBuilder{Dependencies: commandDependencies},
		&ForEachCommandBuilder{Dependencies: commandDependencies},
	}
}

// AddCommands builds every repository command and attaches it to parent.
func AddCommands(parent *cobra.Command, commandDependencies CommandDependencies) error {
	for _, builder := range CommandBuilders(commandDependencies) {
		command, buildError := builder.Build()
		if buildError != nil {
			return buildError
		}
		parent.AddCommand(command)
	}
	return nil
}
