package repos

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/temirov/repohq/internal/repository"
	flagutils "github.com/temirov/repohq/internal/utils/flags"
)

const (
	listUseConstant                 = "list"
	listShortDescriptionConstant    = "Print the recorded repositories"
	listLongDescriptionConstant     = "list prints the recorded repositories sorted by name."
	listFormatFlagNameConstant      = "format"
	listFormatFlagUsageConstant     = "Output format"
	listJSONIndentConstant          = "  "
	listLineTemplateConstant        = "%s\n"
	listEncodeErrorTemplateConstant = "unable to render repositories as %s: %w"

	// ListFormatName prints one repository name per line.
	ListFormatName = "name"
	// ListFormatFullPath prints one absolute repository path per line.
	ListFormatFullPath = "fullpath"
	// ListFormatJSON prints a JSON array of repositories.
	ListFormatJSON = "json"
	// ListFormatYAML prints a YAML sequence of repositories.
	ListFormatYAML = "yaml"
)

var listFormatChoices = []string{ListFormatName, ListFormatFullPath, ListFormatJSON, ListFormatYAML}

type listEntry struct {
	Name   string `json:"name" yaml:"name"`
	Path   string `json:"path" yaml:"path"`
	Kind   string `json:"vcs" yaml:"vcs"`
	Remote string `json:"remote,omitempty" yaml:"remote,omitempty"`
}

// ListCommandBuilder assembles the list command.
type ListCommandBuilder struct {
	Dependencies CommandDependencies
}

// Build constructs the list command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	var outputFormat string
	command := &cobra.Command{
		Use:   listUseConstant,
		Short: listShortDescriptionConstant,
		Long:  listLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, serviceError := builder.Dependencies.openService(command)
			if serviceError != nil {
				return serviceError
			}
			repositories, listError := service.Repositories()
			if listError != nil {
				return listError
			}
			return renderRepositories(command.OutOrStdout(), outputFormat, repositories)
		},
	}
	flagutils.AddChoiceFlag(command.Flags(), &outputFormat, listFormatFlagNameConstant, "", ListFormatFullPath, listFormatChoices, listFormatFlagUsageConstant)
	return command, nil
}

func renderRepositories(output io.Writer, outputFormat string, repositories []repository.Repository) error {
	switch outputFormat {
	case ListFormatName:
		for _, recordedRepository := range repositories {
			fmt.Fprintf(output, listLineTemplateConstant, recordedRepository.Name)
		}
		return nil
	case ListFormatJSON:
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", listJSONIndentConstant)
		if encodeError := encoder.Encode(listEntries(repositories)); encodeError != nil {
			return fmt.Errorf(listEncodeErrorTemplateConstant, outputFormat, encodeError)
		}
		return nil
	case ListFormatYAML:
		encoder := yaml.NewEncoder(output)
		if encodeError := encoder.Encode(listEntries(repositories)); encodeError != nil {
			return fmt.Errorf(listEncodeErrorTemplateConstant, outputFormat, encodeError)
		}
		return encoder.Close()
	default:
		for _, recordedRepository := range repositories {
			fmt.Fprintf(output, listLineTemplateConstant, recordedRepository.Path)
		}
		return nil
	}
}

func listEntries(repositories []repository.Repository) []listEntry {
	entries := make([]listEntry, 0, len(repositories))
	for _, recordedRepository := range repositories {
		entries = append(entries, listEntry{
			Name:   recordedRepository.Name,
			Path:   recordedRepository.Path,
			Kind:   recordedRepository.Kind.String(),
			Remote: recordedRepository.Remote.String(),
		})
	}
	return entries
}
