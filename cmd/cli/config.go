package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/temirov/repohq/internal/store"
	"github.com/temirov/repohq/internal/utils"
)

const (
	configUseConstant                        = "config"
	configShortDescriptionConstant           = "Inspect or create the configuration file"
	configInitUseConstant                    = "init"
	configInitShortDescriptionConstant       = "Write the default configuration file"
	configInitLongDescriptionConstant        = "init writes the default configuration to --config, or to <user config dir>/repohq/config.toml."
	configShowUseConstant                    = "show"
	configShowShortDescriptionConstant       = "Print the effective configuration"
	configForceFlagNameConstant              = "force"
	configForceFlagUsageConstant             = "Overwrite an existing configuration file"
	configFilePermissionsConstant            = 0o644
	configDirectoryPermissionsConstant       = 0o755
	configExistsErrorTemplateConstant        = "configuration file %s already exists; pass --force to overwrite it"
	configPathErrorTemplateConstant          = "unable to determine configuration path: %w"
	configWriteErrorTemplateConstant         = "unable to write configuration %s: %w"
	configRenderErrorTemplateConstant        = "unable to render configuration: %w"
	configWrittenMessageTemplateConstant     = "Wrote configuration to %s\n"
	configSourceCommentTemplateConstant      = "# loaded from %s\n"
	configStoreMissingMessageConstant        = "config show requires a store provider"
	configEnvironmentCommentTemplateConstant = "# overridden by %s\n"
)

// effectiveConfiguration is the rendered form of the resolved settings.
type effectiveConfiguration struct {
	Root                  string                         `toml:"root"`
	DefaultHost           string                         `toml:"default_host"`
	DefaultVersionControl string                         `toml:"default_vcs"`
	Includes              []string                       `toml:"includes"`
	Excludes              []string                       `toml:"excludes"`
	CacheFile             string                         `toml:"cache_file"`
	Common                ApplicationCommonConfiguration `toml:"common"`
}

// ConfigCommandBuilder assembles the config command group.
type ConfigCommandBuilder struct {
	ConfigurationFilePathProvider func() string
	CommonConfigurationProvider   func() ApplicationCommonConfiguration
	StoreProvider                 func() (store.Store, error)
	CommandContextAccessor        utils.CommandContextAccessor
	// DefaultPathProvider defaults to DefaultConfigurationFilePath.
	DefaultPathProvider func() (string, error)
}

// Build constructs the config command with its init and show subcommands.
func (builder *ConfigCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   configUseConstant,
		Short: configShortDescriptionConstant,
	}

	var force bool
	initCommand := &cobra.Command{
		Use:   configInitUseConstant,
		Short: configInitShortDescriptionConstant,
		Long:  configInitLongDescriptionConstant,
		Args:  cobra.NoArgs,
		Annotations: map[string]string{
			configurationFileOptionalAnnotation: "true",
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.runInit(command, force)
		},
	}
	initCommand.Flags().BoolVar(&force, configForceFlagNameConstant, false, configForceFlagUsageConstant)

	showCommand := &cobra.Command{
		Use:   configShowUseConstant,
		Short: configShowShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runShow,
	}

	command.AddCommand(initCommand, showCommand)
	return command, nil
}

func (builder *ConfigCommandBuilder) runInit(command *cobra.Command, force bool) error {
	targetPath, pathError := builder.targetPath()
	if pathError != nil {
		return fmt.Errorf(configPathErrorTemplateConstant, pathError)
	}

	if _, statError := os.Stat(targetPath); statError == nil && !force {
		return fmt.Errorf(configExistsErrorTemplateConstant, targetPath)
	} else if statError != nil && !errors.Is(statError, fs.ErrNotExist) {
		return fmt.Errorf(configWriteErrorTemplateConstant, targetPath, statError)
	}

	if directoryError := os.MkdirAll(filepath.Dir(targetPath), configDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(configWriteErrorTemplateConstant, targetPath, directoryError)
	}
	content, _ := EmbeddedDefaultConfiguration()
	if writeError := os.WriteFile(targetPath, content, configFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(configWriteErrorTemplateConstant, targetPath, writeError)
	}

	fmt.Fprintf(command.OutOrStdout(), configWrittenMessageTemplateConstant, targetPath)
	return nil
}

func (builder *ConfigCommandBuilder) targetPath() (string, error) {
	if builder.ConfigurationFilePathProvider != nil {
		if explicitPath := builder.ConfigurationFilePathProvider(); len(explicitPath) > 0 {
			return filepath.Abs(explicitPath)
		}
	}
	if builder.DefaultPathProvider != nil {
		return builder.DefaultPathProvider()
	}
	return DefaultConfigurationFilePath()
}

func (builder *ConfigCommandBuilder) runShow(command *cobra.Command, _ []string) error {
	if builder.StoreProvider == nil {
		return errors.New(configStoreMissingMessageConstant)
	}
	repositoryStore, storeError := builder.StoreProvider()
	if storeError != nil {
		return storeError
	}
	config, configError := repositoryStore.LoadConfig()
	if configError != nil {
		return configError
	}

	rendered := effectiveConfiguration{
		Root:                  config.RootDirectory,
		DefaultHost:           config.DefaultHost,
		DefaultVersionControl: config.DefaultVersionControl.String(),
		Includes:              config.IncludeDirectories,
		Excludes:              config.Excludes.Strings(),
		CacheFile:             config.CacheFilePath,
	}
	if rendered.Includes == nil {
		rendered.Includes = []string{}
	}
	if rendered.Excludes == nil {
		rendered.Excludes = []string{}
	}
	if builder.CommonConfigurationProvider != nil {
		rendered.Common = builder.CommonConfigurationProvider()
	}

	content, marshalError := toml.Marshal(rendered)
	if marshalError != nil {
		return fmt.Errorf(configRenderErrorTemplateConstant, marshalError)
	}

	output := command.OutOrStdout()
	if source, available := builder.CommandContextAccessor.ConfigurationSource(command.Context()); available {
		if len(source.FilePath) > 0 {
			fmt.Fprintf(output, configSourceCommentTemplateConstant, source.FilePath)
		}
		for _, variableName := range source.EnvironmentOverrides {
			fmt.Fprintf(output, configEnvironmentCommentTemplateConstant, variableName)
		}
	}
	_, writeError := output.Write(content)
	return writeError
}
