package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/repohq/cmd/cli/repos"
	"github.com/temirov/repohq/internal/store"
	"github.com/temirov/repohq/internal/utils"
)

const (
	applicationNameConstant                 = "repohq"
	applicationShortDescriptionConstant     = "Manage local clones of remote repositories"
	applicationLongDescriptionConstant      = "repohq places repositories at <root>/<host>/<path>, keeps a cache of every repository it knows about and runs commands across them."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (TOML)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	verboseFlagNameConstant                 = "verbose"
	verboseFlagShorthandConstant            = "v"
	verboseFlagUsageConstant                = "Print a notice for every cache change."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant               = "REPOHQ"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "toml"
	configurationFileNameConstant           = configurationNameConstant + "." + configurationTypeConstant
	configurationDirectoryNameConstant      = "repohq"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	storeCreationErrorTemplateConstant      = "unable to open store: %w"
	rootCommandDebugMessageConstant         = "repohq CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	// configurationFileOptionalAnnotation marks commands that run before the --config file exists.
	configurationFileOptionalAnnotation = "repohq/configuration-file-optional"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
// Workspace settings live next to it in the same file and are decoded by the store.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level" toml:"log_level"`
	LogFormat string `mapstructure:"log_format" toml:"log_format"`
}

// Application wires the Cobra root command, configuration loader, store and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	verboseFlagValue       bool
	fileStore              *store.FileStore
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().BoolVarP(&application.verboseFlagValue, verboseFlagNameConstant, verboseFlagShorthandConstant, false, verboseFlagUsageConstant)

	repositoryCommandDependencies := repos.CommandDependencies{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		VerboseProvider: func() bool {
			return application.verboseFlagValue
		},
		StoreProvider: application.workspaceStore,
	}
	if registrationError := repos.AddCommands(cobraCommand, repositoryCommandDependencies); registrationError != nil {
		application.logger.Error(registrationError.Error())
	}

	configBuilder := ConfigCommandBuilder{
		ConfigurationFilePathProvider: func() string {
			return application.configurationFilePath
		},
		CommonConfigurationProvider: func() ApplicationCommonConfiguration {
			return application.configuration.Common
		},
		StoreProvider:          application.workspaceStore,
		CommandContextAccessor: application.commandContextAccessor,
	}
	configCommand, configBuildError := configBuilder.Build()
	if configBuildError == nil {
		cobraCommand.AddCommand(configCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the command hierarchy with a background context.
func (application *Application) Execute() error {
	return application.ExecuteContext(context.Background())
}

// ExecuteContext runs the command hierarchy under executionContext and flushes the logger.
// Cancelling executionContext stops running version control processes.
func (application *Application) ExecuteContext(executionContext context.Context) error {
	executionError := application.rootCommand.ExecuteContext(executionContext)
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes it under executionContext.
func Execute(executionContext context.Context) error {
	return NewApplication().ExecuteContext(executionContext)
}

func configurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil && len(userConfigurationDirectory) > 0 {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, configurationDirectoryNameConstant))
	}
	return searchPaths
}

// DefaultConfigurationFilePath returns <user config dir>/repohq/config.toml.
func DefaultConfigurationFilePath() (string, error) {
	userConfigurationDirectory, directoryError := os.UserConfigDir()
	if directoryError != nil {
		return "", directoryError
	}
	return filepath.Join(userConfigurationDirectory, configurationDirectoryNameConstant, configurationFileNameConstant), nil
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}

	configurationFilePath := application.configurationFilePath
	if configurationFileOptional(command) {
		if _, statError := os.Stat(configurationFilePath); statError != nil {
			configurationFilePath = ""
		}
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logLevel, logLevelError := utils.ParseLogLevel(application.configuration.Common.LogLevel)
	if logLevelError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, logLevelError)
	}
	logFormat, logFormatError := utils.ParseLogFormat(application.configuration.Common.LogFormat)
	if logFormatError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, logFormatError)
	}

	logger, loggerCreationError := application.loggerFactory.CreateLoggerWithOutput(logLevel, logFormat, diagnosticOutput(command))
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationSource(
			command.Context(),
			utils.ConfigurationSource{
				FilePath:             application.configurationMetadata.ConfigFileUsed,
				EnvironmentOverrides: application.configurationMetadata.EnvironmentOverrides,
			},
		)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func diagnosticOutput(command *cobra.Command) io.Writer {
	if command == nil {
		return os.Stderr
	}
	return command.ErrOrStderr()
}

func configurationFileOptional(command *cobra.Command) bool {
	if command == nil {
		return false
	}
	_, optional := command.Annotations[configurationFileOptionalAnnotation]
	return optional
}

// workspaceStore opens the file store on first use so the --config flag is honored.
func (application *Application) workspaceStore() (store.Store, error) {
	if application.fileStore != nil {
		return application.fileStore, nil
	}
	fileStore, creationError := store.NewFileStore(store.FileStoreOptions{
		ConfigurationLoader:   application.configurationLoader,
		ConfigurationFilePath: application.configurationFilePath,
	})
	if creationError != nil {
		return nil, fmt.Errorf(storeCreationErrorTemplateConstant, creationError)
	}
	application.fileStore = fileStore
	return fileStore, nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
