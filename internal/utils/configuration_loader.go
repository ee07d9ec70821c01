package utils

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	configurationKeySeparatorConstant             = "."
	environmentKeySeparatorConstant               = "_"
	configurationReadErrorTemplateConstant        = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant   = "failed to parse configuration: %w"
	embeddedConfigurationErrorTemplateConstant    = "failed to merge embedded configuration: %w"
	environmentListSeparatorConstant              = ","
	environmentVariableWithPrefixTemplateConstant = "%s_%s"
)

// ConfigurationLoader layers embedded defaults, one configuration file and
// prefixed environment variables into a decoded target.
type ConfigurationLoader struct {
	configurationName string
	configurationType string
	environmentPrefix string
	searchPaths       []string
	embeddedDocument  []byte
	embeddedType      string
}

// LoadedConfiguration describes where the decoded values came from.
type LoadedConfiguration struct {
	ConfigFileUsed string
	// EnvironmentOverrides lists the environment variables that supplied a known key, sorted.
	EnvironmentOverrides []string
}

// NewConfigurationLoader creates a loader searching searchPaths for configurationName.configurationType.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       slices.Clone(searchPaths),
	}
}

// SetEmbeddedConfiguration registers a document merged underneath any configuration file.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(document []byte, documentType string) {
	if loader == nil {
		return
	}
	loader.embeddedDocument = bytes.Clone(document)
	loader.embeddedType = strings.TrimSpace(documentType)
}

// LoadConfiguration decodes into target. An explicit configurationFilePath must exist;
// otherwise the search paths are consulted and a missing file is not an error.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	instance := viper.New()
	for key, value := range defaultValues {
		instance.SetDefault(key, value)
	}

	if mergeError := loader.mergeEmbedded(instance); mergeError != nil {
		return LoadedConfiguration{}, mergeError
	}
	if readError := loader.mergeFile(instance, configurationFilePath); readError != nil {
		return LoadedConfiguration{}, readError
	}
	loader.bindEnvironment(instance)

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(environmentListSeparatorConstant),
	))
	if unmarshalError := instance.Unmarshal(target, decodeHook); unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return LoadedConfiguration{
		ConfigFileUsed:       instance.ConfigFileUsed(),
		EnvironmentOverrides: loader.environmentOverrides(instance.AllKeys()),
	}, nil
}

func (loader *ConfigurationLoader) mergeEmbedded(instance *viper.Viper) error {
	if len(loader.embeddedDocument) == 0 {
		return nil
	}
	documentType := loader.embeddedType
	if len(documentType) == 0 {
		documentType = loader.configurationType
	}
	instance.SetConfigType(documentType)
	if mergeError := instance.MergeConfig(bytes.NewReader(loader.embeddedDocument)); mergeError != nil {
		return fmt.Errorf(embeddedConfigurationErrorTemplateConstant, mergeError)
	}
	return nil
}

func (loader *ConfigurationLoader) mergeFile(instance *viper.Viper, configurationFilePath string) error {
	instance.SetConfigType(loader.configurationType)
	if len(configurationFilePath) > 0 {
		instance.SetConfigFile(configurationFilePath)
	} else {
		instance.SetConfigName(loader.configurationName)
		for _, searchPath := range loader.searchPaths {
			instance.AddConfigPath(searchPath)
		}
	}

	readError := instance.MergeInConfig()
	var notFound viper.ConfigFileNotFoundError
	if readError == nil || errors.As(readError, &notFound) {
		return nil
	}
	return fmt.Errorf(configurationReadErrorTemplateConstant, readError)
}

func (loader *ConfigurationLoader) bindEnvironment(instance *viper.Viper) {
	instance.SetEnvPrefix(loader.environmentPrefix)
	instance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	instance.AutomaticEnv()
}

func (loader *ConfigurationLoader) environmentOverrides(keys []string) []string {
	var overrides []string
	for _, key := range keys {
		variableName := loader.environmentVariableName(key)
		if _, present := os.LookupEnv(variableName); present {
			overrides = append(overrides, variableName)
		}
	}
	slices.Sort(overrides)
	return overrides
}

func (loader *ConfigurationLoader) environmentVariableName(key string) string {
	variableName := strings.ToUpper(strings.ReplaceAll(key, configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	if len(loader.environmentPrefix) == 0 {
		return variableName
	}
	return fmt.Sprintf(environmentVariableWithPrefixTemplateConstant, strings.ToUpper(loader.environmentPrefix), variableName)
}
