package utils

import "context"

const (
	configurationSourceContextKeyConstant = commandContextKey("configurationSource")
)

type commandContextKey string

// ConfigurationSource describes where the effective configuration of a command came from.
type ConfigurationSource struct {
	// FilePath is empty when only embedded defaults and the environment apply.
	FilePath string
	// EnvironmentOverrides names the environment variables that replaced configured values.
	EnvironmentOverrides []string
}

// CommandContextAccessor stores and retrieves command execution values in contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationSource attaches source to the provided context.
func (accessor CommandContextAccessor) WithConfigurationSource(parentContext context.Context, source ConfigurationSource) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationSourceContextKeyConstant, source)
}

// ConfigurationSource extracts the configuration source from the provided context.
func (accessor CommandContextAccessor) ConfigurationSource(executionContext context.Context) (ConfigurationSource, bool) {
	if executionContext == nil {
		return ConfigurationSource{}, false
	}
	source, available := executionContext.Value(configurationSourceContextKeyConstant).(ConfigurationSource)
	return source, available
}
