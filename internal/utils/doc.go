// Package utils exposes reusable helpers consumed by multiple commands.
//
// ConfigurationLoader layers embedded defaults, TOML files and REPOHQ_*
// environment variables through Viper. LoggerFactory builds zap loggers.
package utils
