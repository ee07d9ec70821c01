// Package store persists the repohq configuration and the repository cache.
//
// Configuration is read through a viper-backed ConfigurationLoader from a TOML
// file with REPOHQ_* environment overrides. The cache is a JSON document that
// is replaced atomically on every save.
package store
