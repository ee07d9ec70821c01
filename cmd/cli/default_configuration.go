package cli

import (
	"bytes"
	_ "embed"
)

// defaultConfigurationDocument is what `repohq config init` writes and what every load starts from.
//
//go:embed default_config.toml
var defaultConfigurationDocument []byte

// EmbeddedDefaultConfiguration returns a copy of the default TOML document and its viper type.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(defaultConfigurationDocument), configurationTypeConstant
}
