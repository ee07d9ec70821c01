// Package cli constructs the repohq command-line interface, wiring the Cobra
// command hierarchy, the viper-backed configuration loader, the file store and
// structured logging. Execute runs the default command set.
package cli
