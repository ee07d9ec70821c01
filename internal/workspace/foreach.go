package workspace

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repohq/internal/execshell"
)

const (
	dryRunLineTemplateConstant      = "+ cd %s && %s\n"
	foreachRunLogMessageConstant    = "running command in repository"
	logFieldPathConstant            = "path"
	logFieldCommandConstant         = "command"
	commandDisplaySeparatorConstant = " "
)

// ForEachOptions configure ForEach.
type ForEachOptions struct {
	DryRun bool
	Output io.Writer
	Error  io.Writer
}

// ForEach runs command with arguments inside every recorded repository, in index
// order, and stops at the first failure. With DryRun the command lines are
// printed to Output instead.
func (service *Service) ForEach(executionContext context.Context, command string, arguments []string, options ForEachOptions) error {
	if len(strings.TrimSpace(command)) == 0 {
		return ErrEmptyCommand
	}
	if !service.index.Loaded() {
		return ErrCacheNotInitialized
	}

	output := options.Output
	if output == nil {
		output = io.Discard
	}
	commandLine := strings.Join(append([]string{command}, arguments...), commandDisplaySeparatorConstant)

	for _, recordedRepository := range service.index.All() {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		if options.DryRun {
			fmt.Fprintf(output, dryRunLineTemplateConstant, recordedRepository.Path, commandLine)
			continue
		}

		service.logger.Debug(foreachRunLogMessageConstant, zap.String(logFieldPathConstant, recordedRepository.Path), zap.String(logFieldCommandConstant, commandLine))
		_, executionError := service.executor.Execute(executionContext, execshell.ShellCommand{
			Name: execshell.CommandName(command),
			Details: execshell.CommandDetails{
				Arguments:        arguments,
				WorkingDirectory: recordedRepository.Path,
				StandardOutput:   options.Output,
				StandardError:    options.Error,
			},
		})
		if executionError != nil {
			return fmt.Errorf(foreachErrorTemplateConstant, recordedRepository.Path, executionError)
		}
	}
	return nil
}
