package ui

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/repohq/internal/execshell"
)

const toolFieldNameConstant = "tool"

// CommandReporter narrates version control commands through a human-readable zap logger.
// Start notices are debug output; completions are informational and failures are warnings or errors.
type CommandReporter struct {
	logger   *zap.Logger
	messages execshell.CommandMessageFormatter
}

// NewCommandReporter constructs a reporter writing to logger.
func NewCommandReporter(logger *zap.Logger) *CommandReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandReporter{logger: logger}
}

// CommandStarted implements execshell.CommandEventObserver.
func (reporter *CommandReporter) CommandStarted(command execshell.ShellCommand) {
	if !reporter.enabled() {
		return
	}
	reporter.emit(zapcore.DebugLevel, command, reporter.messages.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver.
func (reporter *CommandReporter) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if !reporter.enabled() {
		return
	}
	if result.ExitCode != 0 {
		reporter.emit(zapcore.WarnLevel, command, reporter.messages.BuildFailureMessage(command, result))
		return
	}
	reporter.emit(zapcore.InfoLevel, command, reporter.messages.BuildSuccessMessage(command))
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (reporter *CommandReporter) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if !reporter.enabled() {
		return
	}
	reporter.emit(zapcore.ErrorLevel, command, reporter.messages.BuildExecutionFailureMessage(command, failure))
}

func (reporter *CommandReporter) enabled() bool {
	return reporter != nil && reporter.logger != nil
}

func (reporter *CommandReporter) emit(level zapcore.Level, command execshell.ShellCommand, message string) {
	checkedEntry := reporter.logger.Check(level, message)
	if checkedEntry == nil {
		return
	}
	checkedEntry.Write(zap.String(toolFieldNameConstant, string(command.Name)))
}
