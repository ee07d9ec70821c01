package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	initSubcommandNameConstant           = "init"
	initializeSubcommandNameConstant     = "initialize"
	cloneSubcommandNameConstant          = "clone"
	gitRemoteSubcommandNameConstant      = "remote"
	gitRemoteAddSubcommandNameConstant   = "add"
	gitRemoteSetURLSubcommandConstant    = "set-url"
	mercurialPathsSubcommandNameConstant = "paths"
)

const (
	initStartTemplateConstant                    = "Initializing %s repository at %s"
	initSuccessTemplateConstant                  = "Initialized %s repository at %s"
	initFailureTemplateConstant                  = "Failed to initialize %s repository at %s (exit code %d%s)"
	initExecutionFailureTemplateConstant         = "Unable to initialize %s repository at %s: %s"
	cloneStartTemplateConstant                   = "Cloning %s into %s"
	cloneSuccessTemplateConstant                 = "Cloned %s into %s"
	cloneFailureTemplateConstant                 = "Failed to clone %s into %s (exit code %d%s)"
	cloneExecutionFailureTemplateConstant        = "Unable to clone %s into %s: %s"
	remoteAddStartTemplateConstant               = "Adding %s remote for %s pointing to %s"
	remoteAddSuccessTemplateConstant             = "%s remote for %s points to %s"
	remoteAddFailureTemplateConstant             = "Failed to add %s remote for %s (exit code %d%s)"
	remoteAddExecutionFailureTemplateConstant    = "Unable to add %s remote for %s: %s"
	remoteUpdateStartTemplateConstant            = "Updating %s remote for %s to %s"
	remoteUpdateSuccessTemplateConstant          = "%s remote for %s now points to %s"
	remoteUpdateFailureTemplateConstant          = "Failed to update %s remote for %s to %s (exit code %d%s)"
	remoteUpdateExecutionFailureTemplateConstant = "Unable to update %s remote for %s to %s: %s"
	pathsStartTemplateConstant                   = "Reading %s path for %s"
	pathsSuccessTemplateConstant                 = "Read %s path for %s"
	pathsFailureTemplateConstant                 = "No %s path configured for %s (exit code %d%s)"
	pathsExecutionFailureTemplateConstant        = "Unable to read %s path for %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit, CommandMercurial, CommandDarcs, CommandPijul:
		return formatter.describeVersionControlMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeVersionControlMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch strings.TrimSpace(arguments[0]) {
	case initSubcommandNameConstant, initializeSubcommandNameConstant:
		return formatter.describeInitMessage(command, result, failure, stage)
	case cloneSubcommandNameConstant:
		return formatter.describeCloneMessage(command, result, failure, stage)
	case gitRemoteSubcommandNameConstant:
		if command.Name == CommandGit {
			return formatter.describeGitRemoteMessage(command, result, failure, stage)
		}
	case mercurialPathsSubcommandNameConstant:
		if command.Name == CommandMercurial {
			return formatter.describeMercurialPathsMessage(command, result, failure, stage)
		}
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeInitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	target := formatter.extractPositionalArguments(command.Details.Arguments[1:])
	location := formatter.describeWorkingDirectory(command)
	if len(target) > 0 {
		location = target[len(target)-1]
	}
	toolName := string(command.Name)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(initStartTemplateConstant, toolName, location)
	case messageStageSuccess:
		return fmt.Sprintf(initSuccessTemplateConstant, toolName, location)
	case messageStageFailure:
		return fmt.Sprintf(initFailureTemplateConstant, toolName, location, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(initExecutionFailureTemplateConstant, toolName, location, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeCloneMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	positionalArguments := formatter.extractPositionalArguments(command.Details.Arguments[1:])
	if len(positionalArguments) < 2 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	sourceURL := positionalArguments[0]
	destination := positionalArguments[1]
	if command.Name != CommandGit {
		sourceURL = positionalArguments[len(positionalArguments)-2]
		destination = positionalArguments[len(positionalArguments)-1]
	}
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(cloneStartTemplateConstant, sourceURL, destination)
	case messageStageSuccess:
		return fmt.Sprintf(cloneSuccessTemplateConstant, sourceURL, destination)
	case messageStageFailure:
		return fmt.Sprintf(cloneFailureTemplateConstant, sourceURL, destination, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(cloneExecutionFailureTemplateConstant, sourceURL, destination, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	subcommand := strings.TrimSpace(formatter.argumentAtIndex(arguments, 1))
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))
	remoteURL := formatter.ensureValue(formatter.argumentAtIndex(arguments, 3))
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch subcommand {
	case gitRemoteAddSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(remoteAddStartTemplateConstant, remoteName, workingDirectory, remoteURL)
		case messageStageSuccess:
			return fmt.Sprintf(remoteAddSuccessTemplateConstant, remoteName, workingDirectory, remoteURL)
		case messageStageFailure:
			return fmt.Sprintf(remoteAddFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(remoteAddExecutionFailureTemplateConstant, remoteName, workingDirectory, formatter.describeFailure(failure))
		}
	case gitRemoteSetURLSubcommandConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(remoteUpdateStartTemplateConstant, remoteName, workingDirectory, remoteURL)
		case messageStageSuccess:
			return fmt.Sprintf(remoteUpdateSuccessTemplateConstant, remoteName, workingDirectory, remoteURL)
		case messageStageFailure:
			return fmt.Sprintf(remoteUpdateFailureTemplateConstant, remoteName, workingDirectory, remoteURL, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(remoteUpdateExecutionFailureTemplateConstant, remoteName, workingDirectory, remoteURL, formatter.describeFailure(failure))
		}
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeMercurialPathsMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	pathName := formatter.ensureValue(formatter.argumentAtIndex(command.Details.Arguments, 1))
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(pathsStartTemplateConstant, pathName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(pathsSuccessTemplateConstant, pathName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(pathsFailureTemplateConstant, pathName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(pathsExecutionFailureTemplateConstant, pathName, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	return fmt.Sprintf(commandLabelTemplateConstant, command.String(), formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}

// extractPositionalArguments drops flags so extra clone arguments do not shift the source and destination.
func (formatter CommandMessageFormatter) extractPositionalArguments(arguments []string) []string {
	positionalArguments := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		positionalArguments = append(positionalArguments, trimmedArgument)
	}
	return positionalArguments
}
