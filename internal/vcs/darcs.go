package vcs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/repohq/internal/execshell"
)

const (
	darcsInitSubcommandConstant         = "initialize"
	darcsCloneSubcommandConstant        = "clone"
	darcsPreferencesDirectoryConstant   = "prefs"
	darcsDefaultRepositoryFileConstant  = "defaultrepo"
	darcsDefaultRepositoryErrorTemplate = "unable to read darcs default repository of %s: %w"
)

// DarcsBackend drives darcs.
type DarcsBackend struct {
	commandBackend
}

// NewDarcsBackend constructs a darcs backend.
func NewDarcsBackend(executor CommandExecutor, streams Streams) *DarcsBackend {
	return &DarcsBackend{commandBackend: commandBackend{kind: KindDarcs, command: execshell.CommandDarcs, executor: executor, streams: streams}}
}

// Init runs darcs initialize at repositoryPath.
func (backend *DarcsBackend) Init(executionContext context.Context, repositoryPath string) error {
	if parentError := ensureParentDirectory(repositoryPath); parentError != nil {
		return parentError
	}
	return backend.runStreaming(executionContext, "", darcsInitSubcommandConstant, repositoryPath)
}

// Clone runs darcs clone with extraArguments ahead of the source and destination.
func (backend *DarcsBackend) Clone(executionContext context.Context, repositoryPath string, remoteURL string, extraArguments []string) error {
	if parentError := ensureParentDirectory(repositoryPath); parentError != nil {
		return parentError
	}
	arguments := append([]string{darcsCloneSubcommandConstant}, extraArguments...)
	arguments = append(arguments, remoteURL, repositoryPath)
	return backend.runStreaming(executionContext, "", arguments...)
}

// RemoteURL returns the first line of _darcs/prefs/defaultrepo.
func (backend *DarcsBackend) RemoteURL(_ context.Context, repositoryPath string) (string, bool, error) {
	preferencePath := filepath.Join(repositoryPath, darcsMarkerConstant, darcsPreferencesDirectoryConstant, darcsDefaultRepositoryFileConstant)
	contents, readError := os.ReadFile(preferencePath)
	if errors.Is(readError, fs.ErrNotExist) {
		return "", false, nil
	}
	if readError != nil {
		return "", false, fmt.Errorf(darcsDefaultRepositoryErrorTemplate, repositoryPath, readError)
	}

	scanner := bufio.NewScanner(bytes.NewReader(contents))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); len(line) > 0 {
			return line, true, nil
		}
	}
	return "", false, nil
}

// SetRemoteURL is not supported for darcs.
func (backend *DarcsBackend) SetRemoteURL(context.Context, string, string) error {
	return backend.unsupported(OperationSetRemoteURL)
}
