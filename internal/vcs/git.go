package vcs

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/temirov/repohq/internal/execshell"
)

const (
	gitInitSubcommandConstant      = "init"
	gitCloneSubcommandConstant     = "clone"
	gitRemoteSubcommandConstant    = "remote"
	gitRemoteAddSubcommandConstant = "add"
	gitRemoteSetURLSubcommand      = "set-url"
	gitDefaultRemoteNameConstant   = "origin"
	gitOpenErrorTemplateConstant   = "unable to open git repository %s: %w"
	gitConfigErrorTemplateConstant = "unable to read git configuration of %s: %w"
	gitRemoteErrorTemplateConstant = "unable to read git remote %s of %s: %w"
)

// GitBackend drives git. Remote lookups read the repository configuration
// directly, other operations run the git executable.
type GitBackend struct {
	commandBackend
}

// NewGitBackend constructs a git backend.
func NewGitBackend(executor CommandExecutor, streams Streams) *GitBackend {
	return &GitBackend{commandBackend: commandBackend{kind: KindGit, command: execshell.CommandGit, executor: executor, streams: streams}}
}

// Init runs git init at repositoryPath.
func (backend *GitBackend) Init(executionContext context.Context, repositoryPath string) error {
	return backend.runStreaming(executionContext, "", gitInitSubcommandConstant, repositoryPath)
}

// Clone runs git clone remoteURL repositoryPath followed by extraArguments.
func (backend *GitBackend) Clone(executionContext context.Context, repositoryPath string, remoteURL string, extraArguments []string) error {
	if parentError := ensureParentDirectory(repositoryPath); parentError != nil {
		return parentError
	}
	arguments := append([]string{gitCloneSubcommandConstant, remoteURL, repositoryPath}, extraArguments...)
	return backend.runStreaming(executionContext, "", arguments...)
}

// RemoteURL returns the first URL of the remote tracked by the current branch,
// falling back to origin when the branch has no upstream.
func (backend *GitBackend) RemoteURL(executionContext context.Context, repositoryPath string) (string, bool, error) {
	repository, openError := openGitRepository(repositoryPath)
	if openError != nil {
		return "", false, openError
	}

	remoteName, remoteNameError := trackedRemoteName(repository, repositoryPath)
	if remoteNameError != nil {
		return "", false, remoteNameError
	}

	gitRemote, remoteError := repository.Remote(remoteName)
	if errors.Is(remoteError, git.ErrRemoteNotFound) {
		return "", false, nil
	}
	if remoteError != nil {
		return "", false, fmt.Errorf(gitRemoteErrorTemplateConstant, remoteName, repositoryPath, remoteError)
	}

	remoteURLs := gitRemote.Config().URLs
	if len(remoteURLs) == 0 || len(remoteURLs[0]) == 0 {
		return "", false, nil
	}
	return remoteURLs[0], true, nil
}

// SetRemoteURL points origin at remoteURL, adding the remote when it is absent.
func (backend *GitBackend) SetRemoteURL(executionContext context.Context, repositoryPath string, remoteURL string) error {
	subcommand := gitRemoteAddSubcommandConstant
	if repository, openError := openGitRepository(repositoryPath); openError == nil {
		if _, remoteError := repository.Remote(gitDefaultRemoteNameConstant); remoteError == nil {
			subcommand = gitRemoteSetURLSubcommand
		}
	}
	_, executionError := backend.run(executionContext, repositoryPath, gitRemoteSubcommandConstant, subcommand, gitDefaultRemoteNameConstant, remoteURL)
	return executionError
}

func openGitRepository(repositoryPath string) (*git.Repository, error) {
	repository, openError := git.PlainOpenWithOptions(repositoryPath, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if openError != nil {
		return nil, fmt.Errorf(gitOpenErrorTemplateConstant, repositoryPath, openError)
	}
	return repository, nil
}

// trackedRemoteName resolves HEAD without requiring a commit so unborn
// branches still report their upstream.
func trackedRemoteName(repository *git.Repository, repositoryPath string) (string, error) {
	headReference, headError := repository.Reference(plumbing.HEAD, false)
	if headError != nil || headReference.Type() != plumbing.SymbolicReference || !headReference.Target().IsBranch() {
		return gitDefaultRemoteNameConstant, nil
	}

	repositoryConfig, configError := repository.Config()
	if configError != nil {
		return "", fmt.Errorf(gitConfigErrorTemplateConstant, repositoryPath, configError)
	}

	branchConfig, found := repositoryConfig.Branches[headReference.Target().Short()]
	if !found || branchConfig == nil || len(branchConfig.Remote) == 0 {
		return gitDefaultRemoteNameConstant, nil
	}
	return branchConfig.Remote, nil
}
