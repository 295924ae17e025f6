package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devops-foundry/gitgovern/internal/execshell"
	"github.com/devops-foundry/gitgovern/internal/shared"
)

const (
	gitStatusSubcommandConstant          = "status"
	gitStatusPorcelainFlagConstant       = "--porcelain"
	gitRevParseSubcommandConstant        = "rev-parse"
	gitRevParseAbbrevRefFlagConstant     = "--abbrev-ref"
	gitRemoteSubcommandConstant          = "remote"
	gitRemoteGetURLSubcommandConstant    = "get-url"
	gitHeadReferenceConstant             = "HEAD"
	detachedHeadOutputConstant           = "HEAD"
	executorNotConfiguredMessageConstant = "git executor not configured"
	detachedHeadMessageConstant          = "repository is in detached HEAD state"
	revisionResolveErrorTemplateConstant = "unable to resolve revision %s: %w"
	remoteURLErrorTemplateConstant       = "unable to read URL for remote %s: %w"
)

// ErrExecutorNotConfigured indicates the repository manager was constructed without a git executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ErrDetachedHead indicates the repository has no current branch.
var ErrDetachedHead = errors.New(detachedHeadMessageConstant)

// RepositoryManager performs structured git operations through a shared executor.
type RepositoryManager struct {
	executor shared.GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager backed by the provided executor.
func NewRepositoryManager(executor shared.GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// CheckCleanWorktree reports whether the worktree has no staged or unstaged changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	statusResult, statusError := manager.runGit(executionContext, repositoryPath, gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant)
	if statusError != nil {
		return false, statusError
	}
	return len(strings.TrimSpace(statusResult.StandardOutput)) == 0, nil
}

// GetCurrentBranch returns the checked-out branch name and fails on detached HEAD.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	branchResult, branchError := manager.runGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitRevParseAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if branchError != nil {
		return "", branchError
	}

	branchName := strings.TrimSpace(branchResult.StandardOutput)
	if branchName == detachedHeadOutputConstant {
		return "", ErrDetachedHead
	}
	return branchName, nil
}

// ResolveRevision resolves a revision expression to a full commit identifier.
func (manager *RepositoryManager) ResolveRevision(executionContext context.Context, repositoryPath string, revision string) (string, error) {
	revisionResult, revisionError := manager.runGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, revision)
	if revisionError != nil {
		return "", fmt.Errorf(revisionResolveErrorTemplateConstant, revision, revisionError)
	}
	return strings.TrimSpace(revisionResult.StandardOutput), nil
}

// GetRemoteURL returns the fetch URL configured for the named remote.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	remoteResult, remoteError := manager.runGit(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, remoteName)
	if remoteError != nil {
		return "", fmt.Errorf(remoteURLErrorTemplateConstant, remoteName, remoteError)
	}
	return strings.TrimSpace(remoteResult.StandardOutput), nil
}

func (manager *RepositoryManager) runGit(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	}
	return manager.executor.ExecuteGit(executionContext, commandDetails)
}
