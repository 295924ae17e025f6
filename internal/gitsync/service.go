package gitsync

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/devops-foundry/gitgovern/internal/execshell"
	"github.com/devops-foundry/gitgovern/internal/shared"
)

const (
	gitFetchSubcommandConstant            = "fetch"
	gitMergeSubcommandConstant            = "merge"
	gitRebaseSubcommandConstant           = "rebase"
	gitPushSubcommandConstant             = "push"
	gitDiffSubcommandConstant             = "diff"
	gitRevListSubcommandConstant          = "rev-list"
	gitDiffNameOnlyFlagConstant           = "--name-only"
	gitDiffUnmergedFilterFlagConstant     = "--diff-filter=U"
	gitRevListLeftRightFlagConstant       = "--left-right"
	gitRevListCountFlagConstant           = "--count"
	gitForceWithLeaseFlagConstant         = "--force-with-lease"
	gitHeadReferenceConstant              = "HEAD"
	terminalPromptVariableNameConstant    = "GIT_TERMINAL_PROMPT"
	terminalPromptDisabledValueConstant   = "0"
	remoteBranchTemplateConstant          = "%s/%s"
	revisionRangeTemplateConstant         = "%s...%s"
	executorNotConfiguredMessageConstant  = "git executor not configured"
	managerNotConfiguredMessageConstant   = "repository manager not configured"
	remoteBranchMissingTemplateConstant   = "remote branch %s not found; fetch %s first or verify the remote configuration"
	divergenceParseErrorTemplateConstant  = "unable to parse divergence counts from %q"
	fetchSuccessMessageTemplateConstant   = "fetched %s"
	mergeSuccessMessageTemplateConstant   = "merged %s into %s"
	rebaseSuccessMessageTemplateConstant  = "rebased %s onto %s"
	pushSuccessMessageTemplateConstant    = "pushed %s to %s"
	forcePushSuccessTemplateConstant      = "force pushed %s to %s"
	mergeConflictMessageTemplateConstant  = "merge of %s stopped on conflicts; resolve the listed files and commit, or abort with git merge --abort"
	rebaseConflictMessageTemplateConstant = "rebase onto %s stopped on conflicts; resolve the listed files and continue with git rebase --continue, or abort with git rebase --abort"
	forcePushRefusedMessageConstant       = "WARNING: force pushing %s rewrites remote history; confirm the operation to proceed"
)

// ErrExecutorNotConfigured indicates the service was constructed without a git executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ErrRepositoryManagerNotConfigured indicates the service was constructed without a repository manager.
var ErrRepositoryManagerNotConfigured = errors.New(managerNotConfiguredMessageConstant)

// RemoteBranchMissingError indicates the tracking branch for a synchronization target does not exist.
type RemoteBranchMissingError struct {
	RemoteBranch string
	RemoteName   string
}

// Error describes the missing tracking branch.
func (missingError RemoteBranchMissingError) Error() string {
	return fmt.Sprintf(remoteBranchMissingTemplateConstant, missingError.RemoteBranch, missingError.RemoteName)
}

// BranchStatus captures the relationship between a local branch and its remote counterpart.
type BranchStatus struct {
	LocalBranch  string
	RemoteBranch string
	LocalCommit  string
	RemoteCommit string
	AheadCount   int
	BehindCount  int
	Diverged     bool
}

// InSync reports whether the local and remote commits are identical.
func (status BranchStatus) InSync() bool {
	return status.LocalCommit == status.RemoteCommit
}

// SyncResult reports the outcome of a synchronization operation.
type SyncResult struct {
	Success   bool
	Message   string
	Conflicts []string
}

// Dependencies enumerates the collaborators required by the synchronization service.
type Dependencies struct {
	Executor          shared.GitExecutor
	RepositoryManager shared.GitRepositoryManager
}

// Service coordinates branch synchronization between a local repository and its remote.
type Service struct {
	executor          shared.GitExecutor
	repositoryManager shared.GitRepositoryManager
	remoteName        string
}

// NewService validates dependencies and constructs a synchronization service bound to the origin remote.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	return &Service{
		executor:          dependencies.Executor,
		repositoryManager: dependencies.RepositoryManager,
		remoteName:        shared.OriginRemoteNameConstant,
	}, nil
}

// CheckBranchStatus resolves the divergence between a branch and its remote counterpart.
// An empty branch name selects the currently checked-out branch.
func (service *Service) CheckBranchStatus(executionContext context.Context, repositoryPath string, branchName string) (BranchStatus, error) {
	resolvedBranch, branchError := service.resolveBranch(executionContext, repositoryPath, branchName)
	if branchError != nil {
		return BranchStatus{}, branchError
	}

	remoteBranch := fmt.Sprintf(remoteBranchTemplateConstant, service.remoteName, resolvedBranch)

	localCommit, localError := service.repositoryManager.ResolveRevision(executionContext, repositoryPath, gitHeadReferenceConstant)
	if localError != nil {
		return BranchStatus{}, localError
	}

	remoteCommit, remoteError := service.repositoryManager.ResolveRevision(executionContext, repositoryPath, remoteBranch)
	if remoteError != nil {
		return BranchStatus{}, RemoteBranchMissingError{RemoteBranch: remoteBranch, RemoteName: service.remoteName}
	}

	behindCount, aheadCount, divergenceError := service.countDivergence(executionContext, repositoryPath, remoteBranch)
	if divergenceError != nil {
		return BranchStatus{}, divergenceError
	}

	return BranchStatus{
		LocalBranch:  resolvedBranch,
		RemoteBranch: remoteBranch,
		LocalCommit:  localCommit,
		RemoteCommit: remoteCommit,
		AheadCount:   aheadCount,
		BehindCount:  behindCount,
		Diverged:     aheadCount > 0 && behindCount > 0,
	}, nil
}

// FetchRemoteChanges updates remote tracking references without touching the worktree.
// Credential prompts are disabled so unattended runs fail fast instead of hanging.
func (service *Service) FetchRemoteChanges(executionContext context.Context, repositoryPath string, remoteName string) (SyncResult, error) {
	resolvedRemote := strings.TrimSpace(remoteName)
	if len(resolvedRemote) == 0 {
		resolvedRemote = service.remoteName
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitFetchSubcommandConstant, resolvedRemote},
		WorkingDirectory: repositoryPath,
		EnvironmentVariables: map[string]string{
			terminalPromptVariableNameConstant: terminalPromptDisabledValueConstant,
		},
	}

	_, fetchError := service.executor.ExecuteGit(executionContext, commandDetails)
	if fetchError != nil {
		return SyncResult{}, fetchError
	}

	return SyncResult{Success: true, Message: fmt.Sprintf(fetchSuccessMessageTemplateConstant, resolvedRemote)}, nil
}

// DetectConflicts lists worktree paths currently carrying unresolved conflict markers.
func (service *Service) DetectConflicts(executionContext context.Context, repositoryPath string) ([]string, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitDiffSubcommandConstant, gitDiffNameOnlyFlagConstant, gitDiffUnmergedFilterFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	diffResult, diffError := service.executor.ExecuteGit(executionContext, commandDetails)
	if diffError != nil {
		return nil, diffError
	}

	conflictPaths := make([]string, 0)
	for _, outputLine := range strings.Split(diffResult.StandardOutput, "\n") {
		trimmedLine := strings.TrimSpace(outputLine)
		if len(trimmedLine) > 0 {
			conflictPaths = append(conflictPaths, trimmedLine)
		}
	}

	return conflictPaths, nil
}

// MergeChanges merges the remote counterpart of the branch into the local branch.
// Conflicted merges return a failed result listing every conflicted path.
func (service *Service) MergeChanges(executionContext context.Context, repositoryPath string, branchName string) (SyncResult, error) {
	return service.integrateChanges(executionContext, repositoryPath, branchName, gitMergeSubcommandConstant, mergeSuccessMessageTemplateConstant, mergeConflictMessageTemplateConstant)
}

// RebaseChanges replays local commits on top of the remote counterpart of the branch.
// Conflicted rebases return a failed result listing every conflicted path.
func (service *Service) RebaseChanges(executionContext context.Context, repositoryPath string, branchName string) (SyncResult, error) {
	return service.integrateChanges(executionContext, repositoryPath, branchName, gitRebaseSubcommandConstant, rebaseSuccessMessageTemplateConstant, rebaseConflictMessageTemplateConstant)
}

// VerifySync reports whether the local branch and its remote counterpart point at the same commit.
func (service *Service) VerifySync(executionContext context.Context, repositoryPath string, branchName string) (bool, error) {
	branchStatus, statusError := service.CheckBranchStatus(executionContext, repositoryPath, branchName)
	if statusError != nil {
		return false, statusError
	}
	return branchStatus.InSync(), nil
}

// PushChanges publishes local commits to the remote counterpart of the branch.
// Credential prompts are disabled the same way fetches disable them.
func (service *Service) PushChanges(executionContext context.Context, repositoryPath string, branchName string) (SyncResult, error) {
	resolvedBranch, branchError := service.resolveBranch(executionContext, repositoryPath, branchName)
	if branchError != nil {
		return SyncResult{}, branchError
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitPushSubcommandConstant, service.remoteName, resolvedBranch},
		WorkingDirectory: repositoryPath,
		EnvironmentVariables: map[string]string{
			terminalPromptVariableNameConstant: terminalPromptDisabledValueConstant,
		},
	}

	_, pushError := service.executor.ExecuteGit(executionContext, commandDetails)
	if pushError != nil {
		return SyncResult{}, pushError
	}

	return SyncResult{Success: true, Message: fmt.Sprintf(pushSuccessMessageTemplateConstant, resolvedBranch, service.remoteName)}, nil
}

// ForcePushWithConfirmation force pushes the branch using a lease, refusing to
// run any subprocess unless the caller has explicitly confirmed the operation.
func (service *Service) ForcePushWithConfirmation(executionContext context.Context, repositoryPath string, branchName string, confirmed bool) (SyncResult, error) {
	resolvedBranch, branchError := service.resolveBranch(executionContext, repositoryPath, branchName)
	if branchError != nil {
		return SyncResult{}, branchError
	}

	if !confirmed {
		return SyncResult{Success: false, Message: fmt.Sprintf(forcePushRefusedMessageConstant, resolvedBranch)}, nil
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitPushSubcommandConstant, gitForceWithLeaseFlagConstant, service.remoteName, resolvedBranch},
		WorkingDirectory: repositoryPath,
	}

	_, pushError := service.executor.ExecuteGit(executionContext, commandDetails)
	if pushError != nil {
		return SyncResult{}, pushError
	}

	return SyncResult{Success: true, Message: fmt.Sprintf(forcePushSuccessTemplateConstant, resolvedBranch, service.remoteName)}, nil
}

func (service *Service) integrateChanges(executionContext context.Context, repositoryPath string, branchName string, subcommand string, successTemplate string, conflictTemplate string) (SyncResult, error) {
	resolvedBranch, branchError := service.resolveBranch(executionContext, repositoryPath, branchName)
	if branchError != nil {
		return SyncResult{}, branchError
	}

	remoteBranch := fmt.Sprintf(remoteBranchTemplateConstant, service.remoteName, resolvedBranch)
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{subcommand, remoteBranch},
		WorkingDirectory: repositoryPath,
	}

	_, integrationError := service.executor.ExecuteGit(executionContext, commandDetails)
	if integrationError == nil {
		return SyncResult{Success: true, Message: fmt.Sprintf(successTemplate, remoteBranch, resolvedBranch)}, nil
	}

	var commandFailure execshell.CommandFailedError
	if !errors.As(integrationError, &commandFailure) {
		return SyncResult{}, integrationError
	}

	conflictPaths, conflictError := service.DetectConflicts(executionContext, repositoryPath)
	if conflictError != nil {
		return SyncResult{}, conflictError
	}

	return SyncResult{
		Success:   false,
		Message:   fmt.Sprintf(conflictTemplate, remoteBranch),
		Conflicts: conflictPaths,
	}, nil
}

func (service *Service) resolveBranch(executionContext context.Context, repositoryPath string, branchName string) (string, error) {
	trimmedBranch := strings.TrimSpace(branchName)
	if len(trimmedBranch) > 0 {
		return trimmedBranch, nil
	}
	return service.repositoryManager.GetCurrentBranch(executionContext, repositoryPath)
}

func (service *Service) countDivergence(executionContext context.Context, repositoryPath string, remoteBranch string) (int, int, error) {
	revisionRange := fmt.Sprintf(revisionRangeTemplateConstant, remoteBranch, gitHeadReferenceConstant)
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitRevListSubcommandConstant, gitRevListLeftRightFlagConstant, gitRevListCountFlagConstant, revisionRange},
		WorkingDirectory: repositoryPath,
	}

	revListResult, revListError := service.executor.ExecuteGit(executionContext, commandDetails)
	if revListError != nil {
		return 0, 0, revListError
	}

	countFields := strings.Fields(strings.TrimSpace(revListResult.StandardOutput))
	if len(countFields) != 2 {
		return 0, 0, fmt.Errorf(divergenceParseErrorTemplateConstant, revListResult.StandardOutput)
	}

	behindCount, behindError := strconv.Atoi(countFields[0])
	if behindError != nil {
		return 0, 0, fmt.Errorf(divergenceParseErrorTemplateConstant, revListResult.StandardOutput)
	}
	aheadCount, aheadError := strconv.Atoi(countFields[1])
	if aheadError != nil {
		return 0, 0, fmt.Errorf(divergenceParseErrorTemplateConstant, revListResult.StandardOutput)
	}

	return behindCount, aheadCount, nil
}
