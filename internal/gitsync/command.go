package gitsync

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devops-foundry/gitgovern/internal/deps"
	"github.com/devops-foundry/gitgovern/internal/shared"
	flagutils "github.com/devops-foundry/gitgovern/internal/utils/flags"
	pathutils "github.com/devops-foundry/gitgovern/internal/utils/path"
)

const (
	commandUseConstant                   = "sync"
	commandShortDescriptionConstant      = "Synchronize the local branch with its remote counterpart"
	commandLongDescriptionConstant       = "sync inspects branch divergence against origin and reconciles it with a merge, a rebase, or a confirmed force push."
	branchFlagNameConstant               = "branch"
	branchFlagDescriptionConstant        = "Branch to synchronize (defaults to the checked-out branch)"
	strategyFlagNameConstant             = "strategy"
	strategyFlagDescriptionConstant      = "Synchronization strategy"
	assumeYesFlagNameConstant            = "yes"
	assumeYesFlagDescriptionConstant     = "Skip the force push confirmation prompt"
	requireCleanFlagNameConstant         = "require-clean"
	requireCleanFlagDescriptionConstant  = "Refuse to merge or rebase over uncommitted changes"
	dirtyWorktreeMessageConstant         = "worktree has uncommitted changes; commit or stash them before synchronizing"
	strategyMergeValueConstant           = "merge"
	strategyRebaseValueConstant          = "rebase"
	strategyForceValueConstant           = "force"
	unsupportedStrategyTemplateConstant  = "unsupported strategy %q; choose merge, rebase, or force"
	statusSummaryTemplateConstant        = "%s: %d ahead, %d behind %s\n"
	divergedNoticeConstant               = "branch has diverged from its remote counterpart\n"
	alreadySyncedMessageTemplateConstant = "%s is already in sync with %s\n"
	syncVerifiedMessageTemplateConstant  = "VERIFIED: %s matches %s\n"
	syncPendingMessageTemplateConstant   = "NOT SYNCED: %s still differs from %s\n"
	verificationFailedTemplateConstant   = "%s still differs from %s after synchronization"
	conflictListHeaderConstant           = "conflicted files:\n"
	conflictListEntryTemplateConstant    = "  %s\n"
	forcePushPromptTemplateConstant      = "Force push %s to %s? This rewrites remote history. [y/N] "
	repositoryPathDefaultConstant        = "."
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the sync command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  shared.GitExecutor
	GitRepositoryManager         shared.GitRepositoryManager
	ConfirmationPrompter         shared.ConfirmationPrompter
	HumanReadableLoggingProvider func() bool
}

// Build constructs the sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}

	command.Flags().String(branchFlagNameConstant, "", branchFlagDescriptionConstant)
	command.Flags().String(strategyFlagNameConstant, strategyMergeValueConstant, flagutils.FormatChoiceUsage(strategyMergeValueConstant, []string{strategyMergeValueConstant, strategyRebaseValueConstant, strategyForceValueConstant}, strategyFlagDescriptionConstant))
	command.Flags().Bool(assumeYesFlagNameConstant, false, assumeYesFlagDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), nil, requireCleanFlagNameConstant, "", true, requireCleanFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	repositoryPath := repositoryPathDefaultConstant
	if len(arguments) > 0 {
		if sanitizedPaths := pathutils.NewRepositoryPathSanitizer().Sanitize(arguments[:1]); len(sanitizedPaths) > 0 {
			repositoryPath = sanitizedPaths[0]
		}
	}

	branchName, branchFlagError := command.Flags().GetString(branchFlagNameConstant)
	if branchFlagError != nil {
		return branchFlagError
	}
	strategyValue, strategyFlagError := command.Flags().GetString(strategyFlagNameConstant)
	if strategyFlagError != nil {
		return strategyFlagError
	}
	assumeYes, assumeYesFlagError := command.Flags().GetBool(assumeYesFlagNameConstant)
	if assumeYesFlagError != nil {
		return assumeYesFlagError
	}
	requireClean, requireCleanFlagError := command.Flags().GetBool(requireCleanFlagNameConstant)
	if requireCleanFlagError != nil {
		return requireCleanFlagError
	}

	normalizedStrategy := strings.ToLower(strings.TrimSpace(strategyValue))
	switch normalizedStrategy {
	case strategyMergeValueConstant, strategyRebaseValueConstant, strategyForceValueConstant:
	default:
		return fmt.Errorf(unsupportedStrategyTemplateConstant, strategyValue)
	}

	service, repositoryManager, serviceError := builder.resolveService()
	if serviceError != nil {
		return serviceError
	}

	executionContext := command.Context()

	if requireClean && normalizedStrategy != strategyForceValueConstant {
		worktreeClean, worktreeError := repositoryManager.CheckCleanWorktree(executionContext, repositoryPath)
		if worktreeError != nil {
			return worktreeError
		}
		if !worktreeClean {
			return fmt.Errorf("%s", dirtyWorktreeMessageConstant)
		}
	}

	branchStatus, statusError := service.CheckBranchStatus(executionContext, repositoryPath, branchName)
	if statusError != nil {
		return statusError
	}

	fmt.Fprintf(command.OutOrStdout(), statusSummaryTemplateConstant, branchStatus.LocalBranch, branchStatus.AheadCount, branchStatus.BehindCount, branchStatus.RemoteBranch)
	if branchStatus.Diverged {
		fmt.Fprint(command.OutOrStdout(), divergedNoticeConstant)
	}

	if branchStatus.InSync() && normalizedStrategy != strategyForceValueConstant {
		fmt.Fprintf(command.OutOrStdout(), alreadySyncedMessageTemplateConstant, branchStatus.LocalBranch, branchStatus.RemoteBranch)
		return nil
	}

	if normalizedStrategy == strategyForceValueConstant {
		return builder.runForcePush(command, service, repositoryPath, branchStatus, assumeYes)
	}

	if _, fetchError := service.FetchRemoteChanges(executionContext, repositoryPath, ""); fetchError != nil {
		return fetchError
	}

	var integrationResult SyncResult
	var integrationError error
	if normalizedStrategy == strategyRebaseValueConstant {
		integrationResult, integrationError = service.RebaseChanges(executionContext, repositoryPath, branchStatus.LocalBranch)
	} else {
		integrationResult, integrationError = service.MergeChanges(executionContext, repositoryPath, branchStatus.LocalBranch)
	}
	if integrationError != nil {
		return integrationError
	}

	if !integrationResult.Success {
		fmt.Fprintln(command.OutOrStdout(), integrationResult.Message)
		if len(integrationResult.Conflicts) > 0 {
			fmt.Fprint(command.OutOrStdout(), conflictListHeaderConstant)
			for _, conflictPath := range integrationResult.Conflicts {
				fmt.Fprintf(command.OutOrStdout(), conflictListEntryTemplateConstant, conflictPath)
			}
		}
		return fmt.Errorf("%s", integrationResult.Message)
	}

	if branchStatus.AheadCount > 0 {
		pushResult, pushError := service.PushChanges(executionContext, repositoryPath, branchStatus.LocalBranch)
		if pushError != nil {
			return pushError
		}
		fmt.Fprintln(command.OutOrStdout(), pushResult.Message)
	}

	return builder.reportVerification(command, service, repositoryPath, branchStatus)
}

func (builder *CommandBuilder) runForcePush(command *cobra.Command, service *Service, repositoryPath string, branchStatus BranchStatus, assumeYes bool) error {
	confirmed := assumeYes
	if !confirmed {
		prompter := deps.ResolveConfirmationPrompter(builder.ConfirmationPrompter)
		promptText := fmt.Sprintf(forcePushPromptTemplateConstant, branchStatus.LocalBranch, branchStatus.RemoteBranch)
		promptedConfirmation, promptError := prompter.Confirm(promptText)
		if promptError != nil {
			return promptError
		}
		confirmed = promptedConfirmation
	}

	pushResult, pushError := service.ForcePushWithConfirmation(command.Context(), repositoryPath, branchStatus.LocalBranch, confirmed)
	if pushError != nil {
		return pushError
	}
	if !pushResult.Success {
		return fmt.Errorf("%s", pushResult.Message)
	}

	fmt.Fprintln(command.OutOrStdout(), pushResult.Message)
	return builder.reportVerification(command, service, repositoryPath, branchStatus)
}

func (builder *CommandBuilder) reportVerification(command *cobra.Command, service *Service, repositoryPath string, branchStatus BranchStatus) error {
	if _, fetchError := service.FetchRemoteChanges(command.Context(), repositoryPath, ""); fetchError != nil {
		return fetchError
	}

	synchronized, verifyError := service.VerifySync(command.Context(), repositoryPath, branchStatus.LocalBranch)
	if verifyError != nil {
		return verifyError
	}

	if synchronized {
		fmt.Fprintf(command.OutOrStdout(), syncVerifiedMessageTemplateConstant, branchStatus.LocalBranch, branchStatus.RemoteBranch)
		return nil
	}

	fmt.Fprintf(command.OutOrStdout(), syncPendingMessageTemplateConstant, branchStatus.LocalBranch, branchStatus.RemoteBranch)
	return fmt.Errorf(verificationFailedTemplateConstant, branchStatus.LocalBranch, branchStatus.RemoteBranch)
}

func (builder *CommandBuilder) resolveService() (*Service, shared.GitRepositoryManager, error) {
	logger := builder.resolveLogger()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	gitExecutor, executorError := deps.ResolveGitExecutor(builder.GitExecutor, logger, humanReadableLogging)
	if executorError != nil {
		return nil, nil, executorError
	}

	repositoryManager, managerError := deps.ResolveGitRepositoryManager(builder.GitRepositoryManager, gitExecutor)
	if managerError != nil {
		return nil, nil, managerError
	}

	service, creationError := NewService(Dependencies{Executor: gitExecutor, RepositoryManager: repositoryManager})
	if creationError != nil {
		return nil, nil, creationError
	}

	return service, repositoryManager, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider != nil {
		if logger := builder.LoggerProvider(); logger != nil {
			return logger
		}
	}
	return zap.NewNop()
}
