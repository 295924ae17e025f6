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
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitRevListSubcommandNameConstant  = "rev-list"
	gitFetchSubcommandNameConstant    = "fetch"
	gitMergeSubcommandNameConstant    = "merge"
	gitRebaseSubcommandNameConstant   = "rebase"
	gitPushSubcommandNameConstant     = "push"
	gitStatusSubcommandNameConstant   = "status"
	gitDiffSubcommandNameConstant     = "diff"
	gitAddSubcommandNameConstant      = "add"
	gitCommitSubcommandNameConstant   = "commit"
	gitAbbrevRefFlagConstant          = "--abbrev-ref"
	gitCountFlagConstant              = "--count"
	gitForceWithLeaseFlagConstant     = "--force-with-lease"
	gitMessageFlagConstant            = "-m"
)

const (
	gitCurrentBranchStartTemplateConstant    = "Identifying current branch in %s"
	gitCurrentBranchSuccessTemplateConstant  = "Current branch in %s is %s"
	gitCurrentBranchDetachedTemplateConstant = "%s is in a detached HEAD state"
	gitRevisionStartTemplateConstant         = "Resolving %s in %s"
	gitRevisionSuccessTemplateConstant       = "%s in %s resolved to %s"
	gitRevisionEmptySuccessTemplateConstant  = "%s in %s did not resolve to a revision"
	gitDivergenceStartTemplateConstant       = "Counting divergence for %s in %s"
	gitDivergenceSuccessTemplateConstant     = "Counted divergence for %s in %s"
	gitFetchStartTemplateConstant            = "Fetching from %s in %s"
	gitFetchSuccessTemplateConstant          = "Fetched from %s in %s"
	gitMergeStartTemplateConstant            = "Merging %s in %s"
	gitMergeSuccessTemplateConstant          = "Merged %s in %s"
	gitRebaseStartTemplateConstant           = "Rebasing onto %s in %s"
	gitRebaseSuccessTemplateConstant         = "Rebased onto %s in %s"
	gitPushStartTemplateConstant             = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant           = "Pushed %s to %s from %s"
	gitForcePushStartTemplateConstant        = "Force pushing %s to %s from %s"
	gitForcePushSuccessTemplateConstant      = "Force pushed %s to %s from %s"
	gitStatusStartTemplateConstant           = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant         = "Collected working tree status for %s"
	gitConflictScanStartTemplateConstant     = "Scanning for unresolved conflicts in %s"
	gitConflictScanSuccessTemplateConstant   = "Scanned for unresolved conflicts in %s"
	gitAddStartTemplateConstant              = "Staging %s in %s"
	gitAddSuccessTemplateConstant            = "Staged %s in %s"
	gitCommitStartTemplateConstant           = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant         = "Created commit in %s with message %q"
)

const (
	githubAPICommandNameConstant            = "api"
	githubSecretSubcommandNameConstant      = "secret"
	githubRepoSubcommandNameConstant        = "repo"
	githubViewSubcommandNameConstant        = "view"
	githubListSubcommandNameConstant        = "list"
	githubSetSubcommandNameConstant         = "set"
	githubRepoFlagNameConstant              = "--repo"
	githubMethodFlagConstant                = "-X"
	githubProtectionEndpointSuffixConstant  = "/protection"
	githubBranchesEndpointSubstringConstant = "/branches/"
	githubEnvironmentsEndpointSubstring     = "/environments"
	githubWriteMethodConstant               = "PUT"
	githubCurrentRepositoryLabelConstant    = "current repository"
)

const (
	githubRepoViewStartTemplateConstant          = "Retrieving repository details for %s"
	githubRepoViewSuccessTemplateConstant        = "Retrieved repository details for %s"
	githubProtectionReadStartTemplateConstant    = "Checking branch protection for %s on %s"
	githubProtectionReadSuccessTemplateConstant  = "Checked branch protection for %s on %s"
	githubProtectionWriteStartTemplateConstant   = "Applying branch protection for %s on %s"
	githubProtectionWriteSuccessTemplateConstant = "Applied branch protection for %s on %s"
	githubEnvironmentReadStartTemplateConstant   = "Listing deployment environments for %s"
	githubEnvironmentReadSuccessTemplateConstant = "Listed deployment environments for %s"
	githubEnvironmentWriteStartTemplateConstant  = "Configuring deployment environment on %s"
	githubEnvironmentWriteSuccessTemplate        = "Configured deployment environment on %s"
	githubSecretListStartTemplateConstant        = "Listing actions secrets for %s"
	githubSecretListSuccessTemplateConstant      = "Listed actions secrets for %s"
	githubSecretSetStartTemplateConstant         = "Storing actions secret %s on %s"
	githubSecretSetSuccessTemplateConstant       = "Stored actions secret %s on %s"
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
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(command, result, failure, stage)
	case gitRevListSubcommandNameConstant:
		return formatter.describeGitRevListMessage(command, result, failure, stage)
	case gitFetchSubcommandNameConstant:
		return formatter.describeTargetedGitMessage(command, result, failure, stage, gitFetchStartTemplateConstant, gitFetchSuccessTemplateConstant)
	case gitMergeSubcommandNameConstant:
		return formatter.describeTargetedGitMessage(command, result, failure, stage, gitMergeStartTemplateConstant, gitMergeSuccessTemplateConstant)
	case gitRebaseSubcommandNameConstant:
		return formatter.describeTargetedGitMessage(command, result, failure, stage, gitRebaseStartTemplateConstant, gitRebaseSuccessTemplateConstant)
	case gitPushSubcommandNameConstant:
		return formatter.describeGitPushMessage(command, result, failure, stage)
	case gitStatusSubcommandNameConstant:
		return formatter.describeWorkingDirectoryMessage(command, result, failure, stage, gitStatusStartTemplateConstant, gitStatusSuccessTemplateConstant)
	case gitDiffSubcommandNameConstant:
		return formatter.describeWorkingDirectoryMessage(command, result, failure, stage, gitConflictScanStartTemplateConstant, gitConflictScanSuccessTemplateConstant)
	case gitAddSubcommandNameConstant:
		return formatter.describeGitAddMessage(command, result, failure, stage)
	case gitCommitSubcommandNameConstant:
		return formatter.describeGitCommitMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	if containsArgument(arguments, gitAbbrevRefFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitCurrentBranchStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			trimmedOutput := strings.TrimSpace(result.StandardOutput)
			if len(trimmedOutput) == 0 || strings.EqualFold(trimmedOutput, "HEAD") {
				return fmt.Sprintf(gitCurrentBranchDetachedTemplateConstant, workingDirectory)
			}
			return fmt.Sprintf(gitCurrentBranchSuccessTemplateConstant, workingDirectory, trimmedOutput)
		default:
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
	}

	reference := formatter.lastNonFlagArgument(arguments)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitRevisionStartTemplateConstant, reference, workingDirectory)
	case messageStageSuccess:
		trimmedOutput := strings.TrimSpace(result.StandardOutput)
		if len(trimmedOutput) == 0 {
			return fmt.Sprintf(gitRevisionEmptySuccessTemplateConstant, reference, workingDirectory)
		}
		return fmt.Sprintf(gitRevisionSuccessTemplateConstant, reference, workingDirectory, trimmedOutput)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRevListMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if !containsArgument(command.Details.Arguments, gitCountFlagConstant) {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	workingDirectory := formatter.describeWorkingDirectory(command)
	comparedReference := formatter.lastNonFlagArgument(command.Details.Arguments)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitDivergenceStartTemplateConstant, comparedReference, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitDivergenceSuccessTemplateConstant, comparedReference, workingDirectory)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeTargetedGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage, startTemplate string, successTemplate string) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	target := formatter.ensureValue(formatter.firstNonFlagArgument(command.Details.Arguments[1:]))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startTemplate, target, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(successTemplate, target, workingDirectory)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitPushMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)
	remoteName := formatter.ensureValue(formatter.firstNonFlagArgument(arguments[1:]))
	branchReference := formatter.ensureValue(formatter.lastNonFlagArgument(arguments[1:]))
	forced := containsArgument(arguments, gitForceWithLeaseFlagConstant)

	startTemplate := gitPushStartTemplateConstant
	successTemplate := gitPushSuccessTemplateConstant
	if forced {
		startTemplate = gitForcePushStartTemplateConstant
		successTemplate = gitForcePushSuccessTemplateConstant
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startTemplate, branchReference, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(successTemplate, branchReference, remoteName, workingDirectory)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeWorkingDirectoryMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage, startTemplate string, successTemplate string) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startTemplate, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(successTemplate, workingDirectory)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitAddMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	targetPath := formatter.ensureValue(formatter.firstNonFlagArgument(command.Details.Arguments[1:]))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitAddStartTemplateConstant, targetPath, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitAddSuccessTemplateConstant, targetPath, workingDirectory)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCommitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	commitMessage := findFlagValue(command.Details.Arguments, gitMessageFlagConstant)
	if len(commitMessage) == 0 {
		commitMessage = fallbackUnknownValueLabelConstant
	}
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCommitStartTemplateConstant, workingDirectory, commitMessage)
	case messageStageSuccess:
		return fmt.Sprintf(gitCommitSuccessTemplateConstant, workingDirectory, commitMessage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	primaryArgument := strings.TrimSpace(arguments[0])
	switch primaryArgument {
	case githubAPICommandNameConstant:
		return formatter.describeGitHubAPIMessage(command, result, failure, stage)
	case githubSecretSubcommandNameConstant:
		return formatter.describeGitHubSecretMessage(command, result, failure, stage)
	case githubRepoSubcommandNameConstant:
		return formatter.describeGitHubRepoMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitHubAPIMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 2 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	endpoint := strings.TrimSpace(arguments[1])
	method := strings.TrimSpace(findFlagValue(arguments, githubMethodFlagConstant))
	writeRequested := method == githubWriteMethodConstant

	switch {
	case strings.Contains(endpoint, githubBranchesEndpointSubstringConstant) && strings.HasSuffix(endpoint, githubProtectionEndpointSuffixConstant):
		repository, branch := formatter.extractRepositoryAndBranchFromProtectionEndpoint(endpoint)
		startTemplate := githubProtectionReadStartTemplateConstant
		successTemplate := githubProtectionReadSuccessTemplateConstant
		if writeRequested {
			startTemplate = githubProtectionWriteStartTemplateConstant
			successTemplate = githubProtectionWriteSuccessTemplateConstant
		}
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(startTemplate, branch, repository)
		case messageStageSuccess:
			return fmt.Sprintf(successTemplate, branch, repository)
		default:
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
	case strings.Contains(endpoint, githubEnvironmentsEndpointSubstring):
		repository := formatter.extractRepositoryFromEndpoint(endpoint)
		startTemplate := githubEnvironmentReadStartTemplateConstant
		successTemplate := githubEnvironmentReadSuccessTemplateConstant
		if writeRequested {
			startTemplate = githubEnvironmentWriteStartTemplateConstant
			successTemplate = githubEnvironmentWriteSuccessTemplate
		}
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(startTemplate, repository)
		case messageStageSuccess:
			return fmt.Sprintf(successTemplate, repository)
		default:
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitHubSecretMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 2 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	repository := strings.TrimSpace(findFlagValue(arguments, githubRepoFlagNameConstant))
	if len(repository) == 0 {
		repository = githubCurrentRepositoryLabelConstant
	}

	subcommand := strings.TrimSpace(arguments[1])
	switch subcommand {
	case githubListSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubSecretListStartTemplateConstant, repository)
		case messageStageSuccess:
			return fmt.Sprintf(githubSecretListSuccessTemplateConstant, repository)
		default:
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
	case githubSetSubcommandNameConstant:
		secretName := formatter.ensureValue(formatter.firstNonFlagArgument(arguments[2:]))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubSecretSetStartTemplateConstant, secretName, repository)
		case messageStageSuccess:
			return fmt.Sprintf(githubSecretSetSuccessTemplateConstant, secretName, repository)
		default:
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitHubRepoMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 3 || strings.TrimSpace(arguments[1]) != githubViewSubcommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	repository := formatter.ensureValue(strings.TrimSpace(arguments[2]))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(githubRepoViewStartTemplateConstant, repository)
	case messageStageSuccess:
		return fmt.Sprintf(githubRepoViewSuccessTemplateConstant, repository)
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
	commandLabel := formatCommandLabel(command)
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
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

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmedValue
}

func (formatter CommandMessageFormatter) firstNonFlagArgument(arguments []string) string {
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, "-") {
			continue
		}
		return trimmedArgument
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) lastNonFlagArgument(arguments []string) string {
	for argumentIndex := len(arguments) - 1; argumentIndex >= 0; argumentIndex-- {
		trimmedArgument := strings.TrimSpace(arguments[argumentIndex])
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, "-") {
			continue
		}
		return trimmedArgument
	}
	return fallbackUnknownValueLabelConstant
}

func (formatter CommandMessageFormatter) extractRepositoryFromEndpoint(endpoint string) string {
	trimmedEndpoint := strings.TrimPrefix(strings.TrimSpace(endpoint), "repos/")
	pathComponents := strings.Split(trimmedEndpoint, "/")
	if len(pathComponents) < 2 {
		return githubCurrentRepositoryLabelConstant
	}
	return strings.Join(pathComponents[:2], "/")
}

func (formatter CommandMessageFormatter) extractRepositoryAndBranchFromProtectionEndpoint(endpoint string) (string, string) {
	trimmedEndpoint := strings.TrimPrefix(strings.TrimSpace(endpoint), "repos/")
	pathComponents := strings.Split(trimmedEndpoint, "/")
	if len(pathComponents) < 4 {
		return formatter.extractRepositoryFromEndpoint(endpoint), fallbackUnknownValueLabelConstant
	}
	repository := strings.Join(pathComponents[:2], "/")
	branch := pathComponents[3]
	return repository, branch
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		if strings.TrimSpace(arguments[argumentIndex]) == flag && argumentIndex+1 < len(arguments) {
			return strings.TrimSpace(arguments[argumentIndex+1])
		}
	}
	return emptyStringConstant
}
