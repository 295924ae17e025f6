package protection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devops-foundry/gitgovern/internal/deps"
	"github.com/devops-foundry/gitgovern/internal/gitrepo"
	"github.com/devops-foundry/gitgovern/internal/shared"
	pathutils "github.com/devops-foundry/gitgovern/internal/utils/path"
)

const (
	commandUseConstant                = "setup-branch-protection"
	commandShortDescriptionConstant   = "Apply branch protection rules to a GitHub branch"
	commandLongDescriptionConstant    = "setup-branch-protection builds the protection payload from governance settings, validates it locally, applies it through the GitHub CLI, and verifies the rules took effect."
	branchFlagNameConstant            = "branch"
	branchFlagDescriptionConstant     = "Branch to protect"
	ownerFlagNameConstant             = "owner"
	ownerFlagDescriptionConstant      = "Repository owner (defaults to the origin remote)"
	repoFlagNameConstant              = "repo"
	repoFlagDescriptionConstant       = "Repository name (defaults to the origin remote)"
	missingBranchMessageConstant      = "branch name is required; supply --branch or configure branchProtection.branch"
	validationFailureHeaderConstant   = "payload rejected by local validation:\n"
	validationFailureEntryTemplate    = "  %s\n"
	apiFailureTemplateConstant        = "protection update failed (%s): %s\nguidance: %s"
	protectionAppliedTemplateConstant = "PROTECTED: %s on %s/%s\n"
	verificationFailedMessageConstant = "protection rules were accepted but are not reported active; inspect the branch settings on GitHub"
	repositoryPathDefaultConstant     = "."
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandConfiguration captures configuration file defaults for the protection command.
type CommandConfiguration struct {
	BranchProtection ProtectionSettings `mapstructure:"branchProtection"`
}

// CommandBuilder assembles the setup-branch-protection command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  shared.GitExecutor
	GitRepositoryManager         shared.GitRepositoryManager
	GitHubClient                 GitHubProtectionAPI
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the setup-branch-protection command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}

	command.Flags().String(branchFlagNameConstant, "", branchFlagDescriptionConstant)
	command.Flags().String(ownerFlagNameConstant, "", ownerFlagDescriptionConstant)
	command.Flags().String(repoFlagNameConstant, "", repoFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	branchName, branchFlagError := command.Flags().GetString(branchFlagNameConstant)
	if branchFlagError != nil {
		return branchFlagError
	}
	if len(strings.TrimSpace(branchName)) == 0 {
		branchName = strings.TrimSpace(configuration.BranchProtection.Branch)
	}
	if len(branchName) == 0 {
		return errors.New(missingBranchMessageConstant)
	}

	ownerName, ownerFlagError := command.Flags().GetString(ownerFlagNameConstant)
	if ownerFlagError != nil {
		return ownerFlagError
	}
	repositoryName, repoFlagError := command.Flags().GetString(repoFlagNameConstant)
	if repoFlagError != nil {
		return repoFlagError
	}

	repositoryPath := repositoryPathDefaultConstant
	if len(arguments) > 0 {
		if sanitizedPaths := pathutils.NewRepositoryPathSanitizer().Sanitize(arguments[:1]); len(sanitizedPaths) > 0 {
			repositoryPath = sanitizedPaths[0]
		}
	}

	logger := builder.resolveLogger()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	gitExecutor, executorError := deps.ResolveGitExecutor(builder.GitExecutor, logger, humanReadableLogging)
	if executorError != nil {
		return executorError
	}

	if len(strings.TrimSpace(ownerName)) == 0 || len(strings.TrimSpace(repositoryName)) == 0 {
		repositoryManager, managerError := deps.ResolveGitRepositoryManager(builder.GitRepositoryManager, gitExecutor)
		if managerError != nil {
			return managerError
		}

		remoteURLValue, remoteError := repositoryManager.GetRemoteURL(command.Context(), repositoryPath, shared.OriginRemoteNameConstant)
		if remoteError != nil {
			return remoteError
		}
		parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURLValue)
		if parseError != nil {
			return parseError
		}
		if len(strings.TrimSpace(ownerName)) == 0 {
			ownerName = parsedRemote.Owner
		}
		if len(strings.TrimSpace(repositoryName)) == 0 {
			repositoryName = parsedRemote.Repository
		}
	}

	githubClient := builder.GitHubClient
	if githubClient == nil {
		resolvedClient, clientError := deps.ResolveGitHubClient(nil, gitExecutor)
		if clientError != nil {
			return clientError
		}
		githubClient = resolvedClient
	}

	service, serviceError := NewService(Dependencies{GitHubClient: githubClient})
	if serviceError != nil {
		return serviceError
	}

	payload := BuildProtectionPayload(configuration.BranchProtection)
	applyResult, applyError := service.ApplyProtectionRules(command.Context(), ownerName, repositoryName, branchName, payload)
	if applyError != nil {
		return applyError
	}

	if !applyResult.Success {
		if len(applyResult.ValidationErrors) > 0 {
			fmt.Fprint(command.OutOrStdout(), validationFailureHeaderConstant)
			for _, validationError := range applyResult.ValidationErrors {
				fmt.Fprintf(command.OutOrStdout(), validationFailureEntryTemplate, validationError.Error())
			}
			return errors.New(localValidationFailedMessageConstant)
		}
		if applyResult.APIError != nil {
			return fmt.Errorf(apiFailureTemplateConstant, applyResult.APIError.Category, applyResult.APIError.OriginalMessage, applyResult.APIError.Guidance)
		}
		return errors.New(applyResult.Message)
	}

	if applyResult.ShouldVerify {
		protectionActive, verifyError := service.VerifyProtectionActive(command.Context(), ownerName, repositoryName, branchName)
		if verifyError != nil {
			return verifyError
		}
		if !protectionActive {
			return errors.New(verificationFailedMessageConstant)
		}
	}

	fmt.Fprintf(command.OutOrStdout(), protectionAppliedTemplateConstant, branchName, ownerName, repositoryName)
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider != nil {
		return builder.ConfigurationProvider()
	}
	return CommandConfiguration{}
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider != nil {
		if logger := builder.LoggerProvider(); logger != nil {
			return logger
		}
	}
	return zap.NewNop()
}
