package setup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devops-foundry/gitgovern/internal/audit"
	"github.com/devops-foundry/gitgovern/internal/deps"
	"github.com/devops-foundry/gitgovern/internal/githubcli"
	"github.com/devops-foundry/gitgovern/internal/gitrepo"
	"github.com/devops-foundry/gitgovern/internal/protection"
	"github.com/devops-foundry/gitgovern/internal/shared"
	flagutils "github.com/devops-foundry/gitgovern/internal/utils/flags"
	pathutils "github.com/devops-foundry/gitgovern/internal/utils/path"
)

const (
	commandUseConstant                 = "automate-setup"
	commandShortDescriptionConstant    = "Run the full repository governance setup"
	commandLongDescriptionConstant     = "automate-setup reads a governance configuration file, inspects the repository, applies branch protection, configures secrets and environments, and finishes with a validation run. Steps whose targets already exist are skipped."
	configFlagNameConstant             = "config"
	configFlagDescriptionConstant      = "Path to the governance configuration file"
	configFlagDefaultConstant          = ".governance.json"
	skipExistingFlagNameConstant       = "skip-existing"
	skipExistingFlagDescription        = "Skip steps whose targets are already configured"
	workflowDirFlagNameConstant        = "workflow-dir"
	workflowDirFlagDescriptionConstant = "Directory containing workflow files"
	workflowDirFlagDefaultConstant     = ".github/workflows"
	ownerFlagNameConstant              = "owner"
	ownerFlagDescriptionConstant       = "Repository owner (defaults to the origin remote)"
	repoFlagNameConstant               = "repo"
	repoFlagDescriptionConstant        = "Repository name (defaults to the origin remote)"
	repositoryPathDefaultConstant      = "."
	stepSuccessfulLabelConstant        = "DONE"
	stepSkippedLabelConstant           = "SKIP"
	stepFailedLabelConstant            = "FAIL"
	stepLineTemplateConstant           = "%s %s: %s\n"
	summaryLineTemplateConstant        = "setup finished: %d successful, %d skipped, %d failed of %d steps\n"
	setupFailedMessageConstant         = "governance setup completed with failures"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// GovernanceGitHubAPI is the GitHub client surface required by the full setup run.
type GovernanceGitHubAPI interface {
	ResolveRepoMetadata(executionContext context.Context, repository string) (githubcli.RepositoryMetadata, error)
	GetBranchProtection(executionContext context.Context, repository string, branch string) (githubcli.BranchProtectionState, error)
	UpdateBranchProtection(executionContext context.Context, repository string, branch string, payload []byte) error
	ListSecrets(executionContext context.Context, repository string) ([]githubcli.RepositorySecret, error)
	SetSecret(executionContext context.Context, repository string, secretName string, secretValue string) error
	ListEnvironments(executionContext context.Context, repository string) ([]githubcli.RepositoryEnvironment, error)
	CreateEnvironment(executionContext context.Context, repository string, environment githubcli.EnvironmentConfiguration) error
}

// CommandConfiguration captures configuration file defaults for the setup command.
type CommandConfiguration struct {
	ConfigurationPath string `mapstructure:"configurationPath"`
	WorkflowDirectory string `mapstructure:"workflowDirectory"`
}

// CommandBuilder assembles the automate-setup command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  shared.GitExecutor
	GitRepositoryManager         shared.GitRepositoryManager
	GitHubClient                 GovernanceGitHubAPI
	SecretReader                 shared.SecretReader
	FileSystem                   shared.FileSystem
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the automate-setup command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}

	command.Flags().String(configFlagNameConstant, "", configFlagDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), nil, skipExistingFlagNameConstant, "", true, skipExistingFlagDescription)
	command.Flags().String(workflowDirFlagNameConstant, "", workflowDirFlagDescriptionConstant)
	command.Flags().String(ownerFlagNameConstant, "", ownerFlagDescriptionConstant)
	command.Flags().String(repoFlagNameConstant, "", repoFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	configurationPath, configFlagError := command.Flags().GetString(configFlagNameConstant)
	if configFlagError != nil {
		return configFlagError
	}
	if len(strings.TrimSpace(configurationPath)) == 0 {
		configurationPath = strings.TrimSpace(configuration.ConfigurationPath)
	}
	if len(configurationPath) == 0 {
		configurationPath = configFlagDefaultConstant
	}

	skipExisting, skipFlagError := command.Flags().GetBool(skipExistingFlagNameConstant)
	if skipFlagError != nil {
		return skipFlagError
	}

	workflowDirectory, workflowFlagError := command.Flags().GetString(workflowDirFlagNameConstant)
	if workflowFlagError != nil {
		return workflowFlagError
	}
	if len(strings.TrimSpace(workflowDirectory)) == 0 {
		workflowDirectory = strings.TrimSpace(configuration.WorkflowDirectory)
	}
	if len(workflowDirectory) == 0 {
		workflowDirectory = workflowDirFlagDefaultConstant
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

	repositoryManager, managerError := deps.ResolveGitRepositoryManager(builder.GitRepositoryManager, gitExecutor)
	if managerError != nil {
		return managerError
	}

	if len(strings.TrimSpace(ownerName)) == 0 || len(strings.TrimSpace(repositoryName)) == 0 {
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

	fileSystem := deps.ResolveFileSystem(builder.FileSystem)
	secretReader := deps.ResolveSecretReader(builder.SecretReader)

	protectionService, protectionError := protection.NewService(protection.Dependencies{GitHubClient: githubClient})
	if protectionError != nil {
		return protectionError
	}

	validator, validatorError := audit.NewService(audit.Dependencies{GitHubClient: githubClient, FileSystem: fileSystem})
	if validatorError != nil {
		return validatorError
	}

	service, serviceError := NewService(Dependencies{
		GitHubClient:      githubClient,
		ProtectionService: protectionService,
		Validator:         validator,
		SecretReader:      secretReader,
		FileSystem:        fileSystem,
		RepositoryManager: repositoryManager,
	})
	if serviceError != nil {
		return serviceError
	}

	summary, setupError := service.AutomateSetup(command.Context(), AutomateOptions{
		ConfigurationPath: configurationPath,
		RepositoryPath:    repositoryPath,
		Owner:             ownerName,
		Repository:        repositoryName,
		WorkflowDirectory: workflowDirectory,
		SkipExisting:      skipExisting,
	})
	if setupError != nil {
		return setupError
	}

	for _, stepResult := range summary.Results {
		fmt.Fprintf(command.OutOrStdout(), stepLineTemplateConstant, stepLabel(stepResult), stepResult.Name, stepResult.Message)
	}
	fmt.Fprintf(command.OutOrStdout(), summaryLineTemplateConstant, summary.Successful, summary.Skipped, summary.Failed, summary.TotalSteps)

	if summary.Failed > 0 {
		return errors.New(setupFailedMessageConstant)
	}
	return nil
}

func stepLabel(stepResult StepResult) string {
	switch {
	case stepResult.Skipped:
		return stepSkippedLabelConstant
	case !stepResult.Success:
		return stepFailedLabelConstant
	default:
		return stepSuccessfulLabelConstant
	}
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

var _ GovernanceGitHubAPI = (*githubcli.Client)(nil)
