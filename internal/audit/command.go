package audit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devops-foundry/gitgovern/internal/deps"
	"github.com/devops-foundry/gitgovern/internal/gitrepo"
	"github.com/devops-foundry/gitgovern/internal/shared"
)

const (
	commandUseConstant                 = "validate-setup"
	commandShortDescriptionConstant    = "Validate repository governance state"
	commandLongDescriptionConstant     = "validate-setup checks secrets, branch protection, workflow files, and deployment environments against the governance configuration and reports pass/fail/warning outcomes with remediation."
	verboseFlagNameConstant            = "verbose"
	verboseFlagDescriptionConstant     = "Print every check outcome instead of only failures"
	branchFlagNameConstant             = "branch"
	branchFlagDescriptionConstant      = "Branch whose protection is validated"
	workflowDirFlagNameConstant        = "workflow-dir"
	workflowDirFlagDescriptionConstant = "Directory containing workflow files"
	defaultWorkflowDirectoryConstant   = ".github/workflows"
	defaultBranchNameConstant          = "main"
	checkLineTemplateConstant          = "%s %s: %s\n"
	remediationLineTemplateConstant    = "      remediation: %s\n"
	summaryLineTemplateConstant        = "%d passed, %d failed, %d warnings\n"
	generatedAtLineTemplateConstant    = "validated at %s\n"
	reportFailedMessageConstant        = "governance validation failed"
	passMarkerConstant                 = "PASS"
	failMarkerConstant                 = "FAIL"
	warningMarkerConstant              = "WARN"
	repositoryPathDefaultConstant      = "."
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandConfiguration captures configuration file defaults for the validate command.
type CommandConfiguration struct {
	Branch               string
	RequiredSecrets      []string
	RequiredEnvironments []string
	WorkflowDirectory    string
}

// CommandBuilder assembles the validate-setup command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  shared.GitExecutor
	GitRepositoryManager         shared.GitRepositoryManager
	GitHubClient                 GitHubInspectionAPI
	FileSystem                   shared.FileSystem
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the validate-setup command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}

	command.Flags().Bool(verboseFlagNameConstant, false, verboseFlagDescriptionConstant)
	command.Flags().String(branchFlagNameConstant, "", branchFlagDescriptionConstant)
	command.Flags().String(workflowDirFlagNameConstant, "", workflowDirFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	verboseRequested, verboseFlagError := command.Flags().GetBool(verboseFlagNameConstant)
	if verboseFlagError != nil {
		return verboseFlagError
	}
	branchName, branchFlagError := command.Flags().GetString(branchFlagNameConstant)
	if branchFlagError != nil {
		return branchFlagError
	}
	workflowDirectory, workflowDirFlagError := command.Flags().GetString(workflowDirFlagNameConstant)
	if workflowDirFlagError != nil {
		return workflowDirFlagError
	}

	if len(strings.TrimSpace(branchName)) == 0 {
		branchName = strings.TrimSpace(configuration.Branch)
	}
	if len(branchName) == 0 {
		branchName = defaultBranchNameConstant
	}
	if len(strings.TrimSpace(workflowDirectory)) == 0 {
		workflowDirectory = strings.TrimSpace(configuration.WorkflowDirectory)
	}
	if len(workflowDirectory) == 0 {
		workflowDirectory = defaultWorkflowDirectoryConstant
	}

	repositoryPath := repositoryPathDefaultConstant
	if len(arguments) > 0 && len(strings.TrimSpace(arguments[0])) > 0 {
		repositoryPath = strings.TrimSpace(arguments[0])
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

	remoteURLValue, remoteError := repositoryManager.GetRemoteURL(command.Context(), repositoryPath, shared.OriginRemoteNameConstant)
	if remoteError != nil {
		return remoteError
	}
	parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURLValue)
	if parseError != nil {
		return parseError
	}
	repositoryIdentifier := fmt.Sprintf("%s/%s", parsedRemote.Owner, parsedRemote.Repository)

	githubClient := builder.GitHubClient
	if githubClient == nil {
		resolvedClient, clientError := deps.ResolveGitHubClient(nil, gitExecutor)
		if clientError != nil {
			return clientError
		}
		githubClient = resolvedClient
	}

	service, serviceError := NewService(Dependencies{
		GitHubClient: githubClient,
		FileSystem:   deps.ResolveFileSystem(builder.FileSystem),
	})
	if serviceError != nil {
		return serviceError
	}

	validationResult := service.GenerateReport(command.Context(), ReportOptions{
		Repository:           repositoryIdentifier,
		Branch:               branchName,
		RequiredSecrets:      configuration.RequiredSecrets,
		RequiredEnvironments: configuration.RequiredEnvironments,
		WorkflowDirectory:    workflowDirectory,
	})

	if verboseRequested {
		fmt.Fprintf(command.OutOrStdout(), generatedAtLineTemplateConstant, validationResult.GeneratedAt.Format(time.RFC3339))
	}

	for _, check := range validationResult.Checks {
		if !verboseRequested && check.Status == CheckStatusPass {
			continue
		}
		fmt.Fprintf(command.OutOrStdout(), checkLineTemplateConstant, statusMarker(check.Status), check.Name, check.Message)
		if check.Status == CheckStatusFail && len(check.Remediation) > 0 {
			fmt.Fprintf(command.OutOrStdout(), remediationLineTemplateConstant, check.Remediation)
		}
	}
	fmt.Fprintf(command.OutOrStdout(), summaryLineTemplateConstant, validationResult.Summary.Passed, validationResult.Summary.Failed, validationResult.Summary.Warnings)

	if !validationResult.Passed {
		return errors.New(reportFailedMessageConstant)
	}
	return nil
}

func statusMarker(status CheckStatus) string {
	switch status {
	case CheckStatusPass:
		return passMarkerConstant
	case CheckStatusFail:
		return failMarkerConstant
	default:
		return warningMarkerConstant
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
