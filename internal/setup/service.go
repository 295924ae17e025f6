package setup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/devops-foundry/gitgovern/internal/audit"
	"github.com/devops-foundry/gitgovern/internal/githubcli"
	"github.com/devops-foundry/gitgovern/internal/protection"
	"github.com/devops-foundry/gitgovern/internal/shared"
)

const (
	branchProtectionStepNameConstant          = "branch-protection"
	secretsStepNameConstant                   = "secrets"
	environmentsStepNameConstant              = "environments"
	validationStepNameConstant                = "validation"
	clientNotConfiguredMessageConstant        = "github client dependency is not configured"
	protectionNotConfiguredMessageConstant    = "protection service dependency is not configured"
	validatorNotConfiguredMessageConstant     = "validator dependency is not configured"
	secretReaderNotConfiguredMessageConstant  = "secret reader dependency is not configured"
	filesystemNotConfiguredMessageConstant    = "filesystem dependency is not configured"
	managerNotConfiguredMessageConstant       = "repository manager dependency is not configured"
	protectionActiveSkipMessageConstant       = "branch protection already active on %s"
	protectionAppliedMessageConstant          = "branch protection applied to %s"
	secretsPresentSkipMessageConstant         = "all required secrets are configured"
	secretsConfiguredMessageConstant          = "configured secrets: %s"
	secretPromptTemplateConstant              = "Enter value for secret %s: "
	secretFailureTemplateConstant             = "%s: %s"
	secretsFailedMessageTemplateConstant      = "failed to configure secrets: %s"
	environmentsPresentSkipMessageConstant    = "all required environments are configured"
	environmentsConfiguredMessageConstant     = "configured environments: %s"
	environmentsFailedMessageTemplateConstant = "failed to configure environments: %s"
	noEnvironmentsConfiguredMessageConstant   = "no environments are required"
	validationPassedMessageTemplateConstant   = "validation passed: %d checks succeeded"
	validationFailedMessageTemplateConstant   = "validation failed: %d passed, %d failed, %d warnings"
	repositoryIdentifierTemplateConstant      = "%s/%s"
	detectStateErrorTemplateConstant          = "failed to inspect %s: %w"
	workflowExtensionYMLConstant              = ".yml"
	workflowExtensionYAMLConstant             = ".yaml"
	listSeparatorConstant                     = ", "
)

// ErrClientNotConfigured indicates the orchestrator was constructed without a GitHub client.
var ErrClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)

// ErrProtectionServiceNotConfigured indicates the orchestrator was constructed without a protection service.
var ErrProtectionServiceNotConfigured = errors.New(protectionNotConfiguredMessageConstant)

// ErrValidatorNotConfigured indicates the orchestrator was constructed without a validator.
var ErrValidatorNotConfigured = errors.New(validatorNotConfiguredMessageConstant)

// ErrSecretReaderNotConfigured indicates the orchestrator was constructed without a secret reader.
var ErrSecretReaderNotConfigured = errors.New(secretReaderNotConfiguredMessageConstant)

// ErrFileSystemNotConfigured indicates the orchestrator was constructed without a filesystem.
var ErrFileSystemNotConfigured = errors.New(filesystemNotConfiguredMessageConstant)

// ErrRepositoryManagerNotConfigured indicates the orchestrator was constructed without a repository manager.
var ErrRepositoryManagerNotConfigured = errors.New(managerNotConfiguredMessageConstant)

// GitHubSetupAPI is the subset of the GitHub client used by the orchestrator.
type GitHubSetupAPI interface {
	ResolveRepoMetadata(executionContext context.Context, repository string) (githubcli.RepositoryMetadata, error)
	GetBranchProtection(executionContext context.Context, repository string, branch string) (githubcli.BranchProtectionState, error)
	ListSecrets(executionContext context.Context, repository string) ([]githubcli.RepositorySecret, error)
	SetSecret(executionContext context.Context, repository string, secretName string, secretValue string) error
	ListEnvironments(executionContext context.Context, repository string) ([]githubcli.RepositoryEnvironment, error)
	CreateEnvironment(executionContext context.Context, repository string, environment githubcli.EnvironmentConfiguration) error
}

// ProtectionApplier is the subset of the protection service used by the orchestrator.
type ProtectionApplier interface {
	ApplyProtectionRules(executionContext context.Context, owner string, repository string, branch string, payload protection.ProtectionPayload) (protection.ApplyResult, error)
}

// ValidationReporter is the subset of the validator used by the orchestrator.
type ValidationReporter interface {
	GenerateReport(executionContext context.Context, options audit.ReportOptions) audit.ValidationResult
}

// SetupState captures the governance features currently present on a repository.
type SetupState struct {
	RepositoryExists       bool
	RemoteConfigured       bool
	ProtectionActive       bool
	ConfiguredSecrets      []string
	ConfiguredEnvironments []string
	WorkflowsPresent       bool
}

// HasSecret reports whether the named secret is already configured.
func (state SetupState) HasSecret(secretName string) bool {
	for _, configuredSecret := range state.ConfiguredSecrets {
		if configuredSecret == secretName {
			return true
		}
	}
	return false
}

// HasEnvironment reports whether the named environment is already configured.
func (state SetupState) HasEnvironment(environmentName string) bool {
	for _, configuredEnvironment := range state.ConfiguredEnvironments {
		if configuredEnvironment == environmentName {
			return true
		}
	}
	return false
}

// StepResult records the outcome of a single orchestration step.
type StepResult struct {
	Name    string
	Success bool
	Skipped bool
	Message string
}

// Summary aggregates the step results of a full orchestration run.
type Summary struct {
	TotalSteps int
	Successful int
	Failed     int
	Skipped    int
	Results    []StepResult
}

// AutomateOptions configures a full orchestration run.
type AutomateOptions struct {
	ConfigurationPath string
	RepositoryPath    string
	Owner             string
	Repository        string
	WorkflowDirectory string
	SkipExisting      bool
}

// Dependencies enumerates the collaborators required by the orchestrator.
type Dependencies struct {
	GitHubClient      GitHubSetupAPI
	ProtectionService ProtectionApplier
	Validator         ValidationReporter
	SecretReader      shared.SecretReader
	FileSystem        shared.FileSystem
	RepositoryManager shared.GitRepositoryManager
}

// Service drives the full repository governance setup, step by step.
type Service struct {
	githubClient      GitHubSetupAPI
	protectionService ProtectionApplier
	validator         ValidationReporter
	secretReader      shared.SecretReader
	fileSystem        shared.FileSystem
	repositoryManager shared.GitRepositoryManager
}

// NewService validates dependencies and constructs an orchestrator.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.GitHubClient == nil {
		return nil, ErrClientNotConfigured
	}
	if dependencies.ProtectionService == nil {
		return nil, ErrProtectionServiceNotConfigured
	}
	if dependencies.Validator == nil {
		return nil, ErrValidatorNotConfigured
	}
	if dependencies.SecretReader == nil {
		return nil, ErrSecretReaderNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	return &Service{
		githubClient:      dependencies.GitHubClient,
		protectionService: dependencies.ProtectionService,
		validator:         dependencies.Validator,
		secretReader:      dependencies.SecretReader,
		fileSystem:        dependencies.FileSystem,
		repositoryManager: dependencies.RepositoryManager,
	}, nil
}

// DetectCurrentState inspects the repository for already-configured governance features.
func (service *Service) DetectCurrentState(executionContext context.Context, repositoryPath string, repository string, branch string, workflowDirectory string) (SetupState, error) {
	var state SetupState

	if _, metadataError := service.githubClient.ResolveRepoMetadata(executionContext, repository); metadataError != nil {
		return SetupState{}, fmt.Errorf(detectStateErrorTemplateConstant, repository, metadataError)
	}
	state.RepositoryExists = true

	remoteURL, remoteError := service.repositoryManager.GetRemoteURL(executionContext, repositoryPath, shared.OriginRemoteNameConstant)
	state.RemoteConfigured = remoteError == nil && len(strings.TrimSpace(remoteURL)) > 0

	protectionState, protectionError := service.githubClient.GetBranchProtection(executionContext, repository, branch)
	if protectionError != nil {
		var notFoundError githubcli.ProtectionNotFoundError
		if !errors.As(protectionError, &notFoundError) {
			return SetupState{}, fmt.Errorf(detectStateErrorTemplateConstant, repository, protectionError)
		}
	} else if protectionState.Enabled {
		state.ProtectionActive = protection.PayloadReportsProtection(protectionState.Payload)
	}

	repositorySecrets, secretsError := service.githubClient.ListSecrets(executionContext, repository)
	if secretsError != nil {
		return SetupState{}, fmt.Errorf(detectStateErrorTemplateConstant, repository, secretsError)
	}
	for _, repositorySecret := range repositorySecrets {
		state.ConfiguredSecrets = append(state.ConfiguredSecrets, repositorySecret.Name)
	}

	repositoryEnvironments, environmentsError := service.githubClient.ListEnvironments(executionContext, repository)
	if environmentsError != nil {
		return SetupState{}, fmt.Errorf(detectStateErrorTemplateConstant, repository, environmentsError)
	}
	for _, repositoryEnvironment := range repositoryEnvironments {
		state.ConfiguredEnvironments = append(state.ConfiguredEnvironments, repositoryEnvironment.Name)
	}

	state.WorkflowsPresent = service.workflowFilesPresent(workflowDirectory)

	return state, nil
}

func (service *Service) workflowFilesPresent(workflowDirectory string) bool {
	directoryInfo, statError := service.fileSystem.Stat(workflowDirectory)
	if statError != nil || !directoryInfo.IsDir() {
		return false
	}
	directoryEntries, readError := service.fileSystem.ReadDir(workflowDirectory)
	if readError != nil {
		return false
	}
	for _, directoryEntry := range directoryEntries {
		extension := strings.ToLower(filepath.Ext(directoryEntry.Name()))
		if extension == workflowExtensionYMLConstant || extension == workflowExtensionYAMLConstant {
			return true
		}
	}
	return false
}

// SetupBranchProtection applies the configured protection rules unless the branch
// is already protected and existing features are being skipped.
func (service *Service) SetupBranchProtection(executionContext context.Context, configuration GovernanceConfiguration, state SetupState, options AutomateOptions) StepResult {
	if options.SkipExisting && state.ProtectionActive {
		return StepResult{
			Name:    branchProtectionStepNameConstant,
			Success: true,
			Skipped: true,
			Message: fmt.Sprintf(protectionActiveSkipMessageConstant, configuration.BranchProtection.Branch),
		}
	}

	payload := protection.BuildProtectionPayload(configuration.BranchProtection)
	applyResult, applyError := service.protectionService.ApplyProtectionRules(executionContext, options.Owner, options.Repository, configuration.BranchProtection.Branch, payload)
	if applyError != nil {
		return StepResult{Name: branchProtectionStepNameConstant, Message: applyError.Error()}
	}
	if !applyResult.Success {
		return StepResult{Name: branchProtectionStepNameConstant, Message: applyResult.Message}
	}

	return StepResult{
		Name:    branchProtectionStepNameConstant,
		Success: true,
		Message: fmt.Sprintf(protectionAppliedMessageConstant, configuration.BranchProtection.Branch),
	}
}

// SetupSecrets prompts for and stores every required secret that is not yet
// configured. Secrets already present are never prompted for again.
func (service *Service) SetupSecrets(executionContext context.Context, configuration GovernanceConfiguration, state SetupState, options AutomateOptions) StepResult {
	repositoryIdentifier := fmt.Sprintf(repositoryIdentifierTemplateConstant, options.Owner, options.Repository)

	missingSecrets := make([]string, 0, len(configuration.Secrets))
	for _, requiredSecret := range configuration.Secrets {
		if !state.HasSecret(requiredSecret) {
			missingSecrets = append(missingSecrets, requiredSecret)
		}
	}

	if len(missingSecrets) == 0 {
		return StepResult{
			Name:    secretsStepNameConstant,
			Success: true,
			Skipped: true,
			Message: secretsPresentSkipMessageConstant,
		}
	}

	var configuredSecrets []string
	var secretFailures []string
	for _, missingSecret := range missingSecrets {
		secretValue, readError := service.secretReader.ReadSecret(fmt.Sprintf(secretPromptTemplateConstant, missingSecret))
		if readError != nil {
			secretFailures = append(secretFailures, fmt.Sprintf(secretFailureTemplateConstant, missingSecret, readError.Error()))
			continue
		}
		if setError := service.githubClient.SetSecret(executionContext, repositoryIdentifier, missingSecret, secretValue); setError != nil {
			secretFailures = append(secretFailures, fmt.Sprintf(secretFailureTemplateConstant, missingSecret, setError.Error()))
			continue
		}
		configuredSecrets = append(configuredSecrets, missingSecret)
	}

	if len(secretFailures) > 0 {
		return StepResult{
			Name:    secretsStepNameConstant,
			Message: fmt.Sprintf(secretsFailedMessageTemplateConstant, strings.Join(secretFailures, listSeparatorConstant)),
		}
	}

	return StepResult{
		Name:    secretsStepNameConstant,
		Success: true,
		Message: fmt.Sprintf(secretsConfiguredMessageConstant, strings.Join(configuredSecrets, listSeparatorConstant)),
	}
}

// SetupEnvironments creates every required deployment environment. Existing
// environments are skipped unless existing features are being reapplied.
func (service *Service) SetupEnvironments(executionContext context.Context, configuration GovernanceConfiguration, state SetupState, options AutomateOptions) StepResult {
	if len(configuration.Environments) == 0 {
		return StepResult{
			Name:    environmentsStepNameConstant,
			Success: true,
			Skipped: true,
			Message: noEnvironmentsConfiguredMessageConstant,
		}
	}

	repositoryIdentifier := fmt.Sprintf(repositoryIdentifierTemplateConstant, options.Owner, options.Repository)

	targetEnvironments := make([]EnvironmentSettings, 0, len(configuration.Environments))
	for _, environmentSettings := range configuration.Environments {
		if options.SkipExisting && state.HasEnvironment(environmentSettings.Name) {
			continue
		}
		targetEnvironments = append(targetEnvironments, environmentSettings)
	}

	if len(targetEnvironments) == 0 {
		return StepResult{
			Name:    environmentsStepNameConstant,
			Success: true,
			Skipped: true,
			Message: environmentsPresentSkipMessageConstant,
		}
	}

	var createdEnvironments []string
	var environmentFailures []string
	for _, targetEnvironment := range targetEnvironments {
		environmentConfiguration := githubcli.EnvironmentConfiguration{
			Name:             targetEnvironment.Name,
			RequiresApproval: targetEnvironment.RequiresApproval,
			Approvers:        targetEnvironment.Approvers,
		}
		if createError := service.githubClient.CreateEnvironment(executionContext, repositoryIdentifier, environmentConfiguration); createError != nil {
			environmentFailures = append(environmentFailures, fmt.Sprintf(secretFailureTemplateConstant, targetEnvironment.Name, createError.Error()))
			continue
		}
		createdEnvironments = append(createdEnvironments, targetEnvironment.Name)
	}

	if len(environmentFailures) > 0 {
		return StepResult{
			Name:    environmentsStepNameConstant,
			Message: fmt.Sprintf(environmentsFailedMessageTemplateConstant, strings.Join(environmentFailures, listSeparatorConstant)),
		}
	}

	return StepResult{
		Name:    environmentsStepNameConstant,
		Success: true,
		Message: fmt.Sprintf(environmentsConfiguredMessageConstant, strings.Join(createdEnvironments, listSeparatorConstant)),
	}
}

// RunValidation verifies the repository against the governance configuration
// as the final orchestration step.
func (service *Service) RunValidation(executionContext context.Context, configuration GovernanceConfiguration, options AutomateOptions) StepResult {
	repositoryIdentifier := fmt.Sprintf(repositoryIdentifierTemplateConstant, options.Owner, options.Repository)

	requiredSecrets := append([]string(nil), configuration.Secrets...)
	sort.Strings(requiredSecrets)

	validationResult := service.validator.GenerateReport(executionContext, audit.ReportOptions{
		Repository:           repositoryIdentifier,
		Branch:               configuration.BranchProtection.Branch,
		RequiredSecrets:      requiredSecrets,
		RequiredEnvironments: configuration.EnvironmentNames(),
		WorkflowDirectory:    options.WorkflowDirectory,
	})

	if validationResult.Passed {
		return StepResult{
			Name:    validationStepNameConstant,
			Success: true,
			Message: fmt.Sprintf(validationPassedMessageTemplateConstant, validationResult.Summary.Passed),
		}
	}

	return StepResult{
		Name: validationStepNameConstant,
		Message: fmt.Sprintf(
			validationFailedMessageTemplateConstant,
			validationResult.Summary.Passed,
			validationResult.Summary.Failed,
			validationResult.Summary.Warnings,
		),
	}
}

// GenerateSummary buckets each result into exactly one of skipped, failed, or
// successful. Skipped wins over failed, failed wins over successful.
func GenerateSummary(results []StepResult) Summary {
	summary := Summary{
		TotalSteps: len(results),
		Results:    results,
	}
	for _, stepResult := range results {
		switch {
		case stepResult.Skipped:
			summary.Skipped++
		case !stepResult.Success:
			summary.Failed++
		default:
			summary.Successful++
		}
	}
	return summary
}

// AutomateSetup loads the governance configuration, inspects the repository,
// and runs every setup step. Step failures are recorded and never halt the run.
func (service *Service) AutomateSetup(executionContext context.Context, options AutomateOptions) (Summary, error) {
	configuration, configurationError := LoadGovernanceConfiguration(options.ConfigurationPath)
	if configurationError != nil {
		return Summary{}, configurationError
	}

	repositoryIdentifier := fmt.Sprintf(repositoryIdentifierTemplateConstant, options.Owner, options.Repository)
	state, stateError := service.DetectCurrentState(executionContext, options.RepositoryPath, repositoryIdentifier, configuration.BranchProtection.Branch, options.WorkflowDirectory)
	if stateError != nil {
		return Summary{}, stateError
	}

	stepResults := []StepResult{
		service.SetupBranchProtection(executionContext, configuration, state, options),
		service.SetupSecrets(executionContext, configuration, state, options),
		service.SetupEnvironments(executionContext, configuration, state, options),
		service.RunValidation(executionContext, configuration, options),
	}

	return GenerateSummary(stepResults), nil
}
