package audit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devops-foundry/gitgovern/internal/githubcli"
	"github.com/devops-foundry/gitgovern/internal/protection"
	"github.com/devops-foundry/gitgovern/internal/shared"
)

const (
	secretsCheckNameConstant               = "secrets"
	branchProtectionCheckNameConstant      = "branch-protection"
	workflowsCheckNameConstant             = "workflows"
	environmentsCheckNameConstant          = "environments"
	clientNotConfiguredMessageConstant     = "github client not configured"
	filesystemNotConfiguredMessageConstant = "filesystem not configured"
	secretsPassTemplateConstant            = "all %d required secrets are configured"
	secretsFailTemplateConstant            = "missing required secrets: %s"
	secretsRemediationTemplateConstant     = "add the missing secrets with gh secret set <name> --repo %s"
	secretsQueryFailTemplateConstant       = "unable to list repository secrets: %s"
	secretsQueryRemediationConstant        = "confirm gh is authenticated and the token can read Actions secrets"
	protectionPassTemplateConstant         = "branch %s has active protection rules"
	protectionFailTemplateConstant         = "branch %s has no protection rules"
	protectionWarningTemplateConstant      = "branch %s has a protection entry but no protective feature is enabled"
	protectionRemediationConstant          = "apply protection with the setup-branch-protection command"
	protectionQueryFailTemplateConstant    = "unable to read branch protection: %s"
	protectionQueryRemediationConstant     = "confirm the repository exists and the token has admin access"
	workflowsPassTemplateConstant          = "%d workflow files parsed cleanly"
	workflowsAbsentTemplateConstant        = "workflow directory %s does not exist"
	workflowsEmptyTemplateConstant         = "workflow directory %s contains no workflow files"
	workflowsSyntaxTemplateConstant        = "workflow file %s has invalid syntax: %s"
	workflowsTabMessageConstant            = "leading tab indentation is not valid in workflow files"
	workflowsRemediationConstant           = "create workflow files under the workflow directory and validate their syntax"
	workflowsReadFailTemplateConstant      = "unable to read workflow file %s: %s"
	environmentsPassTemplateConstant       = "all %d required environments exist"
	environmentsFailTemplateConstant       = "missing required environments: %s"
	environmentsRemediationConstant        = "create the missing environments with the automate-setup command or in the repository settings"
	environmentsQueryFailTemplateConstant  = "unable to list environments: %s"
	environmentsQueryRemediationConstant   = "confirm gh is authenticated and the repository is reachable"
	missingNameSeparatorConstant           = ", "
	workflowFileExtensionYMLConstant       = ".yml"
	workflowFileExtensionYAMLConstant      = ".yaml"
	leadingTabPrefixConstant               = "\t"
)

// CheckStatus classifies the outcome of a single validation check.
type CheckStatus string

// Validation check outcomes.
const (
	CheckStatusPass    CheckStatus = CheckStatus("pass")
	CheckStatusFail    CheckStatus = CheckStatus("fail")
	CheckStatusWarning CheckStatus = CheckStatus("warning")
)

// Check reports one validation outcome with remediation for failures.
type Check struct {
	Name        string
	Status      CheckStatus
	Message     string
	Remediation string
}

// ValidationSummary tallies check outcomes by status.
type ValidationSummary struct {
	Passed   int
	Failed   int
	Warnings int
}

// ValidationResult aggregates every check for a repository.
type ValidationResult struct {
	Passed      bool
	GeneratedAt time.Time
	Checks      []Check
	Summary     ValidationSummary
}

// ReportOptions configures a full validation run.
type ReportOptions struct {
	Repository           string
	Branch               string
	RequiredSecrets      []string
	RequiredEnvironments []string
	WorkflowDirectory    string
}

// ErrClientNotConfigured indicates the service was constructed without a GitHub client.
var ErrClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)

// ErrFileSystemNotConfigured indicates the service was constructed without a filesystem.
var ErrFileSystemNotConfigured = errors.New(filesystemNotConfiguredMessageConstant)

// GitHubInspectionAPI is the subset of the GitHub client used by the validator.
type GitHubInspectionAPI interface {
	ListSecrets(executionContext context.Context, repository string) ([]githubcli.RepositorySecret, error)
	GetBranchProtection(executionContext context.Context, repository string, branch string) (githubcli.BranchProtectionState, error)
	ListEnvironments(executionContext context.Context, repository string) ([]githubcli.RepositoryEnvironment, error)
}

// Dependencies enumerates the collaborators required by the validator.
type Dependencies struct {
	GitHubClient GitHubInspectionAPI
	FileSystem   shared.FileSystem
	Clock        shared.Clock
}

// Service validates repository governance state against its requirements.
type Service struct {
	githubClient GitHubInspectionAPI
	fileSystem   shared.FileSystem
	clock        shared.Clock
}

// NewService validates dependencies and constructs a validator. A missing clock
// defaults to the system time source.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.GitHubClient == nil {
		return nil, ErrClientNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.Clock == nil {
		dependencies.Clock = shared.SystemClock{}
	}
	return &Service{githubClient: dependencies.GitHubClient, fileSystem: dependencies.FileSystem, clock: dependencies.Clock}, nil
}

// CheckSecrets verifies that every required secret exists on the repository.
func (service *Service) CheckSecrets(executionContext context.Context, repository string, requiredSecrets []string) Check {
	existingSecrets, listError := service.githubClient.ListSecrets(executionContext, repository)
	if listError != nil {
		return Check{
			Name:        secretsCheckNameConstant,
			Status:      CheckStatusFail,
			Message:     fmt.Sprintf(secretsQueryFailTemplateConstant, listError),
			Remediation: secretsQueryRemediationConstant,
		}
	}

	existingNames := make(map[string]struct{}, len(existingSecrets))
	for _, existingSecret := range existingSecrets {
		existingNames[existingSecret.Name] = struct{}{}
	}

	missingNames := make([]string, 0)
	for _, requiredName := range requiredSecrets {
		if _, secretExists := existingNames[requiredName]; !secretExists {
			missingNames = append(missingNames, requiredName)
		}
	}
	sort.Strings(missingNames)

	if len(missingNames) > 0 {
		return Check{
			Name:        secretsCheckNameConstant,
			Status:      CheckStatusFail,
			Message:     fmt.Sprintf(secretsFailTemplateConstant, strings.Join(missingNames, missingNameSeparatorConstant)),
			Remediation: fmt.Sprintf(secretsRemediationTemplateConstant, repository),
		}
	}

	return Check{
		Name:    secretsCheckNameConstant,
		Status:  CheckStatusPass,
		Message: fmt.Sprintf(secretsPassTemplateConstant, len(requiredSecrets)),
	}
}

// CheckBranchProtection verifies that the branch carries active protection rules.
func (service *Service) CheckBranchProtection(executionContext context.Context, repository string, branch string) Check {
	protectionState, protectionError := service.githubClient.GetBranchProtection(executionContext, repository, branch)
	if protectionError != nil {
		var notFoundError githubcli.ProtectionNotFoundError
		if errors.As(protectionError, &notFoundError) {
			return Check{
				Name:        branchProtectionCheckNameConstant,
				Status:      CheckStatusFail,
				Message:     fmt.Sprintf(protectionFailTemplateConstant, branch),
				Remediation: protectionRemediationConstant,
			}
		}
		return Check{
			Name:        branchProtectionCheckNameConstant,
			Status:      CheckStatusFail,
			Message:     fmt.Sprintf(protectionQueryFailTemplateConstant, protectionError),
			Remediation: protectionQueryRemediationConstant,
		}
	}

	if protectionState.Enabled && protection.PayloadReportsProtection(protectionState.Payload) {
		return Check{
			Name:    branchProtectionCheckNameConstant,
			Status:  CheckStatusPass,
			Message: fmt.Sprintf(protectionPassTemplateConstant, branch),
		}
	}

	return Check{
		Name:        branchProtectionCheckNameConstant,
		Status:      CheckStatusWarning,
		Message:     fmt.Sprintf(protectionWarningTemplateConstant, branch),
		Remediation: protectionRemediationConstant,
	}
}

// CheckWorkflows verifies that workflow files exist and have valid syntax.
func (service *Service) CheckWorkflows(workflowDirectory string) Check {
	directoryInfo, statError := service.fileSystem.Stat(workflowDirectory)
	if statError != nil || !directoryInfo.IsDir() {
		return Check{
			Name:        workflowsCheckNameConstant,
			Status:      CheckStatusFail,
			Message:     fmt.Sprintf(workflowsAbsentTemplateConstant, workflowDirectory),
			Remediation: workflowsRemediationConstant,
		}
	}

	directoryEntries, readDirError := service.fileSystem.ReadDir(workflowDirectory)
	if readDirError != nil {
		return Check{
			Name:        workflowsCheckNameConstant,
			Status:      CheckStatusFail,
			Message:     fmt.Sprintf(workflowsAbsentTemplateConstant, workflowDirectory),
			Remediation: workflowsRemediationConstant,
		}
	}

	workflowFileNames := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		if directoryEntry.IsDir() {
			continue
		}
		entryExtension := strings.ToLower(filepath.Ext(directoryEntry.Name()))
		if entryExtension == workflowFileExtensionYMLConstant || entryExtension == workflowFileExtensionYAMLConstant {
			workflowFileNames = append(workflowFileNames, directoryEntry.Name())
		}
	}

	if len(workflowFileNames) == 0 {
		return Check{
			Name:        workflowsCheckNameConstant,
			Status:      CheckStatusFail,
			Message:     fmt.Sprintf(workflowsEmptyTemplateConstant, workflowDirectory),
			Remediation: workflowsRemediationConstant,
		}
	}

	for _, workflowFileName := range workflowFileNames {
		workflowFilePath := filepath.Join(workflowDirectory, workflowFileName)
		workflowContents, readError := service.fileSystem.ReadFile(workflowFilePath)
		if readError != nil {
			return Check{
				Name:        workflowsCheckNameConstant,
				Status:      CheckStatusFail,
				Message:     fmt.Sprintf(workflowsReadFailTemplateConstant, workflowFileName, readError),
				Remediation: workflowsRemediationConstant,
			}
		}

		if syntaxError := validateWorkflowSyntax(workflowContents); syntaxError != nil {
			return Check{
				Name:        workflowsCheckNameConstant,
				Status:      CheckStatusFail,
				Message:     fmt.Sprintf(workflowsSyntaxTemplateConstant, workflowFileName, syntaxError),
				Remediation: workflowsRemediationConstant,
			}
		}
	}

	return Check{
		Name:    workflowsCheckNameConstant,
		Status:  CheckStatusPass,
		Message: fmt.Sprintf(workflowsPassTemplateConstant, len(workflowFileNames)),
	}
}

// CheckEnvironments verifies that every required deployment environment exists.
func (service *Service) CheckEnvironments(executionContext context.Context, repository string, requiredEnvironments []string) Check {
	existingEnvironments, listError := service.githubClient.ListEnvironments(executionContext, repository)
	if listError != nil {
		return Check{
			Name:        environmentsCheckNameConstant,
			Status:      CheckStatusFail,
			Message:     fmt.Sprintf(environmentsQueryFailTemplateConstant, listError),
			Remediation: environmentsQueryRemediationConstant,
		}
	}

	existingNames := make(map[string]struct{}, len(existingEnvironments))
	for _, existingEnvironment := range existingEnvironments {
		existingNames[existingEnvironment.Name] = struct{}{}
	}

	missingNames := make([]string, 0)
	for _, requiredName := range requiredEnvironments {
		if _, environmentExists := existingNames[requiredName]; !environmentExists {
			missingNames = append(missingNames, requiredName)
		}
	}
	sort.Strings(missingNames)

	if len(missingNames) > 0 {
		return Check{
			Name:        environmentsCheckNameConstant,
			Status:      CheckStatusFail,
			Message:     fmt.Sprintf(environmentsFailTemplateConstant, strings.Join(missingNames, missingNameSeparatorConstant)),
			Remediation: environmentsRemediationConstant,
		}
	}

	return Check{
		Name:    environmentsCheckNameConstant,
		Status:  CheckStatusPass,
		Message: fmt.Sprintf(environmentsPassTemplateConstant, len(requiredEnvironments)),
	}
}

// GenerateReport runs every check and aggregates outcomes into a single result.
func (service *Service) GenerateReport(executionContext context.Context, options ReportOptions) ValidationResult {
	checks := []Check{
		service.CheckSecrets(executionContext, options.Repository, options.RequiredSecrets),
		service.CheckBranchProtection(executionContext, options.Repository, options.Branch),
		service.CheckWorkflows(options.WorkflowDirectory),
		service.CheckEnvironments(executionContext, options.Repository, options.RequiredEnvironments),
	}

	summary := ValidationSummary{}
	for _, check := range checks {
		switch check.Status {
		case CheckStatusPass:
			summary.Passed++
		case CheckStatusFail:
			summary.Failed++
		case CheckStatusWarning:
			summary.Warnings++
		}
	}

	return ValidationResult{
		Passed:      summary.Failed == 0,
		GeneratedAt: service.clock.Now(),
		Checks:      checks,
		Summary:     summary,
	}
}

// validateWorkflowSyntax applies the structural checks workflow files must satisfy.
func validateWorkflowSyntax(workflowContents []byte) error {
	for _, contentLine := range bytes.Split(workflowContents, []byte("\n")) {
		if bytes.HasPrefix(contentLine, []byte(leadingTabPrefixConstant)) {
			return errors.New(workflowsTabMessageConstant)
		}
	}

	var decodedDocument any
	return yaml.Unmarshal(workflowContents, &decodedDocument)
}
