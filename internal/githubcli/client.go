package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/devops-foundry/gitgovern/internal/execshell"
)

const (
	repoSubcommandConstant                   = "repo"
	viewSubcommandConstant                   = "view"
	secretSubcommandConstant                 = "secret"
	listSubcommandConstant                   = "list"
	setSubcommandConstant                    = "set"
	apiSubcommandConstant                    = "api"
	jsonFlagConstant                         = "--json"
	repoFlagConstant                         = "--repo"
	bodyFlagConstant                         = "--body"
	methodFlagConstant                       = "-X"
	inputFlagConstant                        = "--input"
	stdinReferenceConstant                   = "-"
	acceptHeaderFlagConstant                 = "-H"
	acceptHeaderValueConstant                = "Accept: application/vnd.github+json"
	httpMethodPutConstant                    = "PUT"
	repositoryFieldNameConstant              = "repository"
	branchFieldNameConstant                  = "branch"
	secretNameFieldNameConstant              = "secret_name"
	environmentNameFieldNameConstant         = "environment_name"
	approverFieldNameConstant                = "approver"
	payloadFieldNameConstant                 = "payload"
	requiredValueMessageConstant             = "value required"
	executorNotConfiguredMessageConstant     = "github cli executor not configured"
	secretListJSONFieldsConstant             = "name"
	repoViewJSONFieldsConstant               = "defaultBranchRef,nameWithOwner,description"
	operationErrorMessageTemplateConstant    = "%s operation failed"
	operationErrorWithCauseTemplateConstant  = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant    = "%s response decoding failed: %s"
	payloadEncodingErrorTemplateConstant     = "%s payload encoding failed: %s"
	invalidInputErrorTemplateConstant        = "%s: %s"
	protectionNotFoundTemplateConstant       = "branch %s of %s has no protection rules"
	branchProtectionEndpointTemplateConstant = "repos/%s/branches/%s/protection"
	environmentsEndpointTemplateConstant     = "repos/%s/environments"
	environmentEndpointTemplateConstant      = "repos/%s/environments/%s"
	userEndpointTemplateConstant             = "users/%s"
	reviewerTypeUserConstant                 = "User"
	notFoundStatusFragmentConstant           = "HTTP 404"
	notFoundMessageFragmentConstant          = "Not Found"
	repositoryMetadataOperationNameConstant  = OperationName("ResolveRepoMetadata")
	getBranchProtectionOperationNameConstant = OperationName("GetBranchProtection")
	updateProtectionOperationNameConstant    = OperationName("UpdateBranchProtection")
	listSecretsOperationNameConstant         = OperationName("ListSecrets")
	setSecretOperationNameConstant           = OperationName("SetSecret")
	listEnvironmentsOperationNameConstant    = OperationName("ListEnvironments")
	createEnvironmentOperationNameConstant   = OperationName("CreateEnvironment")
	resolveUserOperationNameConstant         = OperationName("ResolveUser")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// RepositoryMetadata contains key details resolved from GitHub.
type RepositoryMetadata struct {
	NameWithOwner string
	Description   string
	DefaultBranch string
}

// RepositorySecret identifies an Actions secret configured on a repository.
type RepositorySecret struct {
	Name string
}

// RepositoryEnvironment identifies a deployment environment configured on a repository.
type RepositoryEnvironment struct {
	Name string
}

// BranchProtectionState captures the protection payload GitHub reports for a branch.
type BranchProtectionState struct {
	Enabled bool
	Payload json.RawMessage
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// PayloadEncodingError indicates a request payload could not be serialized.
type PayloadEncodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the encoding failure.
func (encodingError PayloadEncodingError) Error() string {
	return fmt.Sprintf(payloadEncodingErrorTemplateConstant, encodingError.Operation, encodingError.Cause)
}

// Unwrap exposes the underlying serialization error.
func (encodingError PayloadEncodingError) Unwrap() error {
	return encodingError.Cause
}

// ProtectionNotFoundError indicates a branch carries no protection rules.
type ProtectionNotFoundError struct {
	Repository string
	Branch     string
}

// Error describes the missing protection rules.
func (notFoundError ProtectionNotFoundError) Error() string {
	return fmt.Sprintf(protectionNotFoundTemplateConstant, notFoundError.Branch, notFoundError.Repository)
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// ResolveRepoMetadata retrieves canonical metadata for a repository using gh repo view.
func (client *Client) ResolveRepoMetadata(executionContext context.Context, repository string) (RepositoryMetadata, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return RepositoryMetadata{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			viewSubcommandConstant,
			repositoryIdentifier,
			jsonFlagConstant,
			repoViewJSONFieldsConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return RepositoryMetadata{}, OperationError{Operation: repositoryMetadataOperationNameConstant, Cause: executionError}
	}

	var response struct {
		NameWithOwner    string `json:"nameWithOwner"`
		Description      string `json:"description"`
		DefaultBranchRef struct {
			Name string `json:"name"`
		} `json:"defaultBranchRef"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return RepositoryMetadata{}, ResponseDecodingError{Operation: repositoryMetadataOperationNameConstant, Cause: decodingError}
	}

	return RepositoryMetadata{
		NameWithOwner: response.NameWithOwner,
		Description:   response.Description,
		DefaultBranch: response.DefaultBranchRef.Name,
	}, nil
}

// GetBranchProtection retrieves the protection payload for a branch using gh api.
// A branch without protection rules yields ProtectionNotFoundError.
func (client *Client) GetBranchProtection(executionContext context.Context, repository string, branch string) (BranchProtectionState, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return BranchProtectionState{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	branchName := strings.TrimSpace(branch)
	if len(branchName) == 0 {
		return BranchProtectionState{}, InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			fmt.Sprintf(branchProtectionEndpointTemplateConstant, repositoryIdentifier, branchName),
			acceptHeaderFlagConstant,
			acceptHeaderValueConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		if isNotFoundFailure(executionError) {
			return BranchProtectionState{}, ProtectionNotFoundError{Repository: repositoryIdentifier, Branch: branchName}
		}
		return BranchProtectionState{}, OperationError{Operation: getBranchProtectionOperationNameConstant, Cause: executionError}
	}

	trimmedPayload := strings.TrimSpace(executionResult.StandardOutput)
	if len(trimmedPayload) == 0 {
		return BranchProtectionState{Enabled: false}, nil
	}

	if !json.Valid([]byte(trimmedPayload)) {
		return BranchProtectionState{}, ResponseDecodingError{Operation: getBranchProtectionOperationNameConstant, Cause: errors.New("response is not valid JSON")}
	}

	return BranchProtectionState{Enabled: true, Payload: json.RawMessage(trimmedPayload)}, nil
}

// UpdateBranchProtection applies a protection payload to a branch using gh api with the payload on standard input.
func (client *Client) UpdateBranchProtection(executionContext context.Context, repository string, branch string, payload []byte) error {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	branchName := strings.TrimSpace(branch)
	if len(branchName) == 0 {
		return InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(payload) == 0 {
		return InvalidInputError{FieldName: payloadFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			fmt.Sprintf(branchProtectionEndpointTemplateConstant, repositoryIdentifier, branchName),
			methodFlagConstant,
			httpMethodPutConstant,
			inputFlagConstant,
			stdinReferenceConstant,
			acceptHeaderFlagConstant,
			acceptHeaderValueConstant,
		},
		StandardInput: payload,
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: updateProtectionOperationNameConstant, Cause: executionError}
	}

	return nil
}

// ListSecrets enumerates Actions secrets configured on a repository using gh secret list.
func (client *Client) ListSecrets(executionContext context.Context, repository string) ([]RepositorySecret, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return nil, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			secretSubcommandConstant,
			listSubcommandConstant,
			repoFlagConstant,
			repositoryIdentifier,
			jsonFlagConstant,
			secretListJSONFieldsConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: listSecretsOperationNameConstant, Cause: executionError}
	}

	var response []struct {
		Name string `json:"name"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listSecretsOperationNameConstant, Cause: decodingError}
	}

	secrets := make([]RepositorySecret, 0, len(response))
	for _, secretEntry := range response {
		secrets = append(secrets, RepositorySecret{Name: secretEntry.Name})
	}

	return secrets, nil
}

// SetSecret stores an Actions secret on a repository using gh secret set with
// the value supplied through the body flag rather than the process environment.
func (client *Client) SetSecret(executionContext context.Context, repository string, secretName string, secretValue string) error {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedSecretName := strings.TrimSpace(secretName)
	if len(trimmedSecretName) == 0 {
		return InvalidInputError{FieldName: secretNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			secretSubcommandConstant,
			setSubcommandConstant,
			trimmedSecretName,
			repoFlagConstant,
			repositoryIdentifier,
			bodyFlagConstant,
			secretValue,
		},
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: setSecretOperationNameConstant, Cause: executionError}
	}

	return nil
}

// ListEnvironments enumerates deployment environments configured on a repository using gh api.
func (client *Client) ListEnvironments(executionContext context.Context, repository string) ([]RepositoryEnvironment, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return nil, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			fmt.Sprintf(environmentsEndpointTemplateConstant, repositoryIdentifier),
			acceptHeaderFlagConstant,
			acceptHeaderValueConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		if isNotFoundFailure(executionError) {
			return nil, nil
		}
		return nil, OperationError{Operation: listEnvironmentsOperationNameConstant, Cause: executionError}
	}

	var response struct {
		Environments []struct {
			Name string `json:"name"`
		} `json:"environments"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listEnvironmentsOperationNameConstant, Cause: decodingError}
	}

	environments := make([]RepositoryEnvironment, 0, len(response.Environments))
	for _, environmentEntry := range response.Environments {
		environments = append(environments, RepositoryEnvironment{Name: environmentEntry.Name})
	}

	return environments, nil
}

// EnvironmentConfiguration describes a deployment environment to create or update.
type EnvironmentConfiguration struct {
	Name             string
	RequiresApproval bool
	Approvers        []string
}

// CreateEnvironment creates or updates a deployment environment using gh api.
// Approval requirements and reviewers are sent as the request body; an
// environment without either is created with an empty body.
func (client *Client) CreateEnvironment(executionContext context.Context, repository string, environment EnvironmentConfiguration) error {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedEnvironmentName := strings.TrimSpace(environment.Name)
	if len(trimmedEnvironmentName) == 0 {
		return InvalidInputError{FieldName: environmentNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			fmt.Sprintf(environmentEndpointTemplateConstant, repositoryIdentifier, trimmedEnvironmentName),
			methodFlagConstant,
			httpMethodPutConstant,
			acceptHeaderFlagConstant,
			acceptHeaderValueConstant,
		},
	}

	if environment.RequiresApproval || len(environment.Approvers) > 0 {
		body, encodingError := client.encodeEnvironmentPayload(executionContext, environment)
		if encodingError != nil {
			return encodingError
		}
		commandDetails.Arguments = append(commandDetails.Arguments, inputFlagConstant, stdinReferenceConstant)
		commandDetails.StandardInput = body
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: createEnvironmentOperationNameConstant, Cause: executionError}
	}

	return nil
}

type environmentReviewer struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

func (client *Client) encodeEnvironmentPayload(executionContext context.Context, environment EnvironmentConfiguration) ([]byte, error) {
	payload := struct {
		PreventSelfReview bool                  `json:"prevent_self_review"`
		Reviewers         []environmentReviewer `json:"reviewers"`
	}{PreventSelfReview: environment.RequiresApproval}

	for _, approverLogin := range environment.Approvers {
		userIdentifier, resolutionError := client.resolveUserIdentifier(executionContext, approverLogin)
		if resolutionError != nil {
			return nil, resolutionError
		}
		payload.Reviewers = append(payload.Reviewers, environmentReviewer{Type: reviewerTypeUserConstant, ID: userIdentifier})
	}

	body, marshalError := json.Marshal(payload)
	if marshalError != nil {
		return nil, PayloadEncodingError{Operation: createEnvironmentOperationNameConstant, Cause: marshalError}
	}
	return body, nil
}

func (client *Client) resolveUserIdentifier(executionContext context.Context, login string) (int64, error) {
	trimmedLogin := strings.TrimSpace(login)
	if len(trimmedLogin) == 0 {
		return 0, InvalidInputError{FieldName: approverFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			fmt.Sprintf(userEndpointTemplateConstant, trimmedLogin),
			acceptHeaderFlagConstant,
			acceptHeaderValueConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return 0, OperationError{Operation: resolveUserOperationNameConstant, Cause: executionError}
	}

	var response struct {
		ID int64 `json:"id"`
	}
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return 0, ResponseDecodingError{Operation: resolveUserOperationNameConstant, Cause: decodingError}
	}

	return response.ID, nil
}

func isNotFoundFailure(executionError error) bool {
	var commandFailure execshell.CommandFailedError
	if !errors.As(executionError, &commandFailure) {
		return false
	}
	combinedOutput := commandFailure.Result.StandardError + commandFailure.Result.StandardOutput
	return strings.Contains(combinedOutput, notFoundStatusFragmentConstant) || strings.Contains(combinedOutput, notFoundMessageFragmentConstant)
}
