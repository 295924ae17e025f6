package protection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devops-foundry/gitgovern/internal/execshell"
	"github.com/devops-foundry/gitgovern/internal/githubcli"
)

const (
	clientNotConfiguredMessageConstant   = "github client not configured"
	repositoryIdentifierTemplateConstant = "%s/%s"
	localValidationFailedMessageConstant = "payload failed local schema validation"
	protectionEnabledReportedKeyConstant = "enabled"
)

// ErrClientNotConfigured indicates the service was constructed without a GitHub client.
var ErrClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)

// GitHubProtectionAPI is the subset of the GitHub client used by the protection service.
type GitHubProtectionAPI interface {
	GetBranchProtection(executionContext context.Context, repository string, branch string) (githubcli.BranchProtectionState, error)
	UpdateBranchProtection(executionContext context.Context, repository string, branch string, payload []byte) error
}

// ApplyResult reports the outcome of submitting a protection payload.
type ApplyResult struct {
	Success          bool
	ShouldVerify     bool
	Message          string
	ValidationErrors []ValidationError
	APIError         *APIErrorClassification
}

// Dependencies enumerates the collaborators required by the protection service.
type Dependencies struct {
	GitHubClient GitHubProtectionAPI
}

// Service applies and verifies branch protection rules through the GitHub CLI.
type Service struct {
	githubClient GitHubProtectionAPI
}

// NewService validates dependencies and constructs a protection service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.GitHubClient == nil {
		return nil, ErrClientNotConfigured
	}
	return &Service{githubClient: dependencies.GitHubClient}, nil
}

// ApplyProtectionRules validates the payload locally, submits it, and always
// requests follow-up verification after a successful submission.
func (service *Service) ApplyProtectionRules(executionContext context.Context, owner string, repository string, branch string, payload ProtectionPayload) (ApplyResult, error) {
	payloadBytes, encodingError := EncodeProtectionPayload(payload)
	if encodingError != nil {
		return ApplyResult{}, encodingError
	}

	validationErrors := ValidatePayloadSchema(payloadBytes)
	if len(validationErrors) > 0 {
		return ApplyResult{
			Success:          false,
			Message:          localValidationFailedMessageConstant,
			ValidationErrors: validationErrors,
		}, nil
	}

	repositoryIdentifier := fmt.Sprintf(repositoryIdentifierTemplateConstant, owner, repository)
	updateError := service.githubClient.UpdateBranchProtection(executionContext, repositoryIdentifier, branch, payloadBytes)
	if updateError != nil {
		classification := ParseAPIError(extractFailureMessage(updateError))
		return ApplyResult{
			Success:  false,
			Message:  classification.Guidance,
			APIError: &classification,
		}, nil
	}

	return ApplyResult{Success: true, ShouldVerify: true}, nil
}

// VerifyProtectionActive reports whether the branch currently carries any protective feature.
func (service *Service) VerifyProtectionActive(executionContext context.Context, owner string, repository string, branch string) (bool, error) {
	repositoryIdentifier := fmt.Sprintf(repositoryIdentifierTemplateConstant, owner, repository)

	protectionState, protectionError := service.githubClient.GetBranchProtection(executionContext, repositoryIdentifier, branch)
	if protectionError != nil {
		var notFoundError githubcli.ProtectionNotFoundError
		if errors.As(protectionError, &notFoundError) {
			return false, nil
		}
		return false, protectionError
	}

	if !protectionState.Enabled {
		return false, nil
	}

	return PayloadReportsProtection(protectionState.Payload), nil
}

// PayloadReportsProtection inspects a reported protection payload for any enabled feature.
// GET responses wrap booleans as {"enabled": bool} objects.
func PayloadReportsProtection(reportedPayload json.RawMessage) bool {
	if len(reportedPayload) == 0 {
		return false
	}

	var decodedPayload map[string]any
	if unmarshalError := json.Unmarshal(reportedPayload, &decodedPayload); unmarshalError != nil {
		return false
	}

	featureFieldNames := []string{
		requiredStatusChecksFieldConstant,
		enforceAdminsFieldConstant,
		pullRequestReviewsFieldConstant,
		requiredLinearHistoryFieldConstant,
		restrictionsFieldConstant,
	}

	for _, fieldName := range featureFieldNames {
		fieldValue, fieldPresent := decodedPayload[fieldName]
		if !fieldPresent || fieldValue == nil {
			continue
		}

		switch typedValue := fieldValue.(type) {
		case map[string]any:
			enabledValue, enabledPresent := typedValue[protectionEnabledReportedKeyConstant]
			if !enabledPresent {
				return true
			}
			if enabledBoolean, isBoolean := enabledValue.(bool); isBoolean && enabledBoolean {
				return true
			}
		case bool:
			if typedValue {
				return true
			}
		}
	}

	return false
}

func extractFailureMessage(updateError error) string {
	var commandFailure execshell.CommandFailedError
	if errors.As(updateError, &commandFailure) {
		if len(commandFailure.Result.StandardError) > 0 {
			return commandFailure.Result.StandardError
		}
		return commandFailure.Result.StandardOutput
	}
	return updateError.Error()
}
