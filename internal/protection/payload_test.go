package protection_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devops-foundry/gitgovern/internal/protection"
)

func TestBuildProtectionPayloadValidatesCleanly(testInstance *testing.T) {
	testCases := []struct {
		name     string
		settings protection.ProtectionSettings
	}{
		{name: "zero_value_settings", settings: protection.ProtectionSettings{}},
		{
			name: "full_settings",
			settings: protection.ProtectionSettings{
				Branch:                  "main",
				RequiredStatusChecks:    []string{"build", "test", "lint"},
				StrictStatusChecks:      true,
				RequiredApprovals:       2,
				EnforceAdmins:           true,
				DismissStaleReviews:     true,
				RequireCodeOwnerReviews: true,
				RequiredLinearHistory:   true,
			},
		},
		{
			name:     "negative_approvals_are_clamped",
			settings: protection.ProtectionSettings{RequiredApprovals: -3},
		},
		{
			name: "dismissal_restrictions_included_when_populated",
			settings: protection.ProtectionSettings{
				RequiredStatusChecks:  []string{"build"},
				DismissalRestrictions: map[string]any{"users": []any{"octocat"}},
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			payload := protection.BuildProtectionPayload(testCase.settings)
			payloadBytes, encodingError := protection.EncodeProtectionPayload(payload)
			require.NoError(subtest, encodingError)

			validationErrors := protection.ValidatePayloadSchema(payloadBytes)
			require.Empty(subtest, validationErrors)
		})
	}
}

func TestBuildProtectionPayloadStatusCheckShape(testInstance *testing.T) {
	emptyPayload := protection.BuildProtectionPayload(protection.ProtectionSettings{})
	require.Nil(testInstance, emptyPayload.RequiredStatusChecks)

	emptyBytes, emptyEncodingError := protection.EncodeProtectionPayload(emptyPayload)
	require.NoError(testInstance, emptyEncodingError)
	var decodedEmpty map[string]json.RawMessage
	require.NoError(testInstance, json.Unmarshal(emptyBytes, &decodedEmpty))
	require.Equal(testInstance, "null", string(decodedEmpty["required_status_checks"]))
	require.Equal(testInstance, "null", string(decodedEmpty["restrictions"]))

	populatedPayload := protection.BuildProtectionPayload(protection.ProtectionSettings{
		RequiredStatusChecks: []string{"build", "test"},
		StrictStatusChecks:   true,
	})
	require.NotNil(testInstance, populatedPayload.RequiredStatusChecks)
	require.True(testInstance, populatedPayload.RequiredStatusChecks.Strict)
	require.Len(testInstance, populatedPayload.RequiredStatusChecks.Checks, 2)
	require.Equal(testInstance, "build", populatedPayload.RequiredStatusChecks.Checks[0].Context)
}

func TestBuildProtectionPayloadAlwaysPopulatesReviews(testInstance *testing.T) {
	payload := protection.BuildProtectionPayload(protection.ProtectionSettings{RequiredApprovals: 1})
	require.NotNil(testInstance, payload.RequiredPullRequestReviews)
	require.Equal(testInstance, 1, payload.RequiredPullRequestReviews.RequiredApprovingReviewCount)
	require.Empty(testInstance, payload.RequiredPullRequestReviews.DismissalRestrictions)
}

func TestValidatePayloadSchemaRejections(testInstance *testing.T) {
	testCases := []struct {
		name            string
		payloadDocument string
		expectedField   string
	}{
		{
			name:            "deprecated_contexts_variant",
			payloadDocument: `{"required_status_checks":{"strict":true,"contexts":["build"],"checks":[]},"enforce_admins":true,"required_pull_request_reviews":{"dismiss_stale_reviews":false,"require_code_owner_reviews":false,"required_approving_review_count":1},"restrictions":null,"required_linear_history":false,"allow_force_pushes":false,"allow_deletions":false}`,
			expectedField:   "required_status_checks.contexts",
		},
		{
			name:            "boolean_field_with_string_value",
			payloadDocument: `{"required_status_checks":null,"enforce_admins":"yes","required_pull_request_reviews":{"dismiss_stale_reviews":false,"require_code_owner_reviews":false,"required_approving_review_count":1},"restrictions":null,"required_linear_history":false,"allow_force_pushes":false,"allow_deletions":false}`,
			expectedField:   "enforce_admins",
		},
		{
			name:            "negative_review_count",
			payloadDocument: `{"required_status_checks":null,"enforce_admins":false,"required_pull_request_reviews":{"dismiss_stale_reviews":false,"require_code_owner_reviews":false,"required_approving_review_count":-1},"restrictions":null,"required_linear_history":false,"allow_force_pushes":false,"allow_deletions":false}`,
			expectedField:   "required_pull_request_reviews.required_approving_review_count",
		},
		{
			name:            "null_review_gate",
			payloadDocument: `{"required_status_checks":null,"enforce_admins":false,"required_pull_request_reviews":null,"restrictions":null,"required_linear_history":false,"allow_force_pushes":false,"allow_deletions":false}`,
			expectedField:   "required_pull_request_reviews",
		},
		{
			name:            "missing_top_level_field",
			payloadDocument: `{"required_status_checks":null,"enforce_admins":false,"required_pull_request_reviews":{"dismiss_stale_reviews":false,"require_code_owner_reviews":false,"required_approving_review_count":0},"restrictions":null,"required_linear_history":false,"allow_force_pushes":false}`,
			expectedField:   "allow_deletions",
		},
		{
			name:            "populated_restrictions_object",
			payloadDocument: `{"required_status_checks":null,"enforce_admins":false,"required_pull_request_reviews":{"dismiss_stale_reviews":false,"require_code_owner_reviews":false,"required_approving_review_count":0},"restrictions":{"users":["octocat"]},"required_linear_history":false,"allow_force_pushes":false,"allow_deletions":false}`,
			expectedField:   "restrictions",
		},
		{
			name:            "checks_with_non_string_context",
			payloadDocument: `{"required_status_checks":{"strict":false,"checks":[{"context":7}]},"enforce_admins":false,"required_pull_request_reviews":{"dismiss_stale_reviews":false,"require_code_owner_reviews":false,"required_approving_review_count":0},"restrictions":null,"required_linear_history":false,"allow_force_pushes":false,"allow_deletions":false}`,
			expectedField:   "required_status_checks.checks",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			validationErrors := protection.ValidatePayloadSchema([]byte(testCase.payloadDocument))

			require.NotEmpty(subtest, validationErrors)
			fieldObserved := false
			for _, validationError := range validationErrors {
				if validationError.Field == testCase.expectedField {
					fieldObserved = true
				}
			}
			require.True(subtest, fieldObserved, "expected a validation error on %s", testCase.expectedField)
		})
	}
}

func TestValidatePayloadSchemaRejectsMalformedDocuments(testInstance *testing.T) {
	require.NotEmpty(testInstance, protection.ValidatePayloadSchema([]byte("{not json")))
	require.NotEmpty(testInstance, protection.ValidatePayloadSchema([]byte(`["array"]`)))
}
