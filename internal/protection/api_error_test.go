package protection_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devops-foundry/gitgovern/internal/protection"
)

func TestParseAPIError(testInstance *testing.T) {
	testCases := []struct {
		name             string
		responseMessage  string
		expectedCategory protection.APIErrorCategory
	}{
		{name: "validation_failure", responseMessage: "gh: Validation Failed (HTTP 422): required_status_checks is invalid", expectedCategory: protection.APIErrorCategoryValidation},
		{name: "missing_repository", responseMessage: "gh: Not Found (HTTP 404)", expectedCategory: protection.APIErrorCategoryNotFound},
		{name: "missing_admin_rights", responseMessage: "gh: Must have admin rights to Repository. (HTTP 403)", expectedCategory: protection.APIErrorCategoryForbidden},
		{name: "bad_credentials", responseMessage: "gh: Bad credentials (HTTP 401)", expectedCategory: protection.APIErrorCategoryUnauthorized},
		{name: "rate_limited", responseMessage: "gh: API rate limit exceeded (HTTP 403)", expectedCategory: protection.APIErrorCategoryRateLimit},
		{name: "unrecognized_failure", responseMessage: "connection reset by peer", expectedCategory: protection.APIErrorCategoryUnknown},
		{name: "empty_message", responseMessage: "", expectedCategory: protection.APIErrorCategoryUnknown},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			classification := protection.ParseAPIError(testCase.responseMessage)

			require.Equal(subtest, testCase.expectedCategory, classification.Category)
			require.Equal(subtest, testCase.responseMessage, classification.OriginalMessage)
			require.NotEmpty(subtest, classification.Guidance)
		})
	}
}

func TestParseAPIErrorExtractsMentionedFields(testInstance *testing.T) {
	classification := protection.ParseAPIError("gh: Validation Failed (HTTP 422): required_status_checks and enforce_admins were rejected")

	require.Equal(testInstance, protection.APIErrorCategoryValidation, classification.Category)
	require.Equal(testInstance, []string{"required_status_checks", "enforce_admins"}, classification.Fields)
}
