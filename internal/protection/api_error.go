package protection

import (
	"strings"
)

// APIErrorCategory classifies branch protection API failures.
type APIErrorCategory string

// Recognized API failure categories.
const (
	APIErrorCategoryValidation   APIErrorCategory = APIErrorCategory("validation")
	APIErrorCategoryNotFound     APIErrorCategory = APIErrorCategory("not-found")
	APIErrorCategoryForbidden    APIErrorCategory = APIErrorCategory("forbidden")
	APIErrorCategoryUnauthorized APIErrorCategory = APIErrorCategory("unauthorized")
	APIErrorCategoryRateLimit    APIErrorCategory = APIErrorCategory("rate-limit")
	APIErrorCategoryUnknown      APIErrorCategory = APIErrorCategory("unknown")
)

const (
	validationGuidanceConstant   = "The protection payload was rejected by GitHub; compare the payload fields against the branch protection schema and correct the flagged values."
	notFoundGuidanceConstant     = "The repository or branch was not found; verify the owner, repository, and branch names and confirm the token can see the repository."
	forbiddenGuidanceConstant    = "The operation was forbidden; branch protection requires admin permission on the repository, so check the token scopes and your role."
	unauthorizedGuidanceConstant = "Authentication failed; run gh auth login or refresh the credentials before retrying."
	rateLimitGuidanceConstant    = "The GitHub API rate limit was hit; wait for the limit window to reset or authenticate with a token that has a higher allowance."
	unknownGuidanceConstant      = "The request failed for an unrecognized reason; inspect the original message, then retry once the underlying condition is addressed."
)

// APIErrorClassification pairs the original failure text with actionable remediation guidance.
type APIErrorClassification struct {
	Category        APIErrorCategory
	OriginalMessage string
	Guidance        string
	Fields          []string
}

var categoryGuidanceMapping = map[APIErrorCategory]string{
	APIErrorCategoryValidation:   validationGuidanceConstant,
	APIErrorCategoryNotFound:     notFoundGuidanceConstant,
	APIErrorCategoryForbidden:    forbiddenGuidanceConstant,
	APIErrorCategoryUnauthorized: unauthorizedGuidanceConstant,
	APIErrorCategoryRateLimit:    rateLimitGuidanceConstant,
	APIErrorCategoryUnknown:      unknownGuidanceConstant,
}

// ParseAPIError classifies a raw API failure message and attaches guidance.
// Guidance is always non-empty, including for unrecognized failures.
func ParseAPIError(responseMessage string) APIErrorClassification {
	normalizedMessage := strings.ToLower(responseMessage)

	category := APIErrorCategoryUnknown
	switch {
	case strings.Contains(normalizedMessage, "rate limit") || strings.Contains(normalizedMessage, "secondary limit"):
		category = APIErrorCategoryRateLimit
	case strings.Contains(normalizedMessage, "http 422") || strings.Contains(normalizedMessage, "validation failed") || strings.Contains(normalizedMessage, "invalid request"):
		category = APIErrorCategoryValidation
	case strings.Contains(normalizedMessage, "http 404") || strings.Contains(normalizedMessage, "not found"):
		category = APIErrorCategoryNotFound
	case strings.Contains(normalizedMessage, "http 401") || strings.Contains(normalizedMessage, "unauthorized") || strings.Contains(normalizedMessage, "bad credentials"):
		category = APIErrorCategoryUnauthorized
	case strings.Contains(normalizedMessage, "http 403") || strings.Contains(normalizedMessage, "forbidden") || strings.Contains(normalizedMessage, "admin rights"):
		category = APIErrorCategoryForbidden
	}

	return APIErrorClassification{
		Category:        category,
		OriginalMessage: responseMessage,
		Guidance:        categoryGuidanceMapping[category],
		Fields:          extractFieldNames(responseMessage, category),
	}
}

func extractFieldNames(responseMessage string, category APIErrorCategory) []string {
	if category != APIErrorCategoryValidation {
		return nil
	}

	knownFieldNames := []string{
		requiredStatusChecksFieldConstant,
		enforceAdminsFieldConstant,
		pullRequestReviewsFieldConstant,
		restrictionsFieldConstant,
		requiredLinearHistoryFieldConstant,
		allowForcePushesFieldConstant,
		allowDeletionsFieldConstant,
	}

	mentionedFields := make([]string, 0)
	for _, fieldName := range knownFieldNames {
		if strings.Contains(responseMessage, fieldName) {
			mentionedFields = append(mentionedFields, fieldName)
		}
	}
	if len(mentionedFields) == 0 {
		return nil
	}
	return mentionedFields
}
