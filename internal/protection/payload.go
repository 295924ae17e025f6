package protection

import (
	"encoding/json"
	"fmt"
)

const (
	requiredStatusChecksFieldConstant      = "required_status_checks"
	enforceAdminsFieldConstant             = "enforce_admins"
	pullRequestReviewsFieldConstant        = "required_pull_request_reviews"
	restrictionsFieldConstant              = "restrictions"
	requiredLinearHistoryFieldConstant     = "required_linear_history"
	allowForcePushesFieldConstant          = "allow_force_pushes"
	allowDeletionsFieldConstant            = "allow_deletions"
	strictFieldConstant                    = "strict"
	checksFieldConstant                    = "checks"
	deprecatedContextsFieldConstant        = "contexts"
	checkContextFieldConstant              = "context"
	approvingReviewCountFieldConstant      = "required_approving_review_count"
	dismissStaleReviewsFieldConstant       = "dismiss_stale_reviews"
	requireCodeOwnerReviewsFieldConstant   = "require_code_owner_reviews"
	missingFieldMessageConstant            = "required field is missing"
	booleanExpectedMessageConstant         = "value must be a boolean"
	objectOrNullExpectedMessageConstant    = "value must be an object or null"
	nullExpectedMessageConstant            = "value must be null or an empty object"
	checksArrayExpectedMessageConstant     = "value must be an array of {context} objects"
	checkContextExpectedMessageConstant    = "every check entry must carry a string context"
	deprecatedContextsMessageConstant      = "deprecated contexts array is not accepted; use checks with context objects"
	reviewCountExpectedMessageConstant     = "value must be a non-negative integer"
	reviewsObjectExpectedMessageConstant   = "value must be a populated object"
	payloadNotObjectMessageConstant        = "payload must be a JSON object"
	invalidPayloadJSONTemplateConstant     = "payload is not valid JSON: %s"
	validationErrorDisplayTemplateConstant = "%s: %s"
	payloadFieldPathTemplateConstant       = "%s.%s"
)

// StatusCheck names a single required status check context.
type StatusCheck struct {
	Context string `json:"context"`
}

// RequiredStatusChecks configures the status check gate of a protection payload.
type RequiredStatusChecks struct {
	Strict bool          `json:"strict"`
	Checks []StatusCheck `json:"checks"`
}

// RequiredPullRequestReviews configures the review gate of a protection payload.
type RequiredPullRequestReviews struct {
	DismissalRestrictions        map[string]any `json:"dismissal_restrictions,omitempty"`
	DismissStaleReviews          bool           `json:"dismiss_stale_reviews"`
	RequireCodeOwnerReviews      bool           `json:"require_code_owner_reviews"`
	RequiredApprovingReviewCount int            `json:"required_approving_review_count"`
}

// ProtectionPayload mirrors the exact wire format accepted by the branch protection endpoint.
type ProtectionPayload struct {
	RequiredStatusChecks       *RequiredStatusChecks       `json:"required_status_checks"`
	EnforceAdmins              bool                        `json:"enforce_admins"`
	RequiredPullRequestReviews *RequiredPullRequestReviews `json:"required_pull_request_reviews"`
	Restrictions               *struct{}                   `json:"restrictions"`
	RequiredLinearHistory      bool                        `json:"required_linear_history"`
	AllowForcePushes           bool                        `json:"allow_force_pushes"`
	AllowDeletions             bool                        `json:"allow_deletions"`
}

// ProtectionSettings captures the governance configuration for a protected branch.
type ProtectionSettings struct {
	Branch                  string         `mapstructure:"branch" json:"branch"`
	RequiredStatusChecks    []string       `mapstructure:"requiredStatusChecks" json:"requiredStatusChecks"`
	StrictStatusChecks      bool           `mapstructure:"strictStatusChecks" json:"strictStatusChecks"`
	RequiredApprovals       int            `mapstructure:"requiredApprovals" json:"requiredApprovals"`
	EnforceAdmins           bool           `mapstructure:"enforceAdmins" json:"enforceAdmins"`
	DismissStaleReviews     bool           `mapstructure:"dismissStaleReviews" json:"dismissStaleReviews"`
	RequireCodeOwnerReviews bool           `mapstructure:"requireCodeOwnerReviews" json:"requireCodeOwnerReviews"`
	RequiredLinearHistory   bool           `mapstructure:"requiredLinearHistory" json:"requiredLinearHistory"`
	AllowForcePushes        bool           `mapstructure:"allowForcePushes" json:"allowForcePushes"`
	AllowDeletions          bool           `mapstructure:"allowDeletions" json:"allowDeletions"`
	DismissalRestrictions   map[string]any `mapstructure:"dismissalRestrictions" json:"dismissalRestrictions,omitempty"`
}

// ValidationError describes a structural problem in a protection payload.
type ValidationError struct {
	Field   string
	Message string
}

// Error describes the validation failure.
func (validationError ValidationError) Error() string {
	return fmt.Sprintf(validationErrorDisplayTemplateConstant, validationError.Field, validationError.Message)
}

// BuildProtectionPayload maps governance settings onto the wire format.
// An empty status check list produces the null sentinel the endpoint requires,
// and the review gate object is always populated.
func BuildProtectionPayload(settings ProtectionSettings) ProtectionPayload {
	payload := ProtectionPayload{
		EnforceAdmins:         settings.EnforceAdmins,
		RequiredLinearHistory: settings.RequiredLinearHistory,
		AllowForcePushes:      settings.AllowForcePushes,
		AllowDeletions:        settings.AllowDeletions,
	}

	if len(settings.RequiredStatusChecks) > 0 {
		statusChecks := &RequiredStatusChecks{
			Strict: settings.StrictStatusChecks,
			Checks: make([]StatusCheck, 0, len(settings.RequiredStatusChecks)),
		}
		for _, checkContext := range settings.RequiredStatusChecks {
			statusChecks.Checks = append(statusChecks.Checks, StatusCheck{Context: checkContext})
		}
		payload.RequiredStatusChecks = statusChecks
	}

	reviewCount := settings.RequiredApprovals
	if reviewCount < 0 {
		reviewCount = 0
	}
	payload.RequiredPullRequestReviews = &RequiredPullRequestReviews{
		DismissStaleReviews:          settings.DismissStaleReviews,
		RequireCodeOwnerReviews:      settings.RequireCodeOwnerReviews,
		RequiredApprovingReviewCount: reviewCount,
	}
	if len(settings.DismissalRestrictions) > 0 {
		payload.RequiredPullRequestReviews.DismissalRestrictions = settings.DismissalRestrictions
	}

	return payload
}

// EncodeProtectionPayload serializes a payload for submission on standard input.
func EncodeProtectionPayload(payload ProtectionPayload) ([]byte, error) {
	return json.Marshal(payload)
}

// ValidatePayloadSchema structurally checks serialized payload JSON before any network call.
// It rejects the deprecated flat contexts variant of the status check gate.
func ValidatePayloadSchema(payloadBytes []byte) []ValidationError {
	var decodedPayload any
	if unmarshalError := json.Unmarshal(payloadBytes, &decodedPayload); unmarshalError != nil {
		return []ValidationError{{Field: "payload", Message: fmt.Sprintf(invalidPayloadJSONTemplateConstant, unmarshalError)}}
	}

	payloadObject, isObject := decodedPayload.(map[string]any)
	if !isObject {
		return []ValidationError{{Field: "payload", Message: payloadNotObjectMessageConstant}}
	}

	validationErrors := make([]ValidationError, 0)

	requiredFieldNames := []string{
		requiredStatusChecksFieldConstant,
		enforceAdminsFieldConstant,
		pullRequestReviewsFieldConstant,
		restrictionsFieldConstant,
		requiredLinearHistoryFieldConstant,
		allowForcePushesFieldConstant,
		allowDeletionsFieldConstant,
	}
	for _, fieldName := range requiredFieldNames {
		if _, fieldPresent := payloadObject[fieldName]; !fieldPresent {
			validationErrors = append(validationErrors, ValidationError{Field: fieldName, Message: missingFieldMessageConstant})
		}
	}

	booleanFieldNames := []string{
		enforceAdminsFieldConstant,
		requiredLinearHistoryFieldConstant,
		allowForcePushesFieldConstant,
		allowDeletionsFieldConstant,
	}
	for _, fieldName := range booleanFieldNames {
		fieldValue, fieldPresent := payloadObject[fieldName]
		if !fieldPresent {
			continue
		}
		if _, isBoolean := fieldValue.(bool); !isBoolean {
			validationErrors = append(validationErrors, ValidationError{Field: fieldName, Message: booleanExpectedMessageConstant})
		}
	}

	validationErrors = append(validationErrors, validateStatusChecksField(payloadObject)...)
	validationErrors = append(validationErrors, validateReviewsField(payloadObject)...)
	validationErrors = append(validationErrors, validateRestrictionsField(payloadObject)...)

	return validationErrors
}

func validateStatusChecksField(payloadObject map[string]any) []ValidationError {
	fieldValue, fieldPresent := payloadObject[requiredStatusChecksFieldConstant]
	if !fieldPresent || fieldValue == nil {
		return nil
	}

	statusChecksObject, isObject := fieldValue.(map[string]any)
	if !isObject {
		return []ValidationError{{Field: requiredStatusChecksFieldConstant, Message: objectOrNullExpectedMessageConstant}}
	}

	validationErrors := make([]ValidationError, 0)

	if _, deprecatedPresent := statusChecksObject[deprecatedContextsFieldConstant]; deprecatedPresent {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fmt.Sprintf(payloadFieldPathTemplateConstant, requiredStatusChecksFieldConstant, deprecatedContextsFieldConstant),
			Message: deprecatedContextsMessageConstant,
		})
	}

	strictValue, strictPresent := statusChecksObject[strictFieldConstant]
	if !strictPresent {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fmt.Sprintf(payloadFieldPathTemplateConstant, requiredStatusChecksFieldConstant, strictFieldConstant),
			Message: missingFieldMessageConstant,
		})
	} else if _, isBoolean := strictValue.(bool); !isBoolean {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fmt.Sprintf(payloadFieldPathTemplateConstant, requiredStatusChecksFieldConstant, strictFieldConstant),
			Message: booleanExpectedMessageConstant,
		})
	}

	checksValue, checksPresent := statusChecksObject[checksFieldConstant]
	if !checksPresent {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fmt.Sprintf(payloadFieldPathTemplateConstant, requiredStatusChecksFieldConstant, checksFieldConstant),
			Message: missingFieldMessageConstant,
		})
		return validationErrors
	}

	checksArray, isArray := checksValue.([]any)
	if !isArray {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fmt.Sprintf(payloadFieldPathTemplateConstant, requiredStatusChecksFieldConstant, checksFieldConstant),
			Message: checksArrayExpectedMessageConstant,
		})
		return validationErrors
	}

	for _, checkEntry := range checksArray {
		checkObject, isCheckObject := checkEntry.(map[string]any)
		if !isCheckObject {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fmt.Sprintf(payloadFieldPathTemplateConstant, requiredStatusChecksFieldConstant, checksFieldConstant),
				Message: checksArrayExpectedMessageConstant,
			})
			continue
		}
		contextValue, contextPresent := checkObject[checkContextFieldConstant]
		if !contextPresent {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fmt.Sprintf(payloadFieldPathTemplateConstant, requiredStatusChecksFieldConstant, checksFieldConstant),
				Message: checkContextExpectedMessageConstant,
			})
			continue
		}
		if _, isString := contextValue.(string); !isString {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fmt.Sprintf(payloadFieldPathTemplateConstant, requiredStatusChecksFieldConstant, checksFieldConstant),
				Message: checkContextExpectedMessageConstant,
			})
		}
	}

	return validationErrors
}

func validateReviewsField(payloadObject map[string]any) []ValidationError {
	fieldValue, fieldPresent := payloadObject[pullRequestReviewsFieldConstant]
	if !fieldPresent {
		return nil
	}
	if fieldValue == nil {
		return []ValidationError{{Field: pullRequestReviewsFieldConstant, Message: reviewsObjectExpectedMessageConstant}}
	}

	reviewsObject, isObject := fieldValue.(map[string]any)
	if !isObject {
		return []ValidationError{{Field: pullRequestReviewsFieldConstant, Message: reviewsObjectExpectedMessageConstant}}
	}

	validationErrors := make([]ValidationError, 0)

	reviewBooleanFieldNames := []string{dismissStaleReviewsFieldConstant, requireCodeOwnerReviewsFieldConstant}
	for _, fieldName := range reviewBooleanFieldNames {
		booleanValue, booleanPresent := reviewsObject[fieldName]
		if !booleanPresent {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fmt.Sprintf(payloadFieldPathTemplateConstant, pullRequestReviewsFieldConstant, fieldName),
				Message: missingFieldMessageConstant,
			})
			continue
		}
		if _, isBoolean := booleanValue.(bool); !isBoolean {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fmt.Sprintf(payloadFieldPathTemplateConstant, pullRequestReviewsFieldConstant, fieldName),
				Message: booleanExpectedMessageConstant,
			})
		}
	}

	countValue, countPresent := reviewsObject[approvingReviewCountFieldConstant]
	if !countPresent {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fmt.Sprintf(payloadFieldPathTemplateConstant, pullRequestReviewsFieldConstant, approvingReviewCountFieldConstant),
			Message: missingFieldMessageConstant,
		})
		return validationErrors
	}

	countNumber, isNumber := countValue.(float64)
	if !isNumber || countNumber < 0 || countNumber != float64(int(countNumber)) {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fmt.Sprintf(payloadFieldPathTemplateConstant, pullRequestReviewsFieldConstant, approvingReviewCountFieldConstant),
			Message: reviewCountExpectedMessageConstant,
		})
	}

	return validationErrors
}

func validateRestrictionsField(payloadObject map[string]any) []ValidationError {
	fieldValue, fieldPresent := payloadObject[restrictionsFieldConstant]
	if !fieldPresent || fieldValue == nil {
		return nil
	}

	restrictionsObject, isObject := fieldValue.(map[string]any)
	if !isObject || len(restrictionsObject) > 0 {
		return []ValidationError{{Field: restrictionsFieldConstant, Message: nullExpectedMessageConstant}}
	}

	return nil
}
