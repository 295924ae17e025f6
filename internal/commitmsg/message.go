package commitmsg

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// CommitType enumerates the conventional commit types the generator emits.
type CommitType string

const (
	CommitTypeFeat     CommitType = "feat"
	CommitTypeFix      CommitType = "fix"
	CommitTypeDocs     CommitType = "docs"
	CommitTypeChore    CommitType = "chore"
	CommitTypeTest     CommitType = "test"
	CommitTypeRefactor CommitType = "refactor"
	CommitTypeStyle    CommitType = "style"
	CommitTypeCI       CommitType = "ci"
)

const (
	minimumSubjectLengthConstant        = 10
	subjectPaddingSuffixConstant        = " update files"
	emptySubjectMessageConstant         = "subject must not be empty"
	shortSubjectMessageTemplateConstant = "subject must be at least %d characters"
	trailingPeriodMessageConstant       = "subject must not end with a period"
	upperCaseStartMessageConstant       = "subject must start with a lower-case letter"
	unknownTypeMessageTemplateConstant  = "commit type %q is not one of the allowed types"
	headerWithScopeTemplateConstant     = "%s(%s): %s"
	headerTemplateConstant              = "%s: %s"
	sectionSeparatorConstant            = "\n\n"
)

// ConventionalCommitHeaderPattern matches the first line of a well-formed
// conventional commit message.
var ConventionalCommitHeaderPattern = regexp.MustCompile(`^(feat|fix|docs|chore|test|refactor|style|ci)(\([^)]+\))?: .+`)

var allowedCommitTypes = map[CommitType]struct{}{
	CommitTypeFeat:     {},
	CommitTypeFix:      {},
	CommitTypeDocs:     {},
	CommitTypeChore:    {},
	CommitTypeTest:     {},
	CommitTypeRefactor: {},
	CommitTypeStyle:    {},
	CommitTypeCI:       {},
}

// CommitMessage is a structured conventional commit prior to formatting.
type CommitMessage struct {
	Type    CommitType
	Scope   string
	Subject string
	Body    string
	Footer  string
	Files   []string
}

// QualityReport lists the quality-gate violations of a commit message.
type QualityReport struct {
	Valid  bool
	Errors []string
}

// IsAllowedCommitType reports whether the type is one of the eight allowed values.
func IsAllowedCommitType(commitType CommitType) bool {
	_, typeAllowed := allowedCommitTypes[commitType]
	return typeAllowed
}

// InferCommitType derives the commit type from the homogeneity of the batch.
// An all-documentation batch is docs, all-tests is test, all-config is chore,
// any code file makes it feat, anything else is chore.
func InferCommitType(analyses []FileAnalysis) CommitType {
	if len(analyses) == 0 {
		return CommitTypeChore
	}

	allDocumentation := true
	allTests := true
	allConfig := true
	anyCode := false
	for _, analysis := range analyses {
		if analysis.Category != CategoryDocumentation {
			allDocumentation = false
		}
		if analysis.Category != CategoryTest {
			allTests = false
		}
		if analysis.Category != CategoryConfig {
			allConfig = false
		}
		if analysis.Category == CategoryCode {
			anyCode = true
		}
	}

	switch {
	case allDocumentation:
		return CommitTypeDocs
	case allTests:
		return CommitTypeTest
	case allConfig:
		return CommitTypeChore
	case anyCode:
		return CommitTypeFeat
	default:
		return CommitTypeChore
	}
}

// FormatConventionalCommit renders the message in conventional commit form.
func FormatConventionalCommit(message CommitMessage) string {
	var header string
	if len(message.Scope) > 0 {
		header = fmt.Sprintf(headerWithScopeTemplateConstant, message.Type, message.Scope, message.Subject)
	} else {
		header = fmt.Sprintf(headerTemplateConstant, message.Type, message.Subject)
	}

	sections := []string{header}
	if len(message.Body) > 0 {
		sections = append(sections, message.Body)
	}
	if len(message.Footer) > 0 {
		sections = append(sections, message.Footer)
	}
	return strings.Join(sections, sectionSeparatorConstant)
}

// ValidateMessageQuality checks the message against the quality gate.
func ValidateMessageQuality(message CommitMessage) QualityReport {
	var violations []string

	trimmedSubject := strings.TrimSpace(message.Subject)
	if len(trimmedSubject) == 0 {
		violations = append(violations, emptySubjectMessageConstant)
	} else {
		if len(trimmedSubject) < minimumSubjectLengthConstant {
			violations = append(violations, fmt.Sprintf(shortSubjectMessageTemplateConstant, minimumSubjectLengthConstant))
		}
		if strings.HasSuffix(trimmedSubject, ".") {
			violations = append(violations, trailingPeriodMessageConstant)
		}
		firstRune := []rune(trimmedSubject)[0]
		if unicode.IsUpper(firstRune) {
			violations = append(violations, upperCaseStartMessageConstant)
		}
	}

	if !IsAllowedCommitType(message.Type) {
		violations = append(violations, fmt.Sprintf(unknownTypeMessageTemplateConstant, message.Type))
	}

	return QualityReport{Valid: len(violations) == 0, Errors: violations}
}

// RepairMessageQuality fixes the common quality-gate violations instead of
// rejecting the message: trailing periods are stripped, an upper-case start is
// lowered, and short subjects are padded.
func RepairMessageQuality(message CommitMessage) CommitMessage {
	repairedSubject := strings.TrimSpace(message.Subject)
	repairedSubject = strings.TrimRight(repairedSubject, ".")

	if len(repairedSubject) > 0 {
		subjectRunes := []rune(repairedSubject)
		subjectRunes[0] = unicode.ToLower(subjectRunes[0])
		repairedSubject = string(subjectRunes)
	}

	if len(repairedSubject) < minimumSubjectLengthConstant {
		repairedSubject = strings.TrimSpace(repairedSubject + subjectPaddingSuffixConstant)
	}

	message.Subject = repairedSubject
	if !IsAllowedCommitType(message.Type) {
		message.Type = CommitTypeChore
	}
	return message
}
