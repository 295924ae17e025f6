package commitmsg_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devops-foundry/gitgovern/internal/commitmsg"
)

func codeAnalysis(path string) commitmsg.FileAnalysis {
	return commitmsg.FileAnalysis{Path: path, Category: commitmsg.CategoryCode, Purpose: "implementation"}
}

func documentationAnalysis(path string) commitmsg.FileAnalysis {
	return commitmsg.FileAnalysis{Path: path, Category: commitmsg.CategoryDocumentation, Purpose: "documentation"}
}

func testAnalysis(path string) commitmsg.FileAnalysis {
	return commitmsg.FileAnalysis{Path: path, Category: commitmsg.CategoryTest, Purpose: "test coverage"}
}

func configAnalysis(path string) commitmsg.FileAnalysis {
	return commitmsg.FileAnalysis{Path: path, Category: commitmsg.CategoryConfig, Purpose: "configuration"}
}

func assetAnalysis(path string) commitmsg.FileAnalysis {
	return commitmsg.FileAnalysis{Path: path, Category: commitmsg.CategoryAsset, Purpose: "static asset"}
}

func TestInferCommitType(testInstance *testing.T) {
	testCases := []struct {
		name         string
		analyses     []commitmsg.FileAnalysis
		expectedType commitmsg.CommitType
	}{
		{
			name:         "all documentation is docs",
			analyses:     []commitmsg.FileAnalysis{documentationAnalysis("README.md"), documentationAnalysis("docs/guide.md")},
			expectedType: commitmsg.CommitTypeDocs,
		},
		{
			name:         "all tests is test",
			analyses:     []commitmsg.FileAnalysis{testAnalysis("a_test.go"), testAnalysis("b_test.go")},
			expectedType: commitmsg.CommitTypeTest,
		},
		{
			name:         "all configuration is chore",
			analyses:     []commitmsg.FileAnalysis{configAnalysis("go.mod"), configAnalysis(".github/workflows/ci.yml")},
			expectedType: commitmsg.CommitTypeChore,
		},
		{
			name:         "any code makes it feat",
			analyses:     []commitmsg.FileAnalysis{documentationAnalysis("README.md"), codeAnalysis("main.go")},
			expectedType: commitmsg.CommitTypeFeat,
		},
		{
			name:         "mixed non-code batch is chore",
			analyses:     []commitmsg.FileAnalysis{documentationAnalysis("README.md"), assetAnalysis("logo.png")},
			expectedType: commitmsg.CommitTypeChore,
		},
		{
			name:         "empty batch is chore",
			expectedType: commitmsg.CommitTypeChore,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedType, commitmsg.InferCommitType(testCase.analyses))
		})
	}
}

func TestFormatConventionalCommit(testInstance *testing.T) {
	testCases := []struct {
		name     string
		message  commitmsg.CommitMessage
		expected string
	}{
		{
			name:     "header only",
			message:  commitmsg.CommitMessage{Type: commitmsg.CommitTypeFeat, Subject: "add request retry helper"},
			expected: "feat: add request retry helper",
		},
		{
			name:     "header with scope",
			message:  commitmsg.CommitMessage{Type: commitmsg.CommitTypeFix, Scope: "sync", Subject: "handle detached head state"},
			expected: "fix(sync): handle detached head state",
		},
		{
			name: "header body and footer",
			message: commitmsg.CommitMessage{
				Type:    commitmsg.CommitTypeChore,
				Subject: "refresh dependency manifests",
				Body:    "- go.mod: configuration\n- go.sum: configuration",
				Footer:  "Refs: #42",
			},
			expected: "chore: refresh dependency manifests\n\n- go.mod: configuration\n- go.sum: configuration\n\nRefs: #42",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			formattedMessage := commitmsg.FormatConventionalCommit(testCase.message)

			require.Equal(testInstance, testCase.expected, formattedMessage)
			require.Regexp(testInstance, commitmsg.ConventionalCommitHeaderPattern, formattedMessage)
		})
	}
}

func TestValidateMessageQuality(testInstance *testing.T) {
	testCases := []struct {
		name               string
		message            commitmsg.CommitMessage
		expectedValid      bool
		expectedViolations int
	}{
		{
			name:          "well formed message passes",
			message:       commitmsg.CommitMessage{Type: commitmsg.CommitTypeFeat, Subject: "add request retry helper"},
			expectedValid: true,
		},
		{
			name:               "empty subject fails",
			message:            commitmsg.CommitMessage{Type: commitmsg.CommitTypeFeat},
			expectedValid:      false,
			expectedViolations: 1,
		},
		{
			name:               "short subject fails",
			message:            commitmsg.CommitMessage{Type: commitmsg.CommitTypeFix, Subject: "fix it"},
			expectedValid:      false,
			expectedViolations: 1,
		},
		{
			name:               "trailing period fails",
			message:            commitmsg.CommitMessage{Type: commitmsg.CommitTypeDocs, Subject: "document the release flow."},
			expectedValid:      false,
			expectedViolations: 1,
		},
		{
			name:               "upper case start fails",
			message:            commitmsg.CommitMessage{Type: commitmsg.CommitTypeDocs, Subject: "Document the release flow"},
			expectedValid:      false,
			expectedViolations: 1,
		},
		{
			name:               "unknown type fails",
			message:            commitmsg.CommitMessage{Type: "feature", Subject: "add request retry helper"},
			expectedValid:      false,
			expectedViolations: 1,
		},
		{
			name:               "violations accumulate",
			message:            commitmsg.CommitMessage{Type: "feature", Subject: "Fix."},
			expectedValid:      false,
			expectedViolations: 4,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			qualityReport := commitmsg.ValidateMessageQuality(testCase.message)

			require.Equal(testInstance, testCase.expectedValid, qualityReport.Valid)
			require.Len(testInstance, qualityReport.Errors, testCase.expectedViolations)
		})
	}
}

func TestRepairMessageQuality(testInstance *testing.T) {
	testCases := []struct {
		name            string
		message         commitmsg.CommitMessage
		expectedSubject string
		expectedType    commitmsg.CommitType
	}{
		{
			name:            "trailing period is stripped",
			message:         commitmsg.CommitMessage{Type: commitmsg.CommitTypeDocs, Subject: "document the release flow."},
			expectedSubject: "document the release flow",
			expectedType:    commitmsg.CommitTypeDocs,
		},
		{
			name:            "upper case start is lowered",
			message:         commitmsg.CommitMessage{Type: commitmsg.CommitTypeDocs, Subject: "Document the release flow"},
			expectedSubject: "document the release flow",
			expectedType:    commitmsg.CommitTypeDocs,
		},
		{
			name:            "short subject is padded",
			message:         commitmsg.CommitMessage{Type: commitmsg.CommitTypeFix, Subject: "fix"},
			expectedSubject: "fix update files",
			expectedType:    commitmsg.CommitTypeFix,
		},
		{
			name:            "empty subject is replaced",
			message:         commitmsg.CommitMessage{Type: commitmsg.CommitTypeChore},
			expectedSubject: "update files",
			expectedType:    commitmsg.CommitTypeChore,
		},
		{
			name:            "unknown type becomes chore",
			message:         commitmsg.CommitMessage{Type: "feature", Subject: "add request retry helper"},
			expectedSubject: "add request retry helper",
			expectedType:    commitmsg.CommitTypeChore,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repairedMessage := commitmsg.RepairMessageQuality(testCase.message)

			require.Equal(testInstance, testCase.expectedSubject, repairedMessage.Subject)
			require.Equal(testInstance, testCase.expectedType, repairedMessage.Type)
			require.True(testInstance, commitmsg.ValidateMessageQuality(repairedMessage).Valid)
		})
	}
}
