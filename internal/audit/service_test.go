package audit_test

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devops-foundry/gitgovern/internal/audit"
	"github.com/devops-foundry/gitgovern/internal/githubcli"
)

const (
	repositoryConstant        = "octo/widgets"
	branchNameConstant        = "main"
	workflowDirectoryConstant = ".github/workflows"
)

type stubInspectionAPI struct {
	secrets           []githubcli.RepositorySecret
	secretsError      error
	protectionState   githubcli.BranchProtectionState
	protectionError   error
	environments      []githubcli.RepositoryEnvironment
	environmentsError error
}

func (api *stubInspectionAPI) ListSecrets(context.Context, string) ([]githubcli.RepositorySecret, error) {
	return api.secrets, api.secretsError
}

func (api *stubInspectionAPI) GetBranchProtection(context.Context, string, string) (githubcli.BranchProtectionState, error) {
	return api.protectionState, api.protectionError
}

func (api *stubInspectionAPI) ListEnvironments(context.Context, string) ([]githubcli.RepositoryEnvironment, error) {
	return api.environments, api.environmentsError
}

type fakeFileInfo struct {
	name        string
	isDirectory bool
}

func (info fakeFileInfo) Name() string       { return info.name }
func (info fakeFileInfo) Size() int64        { return 0 }
func (info fakeFileInfo) Mode() fs.FileMode  { return 0 }
func (info fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (info fakeFileInfo) IsDir() bool        { return info.isDirectory }
func (info fakeFileInfo) Sys() any           { return nil }

type fakeDirEntry struct {
	name        string
	isDirectory bool
}

func (entry fakeDirEntry) Name() string               { return entry.name }
func (entry fakeDirEntry) IsDir() bool                { return entry.isDirectory }
func (entry fakeDirEntry) Type() fs.FileMode          { return 0 }
func (entry fakeDirEntry) Info() (fs.FileInfo, error) { return fakeFileInfo{name: entry.name}, nil }

type fakeFileSystem struct {
	directories map[string][]string
	files       map[string][]byte
}

func (filesystem fakeFileSystem) Stat(filePath string) (fs.FileInfo, error) {
	if _, directoryExists := filesystem.directories[filePath]; directoryExists {
		return fakeFileInfo{name: filePath, isDirectory: true}, nil
	}
	if _, fileExists := filesystem.files[filePath]; fileExists {
		return fakeFileInfo{name: filePath}, nil
	}
	return nil, fs.ErrNotExist
}

func (filesystem fakeFileSystem) ReadDir(directoryPath string) ([]fs.DirEntry, error) {
	entryNames, directoryExists := filesystem.directories[directoryPath]
	if !directoryExists {
		return nil, fs.ErrNotExist
	}
	directoryEntries := make([]fs.DirEntry, 0, len(entryNames))
	for _, entryName := range entryNames {
		directoryEntries = append(directoryEntries, fakeDirEntry{name: entryName})
	}
	return directoryEntries, nil
}

func (filesystem fakeFileSystem) ReadFile(filePath string) ([]byte, error) {
	fileContents, fileExists := filesystem.files[filePath]
	if !fileExists {
		return nil, fs.ErrNotExist
	}
	return fileContents, nil
}

func newWorkflowFileSystem(workflowDocuments map[string]string) fakeFileSystem {
	filesystem := fakeFileSystem{
		directories: map[string][]string{workflowDirectoryConstant: {}},
		files:       map[string][]byte{},
	}
	for fileName, fileContents := range workflowDocuments {
		filesystem.directories[workflowDirectoryConstant] = append(filesystem.directories[workflowDirectoryConstant], fileName)
		filesystem.files[path.Join(workflowDirectoryConstant, fileName)] = []byte(fileContents)
	}
	return filesystem
}

func newValidator(testInstance *testing.T, api *stubInspectionAPI, filesystem fakeFileSystem) *audit.Service {
	testInstance.Helper()
	service, creationError := audit.NewService(audit.Dependencies{GitHubClient: api, FileSystem: filesystem})
	require.NoError(testInstance, creationError)
	return service
}

func TestCheckSecrets(testInstance *testing.T) {
	testCases := []struct {
		name             string
		api              *stubInspectionAPI
		requiredSecrets  []string
		expectedStatus   audit.CheckStatus
		expectedFragment string
	}{
		{
			name:            "superset_of_required_passes",
			api:             &stubInspectionAPI{secrets: []githubcli.RepositorySecret{{Name: "A"}, {Name: "B"}, {Name: "EXTRA"}}},
			requiredSecrets: []string{"A", "B"},
			expectedStatus:  audit.CheckStatusPass,
		},
		{
			name:             "missing_secret_fails_and_is_named",
			api:              &stubInspectionAPI{secrets: []githubcli.RepositorySecret{{Name: "A"}}},
			requiredSecrets:  []string{"A", "B"},
			expectedStatus:   audit.CheckStatusFail,
			expectedFragment: "B",
		},
		{
			name:             "listing_failure_fails_with_guidance",
			api:              &stubInspectionAPI{secretsError: errors.New("gh: HTTP 401")},
			requiredSecrets:  []string{"A"},
			expectedStatus:   audit.CheckStatusFail,
			expectedFragment: "unable to list",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			service := newValidator(subtest, testCase.api, newWorkflowFileSystem(nil))

			check := service.CheckSecrets(context.Background(), repositoryConstant, testCase.requiredSecrets)

			require.Equal(subtest, testCase.expectedStatus, check.Status)
			if len(testCase.expectedFragment) > 0 {
				require.Contains(subtest, check.Message, testCase.expectedFragment)
			}
			if check.Status == audit.CheckStatusFail {
				require.NotEmpty(subtest, check.Remediation)
			}
		})
	}
}

func TestCheckBranchProtection(testInstance *testing.T) {
	testCases := []struct {
		name             string
		api              *stubInspectionAPI
		expectedStatus   audit.CheckStatus
		expectedFragment string
	}{
		{
			name:             "missing_protection_fails",
			api:              &stubInspectionAPI{protectionError: githubcli.ProtectionNotFoundError{Repository: repositoryConstant, Branch: branchNameConstant}},
			expectedStatus:   audit.CheckStatusFail,
			expectedFragment: "no protection rules",
		},
		{
			name: "active_protection_passes",
			api: &stubInspectionAPI{protectionState: githubcli.BranchProtectionState{
				Enabled: true,
				Payload: []byte(`{"enforce_admins":{"enabled":true}}`),
			}},
			expectedStatus: audit.CheckStatusPass,
		},
		{
			name: "empty_protection_entry_warns",
			api: &stubInspectionAPI{protectionState: githubcli.BranchProtectionState{
				Enabled: true,
				Payload: []byte(`{"enforce_admins":{"enabled":false}}`),
			}},
			expectedStatus: audit.CheckStatusWarning,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			service := newValidator(subtest, testCase.api, newWorkflowFileSystem(nil))

			check := service.CheckBranchProtection(context.Background(), repositoryConstant, branchNameConstant)

			require.Equal(subtest, testCase.expectedStatus, check.Status)
			if len(testCase.expectedFragment) > 0 {
				require.Contains(subtest, check.Message, testCase.expectedFragment)
			}
		})
	}
}

func TestCheckWorkflows(testInstance *testing.T) {
	validWorkflowDocument := "name: build\non:\n  push:\n    branches: [main]\njobs:\n  build:\n    runs-on: ubuntu-latest\n    steps:\n      - uses: actions/checkout@v4\n"

	testCases := []struct {
		name             string
		filesystem       fakeFileSystem
		expectedStatus   audit.CheckStatus
		expectedFragment string
	}{
		{
			name:             "absent_directory_fails",
			filesystem:       fakeFileSystem{directories: map[string][]string{}, files: map[string][]byte{}},
			expectedStatus:   audit.CheckStatusFail,
			expectedFragment: "does not exist",
		},
		{
			name:             "empty_directory_fails",
			filesystem:       newWorkflowFileSystem(nil),
			expectedStatus:   audit.CheckStatusFail,
			expectedFragment: "contains no workflow files",
		},
		{
			name:           "valid_workflows_pass",
			filesystem:     newWorkflowFileSystem(map[string]string{"ci.yml": validWorkflowDocument, "release.yaml": validWorkflowDocument}),
			expectedStatus: audit.CheckStatusPass,
		},
		{
			name:             "leading_tab_indentation_fails",
			filesystem:       newWorkflowFileSystem(map[string]string{"ci.yml": "jobs:\n\tbuild:\n"}),
			expectedStatus:   audit.CheckStatusFail,
			expectedFragment: "ci.yml",
		},
		{
			name:             "unparsable_document_fails",
			filesystem:       newWorkflowFileSystem(map[string]string{"ci.yml": "jobs: [unclosed\n"}),
			expectedStatus:   audit.CheckStatusFail,
			expectedFragment: "invalid syntax",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			service := newValidator(subtest, &stubInspectionAPI{}, testCase.filesystem)

			check := service.CheckWorkflows(workflowDirectoryConstant)

			require.Equal(subtest, testCase.expectedStatus, check.Status)
			if len(testCase.expectedFragment) > 0 {
				require.Contains(subtest, check.Message, testCase.expectedFragment)
			}
		})
	}
}

func TestCheckEnvironments(testInstance *testing.T) {
	api := &stubInspectionAPI{environments: []githubcli.RepositoryEnvironment{{Name: "staging"}}}
	service := newValidator(testInstance, api, newWorkflowFileSystem(nil))

	check := service.CheckEnvironments(context.Background(), repositoryConstant, []string{"staging", "production"})

	require.Equal(testInstance, audit.CheckStatusFail, check.Status)
	require.Contains(testInstance, check.Message, "production")
	require.NotEmpty(testInstance, check.Remediation)
}

func TestGenerateReport(testInstance *testing.T) {
	validWorkflowDocument := "name: build\njobs:\n  build:\n    runs-on: ubuntu-latest\n"

	api := &stubInspectionAPI{
		secrets: []githubcli.RepositorySecret{{Name: "DEPLOY_TOKEN"}},
		protectionState: githubcli.BranchProtectionState{
			Enabled: true,
			Payload: []byte(`{"enforce_admins":{"enabled":true}}`),
		},
		environments: []githubcli.RepositoryEnvironment{{Name: "production"}},
	}
	service := newValidator(testInstance, api, newWorkflowFileSystem(map[string]string{"ci.yml": validWorkflowDocument}))

	passingResult := service.GenerateReport(context.Background(), audit.ReportOptions{
		Repository:           repositoryConstant,
		Branch:               branchNameConstant,
		RequiredSecrets:      []string{"DEPLOY_TOKEN"},
		RequiredEnvironments: []string{"production"},
		WorkflowDirectory:    workflowDirectoryConstant,
	})

	require.True(testInstance, passingResult.Passed)
	require.Len(testInstance, passingResult.Checks, 4)
	require.Equal(testInstance, 4, passingResult.Summary.Passed)
	require.Zero(testInstance, passingResult.Summary.Failed)

	failingResult := service.GenerateReport(context.Background(), audit.ReportOptions{
		Repository:           repositoryConstant,
		Branch:               branchNameConstant,
		RequiredSecrets:      []string{"DEPLOY_TOKEN", "REGISTRY_PASSWORD"},
		RequiredEnvironments: []string{"production"},
		WorkflowDirectory:    workflowDirectoryConstant,
	})

	require.False(testInstance, failingResult.Passed)
	require.Equal(testInstance, 1, failingResult.Summary.Failed)
	for _, check := range failingResult.Checks {
		if check.Status == audit.CheckStatusFail {
			require.NotEmpty(testInstance, check.Remediation)
		}
	}
}

type fixedClock struct {
	instant time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.instant
}

func TestGenerateReportStampsGenerationTime(testInstance *testing.T) {
	reportInstant := time.Date(2026, time.August, 30, 12, 30, 0, 0, time.UTC)
	service, creationError := audit.NewService(audit.Dependencies{
		GitHubClient: &stubInspectionAPI{},
		FileSystem:   newWorkflowFileSystem(nil),
		Clock:        fixedClock{instant: reportInstant},
	})
	require.NoError(testInstance, creationError)

	validationResult := service.GenerateReport(context.Background(), audit.ReportOptions{
		Repository:        repositoryConstant,
		Branch:            branchNameConstant,
		WorkflowDirectory: workflowDirectoryConstant,
	})

	require.Equal(testInstance, reportInstant, validationResult.GeneratedAt)
}
