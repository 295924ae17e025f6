package gitrepo_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devops-foundry/gitgovern/internal/execshell"
	"github.com/devops-foundry/gitgovern/internal/gitrepo"
)

const repositoryPathConstant = "/tmp/example"

type scriptedGitExecutor struct {
	responses        map[string]execshell.ExecutionResult
	failures         map[string]error
	executedCommands []execshell.CommandDetails
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.executedCommands = append(executor.executedCommands, details)
	commandKey := strings.Join(details.Arguments, " ")
	if failure, failureExists := executor.failures[commandKey]; failureExists {
		return execshell.ExecutionResult{}, failure
	}
	return executor.responses[commandKey], nil
}

func (executor *scriptedGitExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.executedCommands = append(executor.executedCommands, details)
	return execshell.ExecutionResult{}, nil
}

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrExecutorNotConfigured)
	require.Nil(testInstance, manager)
}

func TestRepositoryManagerOperations(testInstance *testing.T) {
	testCases := []struct {
		name          string
		responses     map[string]execshell.ExecutionResult
		failures      map[string]error
		invoke        func(manager *gitrepo.RepositoryManager) (any, error)
		expectedValue any
		expectedError string
	}{
		{
			name:      "clean_worktree_reports_true",
			responses: map[string]execshell.ExecutionResult{"status --porcelain": {StandardOutput: "\n"}},
			invoke: func(manager *gitrepo.RepositoryManager) (any, error) {
				return manager.CheckCleanWorktree(context.Background(), repositoryPathConstant)
			},
			expectedValue: true,
		},
		{
			name:      "dirty_worktree_reports_false",
			responses: map[string]execshell.ExecutionResult{"status --porcelain": {StandardOutput: " M internal/service.go\n"}},
			invoke: func(manager *gitrepo.RepositoryManager) (any, error) {
				return manager.CheckCleanWorktree(context.Background(), repositoryPathConstant)
			},
			expectedValue: false,
		},
		{
			name:      "current_branch_trims_output",
			responses: map[string]execshell.ExecutionResult{"rev-parse --abbrev-ref HEAD": {StandardOutput: "main\n"}},
			invoke: func(manager *gitrepo.RepositoryManager) (any, error) {
				return manager.GetCurrentBranch(context.Background(), repositoryPathConstant)
			},
			expectedValue: "main",
		},
		{
			name:      "detached_head_is_reported",
			responses: map[string]execshell.ExecutionResult{"rev-parse --abbrev-ref HEAD": {StandardOutput: "HEAD\n"}},
			invoke: func(manager *gitrepo.RepositoryManager) (any, error) {
				return manager.GetCurrentBranch(context.Background(), repositoryPathConstant)
			},
			expectedValue: "",
			expectedError: "detached HEAD",
		},
		{
			name:      "resolve_revision_returns_commit_identifier",
			responses: map[string]execshell.ExecutionResult{"rev-parse origin/main": {StandardOutput: "0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f\n"}},
			invoke: func(manager *gitrepo.RepositoryManager) (any, error) {
				return manager.ResolveRevision(context.Background(), repositoryPathConstant, "origin/main")
			},
			expectedValue: "0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f",
		},
		{
			name:     "unresolved_revision_is_wrapped",
			failures: map[string]error{"rev-parse origin/missing": errors.New("fatal: unknown revision")},
			invoke: func(manager *gitrepo.RepositoryManager) (any, error) {
				return manager.ResolveRevision(context.Background(), repositoryPathConstant, "origin/missing")
			},
			expectedValue: "",
			expectedError: "unable to resolve revision origin/missing",
		},
		{
			name:      "remote_url_is_returned",
			responses: map[string]execshell.ExecutionResult{"remote get-url origin": {StandardOutput: "git@github.com:octo/widgets.git\n"}},
			invoke: func(manager *gitrepo.RepositoryManager) (any, error) {
				return manager.GetRemoteURL(context.Background(), repositoryPathConstant, "origin")
			},
			expectedValue: "git@github.com:octo/widgets.git",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			executor := &scriptedGitExecutor{responses: testCase.responses, failures: testCase.failures}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(subtest, creationError)

			actualValue, operationError := testCase.invoke(manager)

			if len(testCase.expectedError) > 0 {
				require.Error(subtest, operationError)
				require.Contains(subtest, operationError.Error(), testCase.expectedError)
			} else {
				require.NoError(subtest, operationError)
			}
			require.Equal(subtest, testCase.expectedValue, actualValue)

			for _, executedCommand := range executor.executedCommands {
				require.Equal(subtest, repositoryPathConstant, executedCommand.WorkingDirectory)
			}
		})
	}
}
