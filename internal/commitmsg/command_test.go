package commitmsg_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devops-foundry/gitgovern/internal/commitmsg"
	"github.com/devops-foundry/gitgovern/internal/execshell"
)

func runCommitMessageCommand(testInstance *testing.T, executor *scriptedExecutor, files map[string][]byte, arguments ...string) (*bytes.Buffer, error) {
	testInstance.Helper()

	builder := &commitmsg.CommandBuilder{
		GitExecutor: executor,
		FileSystem:  fakeFileSystem{files: files},
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs(arguments)
	command.SetContext(context.Background())

	return outputBuffer, command.Execute()
}

func TestCommitMessageCommandNameAndAlias(testInstance *testing.T) {
	builder := &commitmsg.CommandBuilder{
		GitExecutor: &scriptedExecutor{},
		FileSystem:  fakeFileSystem{},
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	require.Equal(testInstance, "generate-commit-message", command.Name())
	require.True(testInstance, command.HasAlias("commit-message"))
}

func TestCommitMessageCommandDryRunPrintsWithoutCommitting(testInstance *testing.T) {
	executor := &scriptedExecutor{}
	files := map[string][]byte{"src/api.ts": []byte("export function fetchUser() {}\n")}

	outputBuffer, executionError := runCommitMessageCommand(testInstance, executor, files, "src/api.ts", "--dry-run")

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, outputBuffer.String(), "feat: ")
	require.Empty(testInstance, executor.executedCommands)
}

func TestCommitMessageCommandCreatesCommit(testInstance *testing.T) {
	executor := &scriptedExecutor{responses: map[string]execshell.ExecutionResult{
		"rev-parse HEAD": {StandardOutput: "4444444444444444444444444444444444444444\n"},
	}}
	files := map[string][]byte{"README.md": []byte("# widgets\n")}

	outputBuffer, executionError := runCommitMessageCommand(testInstance, executor, files, "README.md")

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, outputBuffer.String(), "docs: ")
	require.Contains(testInstance, outputBuffer.String(), "COMMITTED: 4444444444444444444444444444444444444444")
	require.Len(testInstance, executor.executedCommands, 3)
}

func TestCommitMessageCommandRejectsUnsupportedType(testInstance *testing.T) {
	_, executionError := runCommitMessageCommand(testInstance, &scriptedExecutor{}, nil, "README.md", "--type", "feature")

	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "unsupported commit type")
}

func TestCommitMessageCommandHonorsScopeFlag(testInstance *testing.T) {
	files := map[string][]byte{"src/api.ts": []byte("export function fetchUser() {}\n")}

	outputBuffer, executionError := runCommitMessageCommand(testInstance, &scriptedExecutor{}, files, "src/api.ts", "--scope", "api", "--dry-run")

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, outputBuffer.String(), "feat(api): ")
}
