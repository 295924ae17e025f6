package deps

import (
	"os"

	"go.uber.org/zap"

	"github.com/devops-foundry/gitgovern/internal/execshell"
	"github.com/devops-foundry/gitgovern/internal/githubcli"
	"github.com/devops-foundry/gitgovern/internal/gitrepo"
	"github.com/devops-foundry/gitgovern/internal/shared"
	"github.com/devops-foundry/gitgovern/internal/ui"
)

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, humanReadableLogging bool) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	var eventObserver execshell.CommandEventObserver
	if humanReadableLogging {
		eventObserver = ui.NewConsoleCommandEventLogger(logger)
	}
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, eventObserver)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveGitRepositoryManager returns the provided repository manager or constructs one from the executor.
func ResolveGitRepositoryManager(existing shared.GitRepositoryManager, executor shared.GitExecutor) (shared.GitRepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewRepositoryManager(executor)
}

// ResolveGitHubClient returns the provided client or creates a GitHub CLI-backed implementation.
func ResolveGitHubClient(existing *githubcli.Client, executor shared.GitExecutor) (*githubcli.Client, error) {
	if existing != nil {
		return existing, nil
	}
	return githubcli.NewClient(executor)
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return shared.OSFileSystem{}
}

// ResolveConfirmationPrompter returns the provided prompter or a stdin-backed default.
func ResolveConfirmationPrompter(existing shared.ConfirmationPrompter) shared.ConfirmationPrompter {
	if existing != nil {
		return existing
	}
	return ui.NewIOConfirmationPrompter(os.Stdin, os.Stdout)
}

// ResolveSecretReader returns the provided secret reader or a terminal-backed default.
func ResolveSecretReader(existing shared.SecretReader) shared.SecretReader {
	if existing != nil {
		return existing
	}
	return ui.NewTerminalSecretReader(os.Stderr)
}
