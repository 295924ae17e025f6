package commitmsg

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devops-foundry/gitgovern/internal/deps"
	"github.com/devops-foundry/gitgovern/internal/shared"
	flagutils "github.com/devops-foundry/gitgovern/internal/utils/flags"
)

const (
	commandUseConstant              = "generate-commit-message <file>..."
	commandAliasConstant            = "commit-message"
	commandShortDescriptionConstant = "Generate a conventional commit message for the given files"
	commandLongDescriptionConstant  = "generate-commit-message classifies each file, infers a conventional commit type from the batch, and either prints the generated message or creates the commit."
	typeFlagNameConstant            = "type"
	typeFlagDescriptionConstant     = "Commit type override"
	scopeFlagNameConstant           = "scope"
	scopeFlagDescriptionConstant    = "Commit scope"
	dryRunFlagNameConstant          = "dry-run"
	dryRunFlagDescriptionConstant   = "Print the generated message without creating a commit"
	repositoryFlagNameConstant      = "repository"
	repositoryFlagDescription       = "Repository working directory"
	repositoryPathDefaultConstant   = "."
	unsupportedTypeTemplateConstant = "unsupported commit type %q; allowed types are %s"
	commitCreatedTemplateConstant   = "COMMITTED: %s\n"
	allowedTypesSeparatorConstant   = ", "
)

var allowedCommitTypeNames = []string{
	string(CommitTypeFeat), string(CommitTypeFix), string(CommitTypeDocs), string(CommitTypeChore),
	string(CommitTypeTest), string(CommitTypeRefactor), string(CommitTypeStyle), string(CommitTypeCI),
}

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the generate-commit-message command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  shared.GitExecutor
	FileSystem                   shared.FileSystem
	HumanReadableLoggingProvider func() bool
}

// Build constructs the generate-commit-message command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Aliases: []string{commandAliasConstant},
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Args:    cobra.MinimumNArgs(1),
		RunE:    builder.run,
	}

	command.Flags().String(typeFlagNameConstant, "", flagutils.FormatChoiceUsage("", allowedCommitTypeNames, typeFlagDescriptionConstant))
	command.Flags().String(scopeFlagNameConstant, "", scopeFlagDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), nil, dryRunFlagNameConstant, "", false, dryRunFlagDescriptionConstant)
	command.Flags().String(repositoryFlagNameConstant, repositoryPathDefaultConstant, repositoryFlagDescription)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	typeValue, typeFlagError := command.Flags().GetString(typeFlagNameConstant)
	if typeFlagError != nil {
		return typeFlagError
	}
	overrideType := CommitType(strings.TrimSpace(typeValue))
	if len(overrideType) > 0 && !IsAllowedCommitType(overrideType) {
		return fmt.Errorf(unsupportedTypeTemplateConstant, overrideType, strings.Join(allowedCommitTypeNames, allowedTypesSeparatorConstant))
	}

	scopeValue, scopeFlagError := command.Flags().GetString(scopeFlagNameConstant)
	if scopeFlagError != nil {
		return scopeFlagError
	}

	dryRun, dryRunFlagError := command.Flags().GetBool(dryRunFlagNameConstant)
	if dryRunFlagError != nil {
		return dryRunFlagError
	}

	repositoryPath, repositoryFlagError := command.Flags().GetString(repositoryFlagNameConstant)
	if repositoryFlagError != nil {
		return repositoryFlagError
	}

	logger := builder.resolveLogger()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	gitExecutor, executorError := deps.ResolveGitExecutor(builder.GitExecutor, logger, humanReadableLogging)
	if executorError != nil {
		return executorError
	}
	fileSystem := deps.ResolveFileSystem(builder.FileSystem)

	service, serviceError := NewService(Dependencies{GitExecutor: gitExecutor, FileSystem: fileSystem})
	if serviceError != nil {
		return serviceError
	}

	message, generationError := service.GenerateCommitMessage(arguments, GenerateOptions{OverrideType: overrideType, Scope: scopeValue})
	if generationError != nil {
		return generationError
	}

	formattedMessage := FormatConventionalCommit(message)
	if dryRun {
		fmt.Fprintln(command.OutOrStdout(), formattedMessage)
		return nil
	}

	commitResult, commitError := service.CreateCommitWithMessage(command.Context(), repositoryPath, message)
	if commitError != nil {
		return commitError
	}

	fmt.Fprintln(command.OutOrStdout(), formattedMessage)
	fmt.Fprintf(command.OutOrStdout(), commitCreatedTemplateConstant, commitResult.CommitHash)
	return nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider != nil {
		if logger := builder.LoggerProvider(); logger != nil {
			return logger
		}
	}
	return zap.NewNop()
}
