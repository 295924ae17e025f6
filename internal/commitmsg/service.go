package commitmsg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devops-foundry/gitgovern/internal/execshell"
	"github.com/devops-foundry/gitgovern/internal/shared"
)

const (
	gitAddSubcommandConstant             = "add"
	gitCommitSubcommandConstant          = "commit"
	gitRevParseSubcommandConstant        = "rev-parse"
	gitCommitMessageFlagConstant         = "-m"
	gitHeadReferenceConstant             = "HEAD"
	executorNotConfiguredMessageConstant = "git executor not configured"
	filesystemNotConfiguredMessage       = "filesystem dependency is not configured"
	noFilesMessageConstant               = "at least one file path is required"
	qualityGateMessageTemplateConstant   = "commit message failed the quality gate: %s"
	addDescriptionTemplateConstant       = "add %s"
	multiFileSubjectTemplateConstant     = "update %d files"
	bodyLineTemplateConstant             = "- %s: %s"
	commitCreatedMessageTemplate         = "created commit %s"
	violationSeparatorConstant           = "; "
)

// ErrExecutorNotConfigured indicates the service was constructed without a git executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ErrFileSystemNotConfigured indicates the service was constructed without a filesystem.
var ErrFileSystemNotConfigured = errors.New(filesystemNotConfiguredMessage)

// ErrNoFilesProvided indicates a generation request without any file paths.
var ErrNoFilesProvided = errors.New(noFilesMessageConstant)

// CommitResult reports the outcome of creating a commit.
type CommitResult struct {
	Success          bool
	CommitHash       string
	FormattedMessage string
	Message          string
}

// GenerateOptions tunes a commit message generation request.
type GenerateOptions struct {
	OverrideType CommitType
	Scope        string
}

// Dependencies enumerates the collaborators required by the generator.
type Dependencies struct {
	GitExecutor shared.GitExecutor
	FileSystem  shared.FileSystem
}

// Service generates conventional commit messages from staged file analyses.
type Service struct {
	executor   shared.GitExecutor
	fileSystem shared.FileSystem
}

// NewService validates dependencies and constructs a generator.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &Service{executor: dependencies.GitExecutor, fileSystem: dependencies.FileSystem}, nil
}

// GenerateCommitMessage analyzes every file, infers the commit type from the
// batch, and assembles a quality-gated conventional commit message. Multi-file
// messages enumerate every file in the body.
func (service *Service) GenerateCommitMessage(paths []string, options GenerateOptions) (CommitMessage, error) {
	if len(paths) == 0 {
		return CommitMessage{}, ErrNoFilesProvided
	}

	analyses := make([]FileAnalysis, 0, len(paths))
	for _, filePath := range paths {
		analyses = append(analyses, AnalyzeFileContent(service.fileSystem, filePath))
	}

	commitType := options.OverrideType
	if !IsAllowedCommitType(commitType) {
		commitType = InferCommitType(analyses)
	}

	message := CommitMessage{
		Type:    commitType,
		Scope:   options.Scope,
		Subject: buildSubject(analyses),
		Body:    buildBody(analyses),
		Files:   append([]string(nil), paths...),
	}

	message = RepairMessageQuality(message)

	qualityReport := ValidateMessageQuality(message)
	if !qualityReport.Valid {
		return CommitMessage{}, fmt.Errorf(qualityGateMessageTemplateConstant, strings.Join(qualityReport.Errors, violationSeparatorConstant))
	}

	return message, nil
}

// CreateCommitWithMessage stages the message's files and creates the commit.
func (service *Service) CreateCommitWithMessage(executionContext context.Context, repositoryPath string, message CommitMessage) (CommitResult, error) {
	formattedMessage := FormatConventionalCommit(message)

	addArguments := append([]string{gitAddSubcommandConstant}, message.Files...)
	if _, addError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        addArguments,
		WorkingDirectory: repositoryPath,
	}); addError != nil {
		return CommitResult{}, addError
	}

	if _, commitError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCommitSubcommandConstant, gitCommitMessageFlagConstant, formattedMessage},
		WorkingDirectory: repositoryPath,
	}); commitError != nil {
		return CommitResult{}, commitError
	}

	revParseResult, revParseError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitHeadReferenceConstant},
		WorkingDirectory: repositoryPath,
	})
	if revParseError != nil {
		return CommitResult{}, revParseError
	}

	commitHash := strings.TrimSpace(revParseResult.StandardOutput)
	return CommitResult{
		Success:          true,
		CommitHash:       commitHash,
		FormattedMessage: formattedMessage,
		Message:          fmt.Sprintf(commitCreatedMessageTemplate, commitHash),
	}, nil
}

func buildSubject(analyses []FileAnalysis) string {
	if len(analyses) == 1 {
		return fmt.Sprintf(addDescriptionTemplateConstant, GenerateDescription(analyses[0]))
	}
	return fmt.Sprintf(multiFileSubjectTemplateConstant, len(analyses))
}

func buildBody(analyses []FileAnalysis) string {
	if len(analyses) < 2 {
		return ""
	}
	bodyLines := make([]string, 0, len(analyses))
	for _, analysis := range analyses {
		bodyLines = append(bodyLines, fmt.Sprintf(bodyLineTemplateConstant, analysis.Path, analysis.Purpose))
	}
	return strings.Join(bodyLines, "\n")
}
