package commitmsg

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/devops-foundry/gitgovern/internal/shared"
)

// FileCategory classifies a file by the role it plays in a repository.
type FileCategory string

const (
	CategoryCode          FileCategory = "code"
	CategoryConfig        FileCategory = "config"
	CategoryDocumentation FileCategory = "documentation"
	CategoryTest          FileCategory = "test"
	CategoryAsset         FileCategory = "asset"
	CategoryOther         FileCategory = "other"
)

const (
	contentSampleSizeConstant       = 1024
	documentationPurposeConstant    = "documentation"
	configurationPurposeConstant    = "configuration"
	testCoveragePurposeConstant     = "test coverage"
	staticAssetPurposeConstant      = "static asset"
	utilityFunctionsPurposeConstant = "utility functions"
	typeDefinitionsPurposeConstant  = "type definitions"
	implementationPurposeConstant   = "implementation"
	miscellaneousPurposeConstant    = "repository file"
)

// Classification patterns are evaluated in order; the first category whose
// pattern matches wins.
var categoryPatternOrdering = []struct {
	category FileCategory
	patterns []string
}{
	{
		category: CategoryDocumentation,
		patterns: []string{
			"**/*.md", "**/*.rst", "**/*.adoc", "**/*.txt",
			"docs/**", "**/LICENSE*", "**/README*", "**/CHANGELOG*",
		},
	},
	{
		category: CategoryTest,
		patterns: []string{
			"**/*_test.go", "**/*.test.*", "**/*.spec.*",
			"**/test/**", "**/tests/**", "**/__tests__/**",
		},
	},
	{
		category: CategoryConfig,
		patterns: []string{
			"**/*.json", "**/*.yml", "**/*.yaml", "**/*.toml", "**/*.ini",
			"**/*.lock", "**/.*rc", "**/Dockerfile", "**/Makefile",
			"**/go.mod", "**/go.sum",
		},
	},
	{
		category: CategoryAsset,
		patterns: []string{
			"**/*.png", "**/*.jpg", "**/*.jpeg", "**/*.gif", "**/*.svg",
			"**/*.ico", "**/*.woff", "**/*.woff2", "**/*.ttf", "**/*.mp4",
		},
	},
	{
		category: CategoryCode,
		patterns: []string{
			"**/*.go", "**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx",
			"**/*.py", "**/*.rb", "**/*.rs", "**/*.java", "**/*.c",
			"**/*.cc", "**/*.cpp", "**/*.h", "**/*.sh", "**/*.sql",
		},
	},
}

var extensionLanguageMapping = map[string]string{
	".go":   "Go",
	".ts":   "TypeScript",
	".tsx":  "TypeScript",
	".js":   "JavaScript",
	".jsx":  "JavaScript",
	".py":   "Python",
	".rb":   "Ruby",
	".rs":   "Rust",
	".java": "Java",
	".c":    "C",
	".cc":   "C++",
	".cpp":  "C++",
	".h":    "C",
	".sh":   "Shell",
	".sql":  "SQL",
}

var (
	exportedFunctionPattern = regexp.MustCompile(`export\s+(default\s+)?(async\s+)?function|export\s+const\s+\w+\s*=|func\s+[A-Z]\w*\s*\(`)
	typeDeclarationPattern  = regexp.MustCompile(`(^|\n)\s*(export\s+)?(type\s+\w+|interface\s+\w+|class\s+\w+|struct\s+\w+)`)
	testFrameworkPattern    = regexp.MustCompile(`func\s+Test\w+\s*\(|t\.Run\(|describe\(|it\(|expect\(|assert\.`)
)

// FileAnalysis describes one file staged for a generated commit.
type FileAnalysis struct {
	Path     string
	Type     string
	Category FileCategory
	Purpose  string
	Language string
}

// DetectFileType classifies a file by its path alone.
func DetectFileType(path string) FileAnalysis {
	normalizedPath := filepath.ToSlash(path)
	extension := strings.ToLower(filepath.Ext(normalizedPath))

	analysis := FileAnalysis{
		Path:     path,
		Type:     strings.TrimPrefix(extension, "."),
		Category: CategoryOther,
		Language: extensionLanguageMapping[extension],
	}

	for _, categoryEntry := range categoryPatternOrdering {
		for _, pattern := range categoryEntry.patterns {
			matched, matchError := doublestar.Match(pattern, normalizedPath)
			if matchError != nil {
				continue
			}
			if matched {
				analysis.Category = categoryEntry.category
				analysis.Purpose = defaultPurposeForCategory(categoryEntry.category)
				return analysis
			}
		}
	}

	analysis.Purpose = miscellaneousPurposeConstant
	return analysis
}

// AnalyzeFileContent refines a path-based classification with keyword
// heuristics over the first kilobyte of the file. Binary or unreadable files
// keep their path-based classification.
func AnalyzeFileContent(fileSystem shared.FileSystem, path string) FileAnalysis {
	analysis := DetectFileType(path)

	fileContents, readError := fileSystem.ReadFile(path)
	if readError != nil {
		return analysis
	}
	if len(fileContents) > contentSampleSizeConstant {
		fileContents = fileContents[:contentSampleSizeConstant]
	}
	if bytes.IndexByte(fileContents, 0) >= 0 {
		return analysis
	}

	contentSample := string(fileContents)

	if testFrameworkPattern.MatchString(contentSample) {
		analysis.Category = CategoryTest
		analysis.Purpose = testCoveragePurposeConstant
		return analysis
	}

	if analysis.Category != CategoryCode {
		return analysis
	}

	switch {
	case exportedFunctionPattern.MatchString(contentSample):
		analysis.Purpose = utilityFunctionsPurposeConstant
	case typeDeclarationPattern.MatchString(contentSample):
		analysis.Purpose = typeDefinitionsPurposeConstant
	default:
		analysis.Purpose = implementationPurposeConstant
	}

	return analysis
}

// GenerateDescription renders the human-readable purpose of one analyzed file.
func GenerateDescription(analysis FileAnalysis) string {
	baseName := strings.TrimSuffix(filepath.Base(analysis.Path), filepath.Ext(analysis.Path))
	if len(analysis.Purpose) == 0 {
		return baseName
	}
	return analysis.Purpose + " in " + baseName
}

func defaultPurposeForCategory(category FileCategory) string {
	switch category {
	case CategoryDocumentation:
		return documentationPurposeConstant
	case CategoryConfig:
		return configurationPurposeConstant
	case CategoryTest:
		return testCoveragePurposeConstant
	case CategoryAsset:
		return staticAssetPurposeConstant
	case CategoryCode:
		return implementationPurposeConstant
	default:
		return miscellaneousPurposeConstant
	}
}
