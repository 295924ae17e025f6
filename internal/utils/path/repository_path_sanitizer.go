package pathutils

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

const (
	booleanLiteralTrueValueConstant  = "true"
	booleanLiteralFalseValueConstant = "false"
)

// RepositoryPathSanitizerConfiguration controls repository path sanitization behavior.
type RepositoryPathSanitizerConfiguration struct {
	// ExcludeBooleanLiteralCandidates drops arguments that read as boolean
	// literals. Mis-typed toggle values would otherwise be taken for paths.
	ExcludeBooleanLiteralCandidates bool
	// PruneNestedPaths removes repository paths nested inside another
	// provided path so a run never visits the same repository twice.
	PruneNestedPaths bool
}

// RepositoryPathSanitizer normalizes repository path arguments before the
// governance commands operate on them.
type RepositoryPathSanitizer struct {
	homeExpander  *HomeExpander
	configuration RepositoryPathSanitizerConfiguration
}

// NewRepositoryPathSanitizer constructs a RepositoryPathSanitizer with default behavior.
func NewRepositoryPathSanitizer() *RepositoryPathSanitizer {
	return NewRepositoryPathSanitizerWithConfiguration(nil, RepositoryPathSanitizerConfiguration{})
}

// NewRepositoryPathSanitizerWithConfiguration constructs a RepositoryPathSanitizer
// using the provided expander and configuration. A nil expander gets the
// operating system home lookup.
func NewRepositoryPathSanitizerWithConfiguration(homeExpander *HomeExpander, configuration RepositoryPathSanitizerConfiguration) *RepositoryPathSanitizer {
	resolvedExpander := homeExpander
	if resolvedExpander == nil {
		resolvedExpander = NewHomeExpander()
	}

	return &RepositoryPathSanitizer{
		homeExpander:  resolvedExpander,
		configuration: configuration,
	}
}

// Sanitize trims whitespace, expands the user's home directory, and removes
// disallowed values. An input that sanitizes to nothing yields nil.
func (sanitizer *RepositoryPathSanitizer) Sanitize(candidatePaths []string) []string {
	if sanitizer == nil {
		return sanitizeCandidatePaths(NewHomeExpander(), RepositoryPathSanitizerConfiguration{}, candidatePaths)
	}

	return sanitizeCandidatePaths(sanitizer.homeExpander, sanitizer.configuration, candidatePaths)
}

func sanitizeCandidatePaths(expander *HomeExpander, configuration RepositoryPathSanitizerConfiguration, candidatePaths []string) []string {
	sanitizedPaths := make([]string, 0, len(candidatePaths))
	for candidateIndex := range candidatePaths {
		trimmedCandidate := strings.TrimSpace(candidatePaths[candidateIndex])
		if len(trimmedCandidate) == 0 {
			continue
		}

		if configuration.ExcludeBooleanLiteralCandidates && isBooleanLiteral(trimmedCandidate) {
			continue
		}

		expandedPath := expander.Expand(trimmedCandidate)
		if len(expandedPath) == 0 {
			continue
		}

		sanitizedPaths = append(sanitizedPaths, expandedPath)
	}

	if len(sanitizedPaths) == 0 {
		return nil
	}

	if configuration.PruneNestedPaths {
		return pruneNestedPaths(sanitizedPaths)
	}

	return sanitizedPaths
}

func isBooleanLiteral(candidate string) bool {
	loweredCandidate := strings.ToLower(candidate)
	return loweredCandidate == booleanLiteralTrueValueConstant || loweredCandidate == booleanLiteralFalseValueConstant
}

// pruneNestedPaths keeps only the outermost of any set of nested paths,
// comparing canonicalized absolute forms, and preserves the caller's original
// ordering and spelling of the survivors.
func pruneNestedPaths(candidatePaths []string) []string {
	if len(candidatePaths) == 0 {
		return nil
	}

	type pathCandidate struct {
		originalIndex int
		originalValue string
		canonical     string
		comparison    string
	}

	candidates := make([]pathCandidate, 0, len(candidatePaths))
	for index := range candidatePaths {
		canonicalPath := canonicalizePath(candidatePaths[index])
		candidates = append(candidates, pathCandidate{
			originalIndex: index,
			originalValue: candidatePaths[index],
			canonical:     canonicalPath,
			comparison:    comparisonPath(canonicalPath),
		})
	}

	// Shorter comparison strings sort first, so parents are selected before
	// the paths nested under them.
	sort.SliceStable(candidates, func(first int, second int) bool {
		firstLength := len(candidates[first].comparison)
		secondLength := len(candidates[second].comparison)
		if firstLength == secondLength {
			return candidates[first].comparison < candidates[second].comparison
		}
		return firstLength < secondLength
	})

	selected := make([]pathCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		covered := false
		for _, existing := range selected {
			if candidate.comparison == existing.comparison || isNestedPath(existing.canonical, candidate.canonical) {
				covered = true
				break
			}
		}
		if !covered {
			selected = append(selected, candidate)
		}
	}

	sort.SliceStable(selected, func(first int, second int) bool {
		return selected[first].originalIndex < selected[second].originalIndex
	})

	prunedPaths := make([]string, 0, len(selected))
	for _, candidate := range selected {
		prunedPaths = append(prunedPaths, candidate.originalValue)
	}

	return prunedPaths
}

func canonicalizePath(path string) string {
	cleanedPath := filepath.Clean(path)
	absolutePath, absoluteError := filepath.Abs(cleanedPath)
	if absoluteError == nil {
		return filepath.Clean(absolutePath)
	}
	return cleanedPath
}

// comparisonPath folds case on Windows where the filesystem is
// case-insensitive.
func comparisonPath(path string) string {
	comparison := filepath.Clean(path)
	if runtime.GOOS == "windows" {
		comparison = strings.ToLower(comparison)
	}
	return comparison
}

func isNestedPath(parent string, candidate string) bool {
	parentClean := comparisonPath(parent)
	candidateClean := comparisonPath(candidate)

	if candidateClean == parentClean {
		return true
	}
	if len(candidateClean) <= len(parentClean) {
		return false
	}
	if !strings.HasPrefix(candidateClean, parentClean) {
		return false
	}

	if parentClean[len(parentClean)-1] == os.PathSeparator {
		return true
	}
	return candidateClean[len(parentClean)] == os.PathSeparator
}
