// Package commitmsg generates conventional commit messages from file
// classification. Files are categorized by glob patterns and refined with
// content heuristics, the commit type is inferred from the batch, and every
// generated message passes a repairable quality gate before reaching git.
package commitmsg
