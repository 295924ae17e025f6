// Package gitsync reconciles local branches with their origin counterparts.
//
// It exposes Service for divergence inspection, fetch, merge, rebase, and
// lease-protected force pushes, plus the cobra command that drives them.
package gitsync
