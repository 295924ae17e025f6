// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for inspecting branches, remotes, and worktree
// status, along with remote URL parsing consumed by the synchronization,
// protection, and validation services.
package gitrepo
