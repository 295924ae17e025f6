// Package shared defines the collaborator interfaces exchanged between
// gitgovern services: shell execution, repository management, filesystem
// access, clocks, and interactive prompting.
package shared
