// Package deps resolves optional collaborator overrides into concrete defaults
// shared by the gitgovern command builders.
package deps
