// Package setup orchestrates the full repository governance rollout. It loads
// a governance configuration file, detects which features a repository already
// carries, and runs the branch protection, secret, and environment steps
// idempotently before closing with a validation pass.
package setup
