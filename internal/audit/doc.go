// Package audit validates repository governance state.
//
// It checks Actions secrets, branch protection, workflow file syntax, and
// deployment environments against the governance configuration, classifying
// every outcome as pass, fail, or warning with remediation text on failures.
package audit
