// Package protection builds, validates, applies, and verifies GitHub branch
// protection payloads in the exact wire format the protection endpoint accepts.
package protection
