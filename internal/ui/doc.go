// Package ui holds the interactive surfaces of gitgovern: console rendering of
// subprocess lifecycle events, confirmation prompting, and no-echo secret entry.
package ui
