package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	secretPromptTemplateConstant        = "%s: "
	secretEntryNewlineConstant          = "\n"
	terminalNotAvailableMessageConstant = "standard input is not a terminal"
)

// ErrTerminalNotAvailable indicates secret entry was requested without an interactive terminal.
var ErrTerminalNotAvailable = errors.New(terminalNotAvailableMessageConstant)

// TerminalSecretReader collects secret values from the controlling terminal without echoing them.
type TerminalSecretReader struct {
	writer io.Writer
}

// NewTerminalSecretReader constructs a secret reader that writes prompts to the provided writer.
func NewTerminalSecretReader(output io.Writer) *TerminalSecretReader {
	if output == nil {
		output = os.Stderr
	}
	return &TerminalSecretReader{writer: output}
}

// ReadSecret prompts for a secret and returns the captured value; the raw
// characters are never written back to the output stream.
func (secretReader *TerminalSecretReader) ReadSecret(prompt string) (string, error) {
	inputDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(inputDescriptor) {
		return "", ErrTerminalNotAvailable
	}

	if _, writeError := fmt.Fprintf(secretReader.writer, secretPromptTemplateConstant, prompt); writeError != nil {
		return "", writeError
	}

	capturedBytes, readError := term.ReadPassword(inputDescriptor)
	if _, newlineError := io.WriteString(secretReader.writer, secretEntryNewlineConstant); newlineError != nil {
		return "", newlineError
	}
	if readError != nil {
		return "", readError
	}

	return strings.TrimSpace(string(capturedBytes)), nil
}
