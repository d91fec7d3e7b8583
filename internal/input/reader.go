// Package input reads the domain to enrich from an argument or an
// interactive prompt.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DomainPrompt is shown when no domain was passed on the command line.
const DomainPrompt = "[+] Enter the domain to lookup: "

// ErrNoInput is returned when the reader ends before a non-blank line.
var ErrNoInput = errors.New("no domain given")

// Read reads lines from r, trims whitespace, and returns non-empty lines.
// Blank lines and lines that are only whitespace are dropped.
func Read(r io.Reader) ([]string, error) {
	var inputs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			inputs = append(inputs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return inputs, nil
}

// Prompt writes prompt to w and returns the first non-blank line of r with
// surrounding whitespace removed. Later lines are left unread.
func Prompt(r io.Reader, w io.Writer, prompt string) (string, error) {
	if _, err := io.WriteString(w, prompt); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return "", ErrNoInput
}
