// Package tmpl provides template rendering utilities for prompt copy and
// shell-quoting helpers for logging reproducible command lines.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// ShellQuote returns a shell-safe quoted string. It wraps the string in single
// quotes and escapes any existing single quotes using the '\'' technique.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	// Replace ' with '\'' (end quote, escaped quote, start quote)
	escaped := strings.ReplaceAll(s, "'", `'\''`)
	return "'" + escaped + "'"
}

// CommandLine renders cmd and args as a single shell-quoted string so a
// logged invocation can be pasted into a terminal as is.
func CommandLine(cmd string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellQuote(cmd))
	for _, a := range args {
		parts = append(parts, ShellQuote(a))
	}
	return strings.Join(parts, " ")
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
func Render(tmpl string, data any) (string, error) {
	t, err := template.New("").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
