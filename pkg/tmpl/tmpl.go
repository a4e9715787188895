// Package tmpl renders user supplied output templates.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"
)

// money formats an amount for display. Values implementing fmt.Stringer are
// trusted to format themselves; floats are rendered as dollars.
func money(v any) (string, error) {
	switch m := v.(type) {
	case fmt.Stringer:
		return m.String(), nil
	case float64:
		return fmt.Sprintf("$%.2f", m), nil
	case int:
		return fmt.Sprintf("$%d.00", m), nil
	default:
		return "", fmt.Errorf("money: unsupported type %T", v)
	}
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(n int, s string) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// pad right-pads s with spaces to n runes.
func pad(n int, s string) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

var funcs = template.FuncMap{
	"money":    money,
	"truncate": truncate,
	"pad":      pad,
	"upper":    strings.ToUpper,
	"lower":    strings.ToLower,
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - money: format a price, e.g. {{ .Price | money }}
//   - truncate N: shorten to N runes
//   - pad N: right-pad to N runes
//   - upper, lower
func Render(tmpl string, data any) (string, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
