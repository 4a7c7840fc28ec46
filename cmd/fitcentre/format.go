// ABOUTME: Output helpers shared by CLI commands.
// ABOUTME: Colored status lines, column padding, and optional value formatting.
package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

var (
	green = color.New(color.FgGreen)
	yell  = color.New(color.FgYellow)
	faint = color.New(color.Faint)
)

func success(w io.Writer, format string, args ...any) {
	green.Fprintf(w, "✓ "+format+"\n", args...)
}

func removed(w io.Writer, format string, args ...any) {
	yell.Fprintf(w, "✗ "+format+"\n", args...)
}

// truncate shortens s to maxLen runes, ending in "...".
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func padRight(s string, length int) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}

// optional renders a nil measurement as "-".
func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}

// orDash renders an empty string as "-".
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
