// Package ui styles terminal output for the tapedeck CLI with lipgloss.
//
// A [Palette] maps the few roles the CLI prints (titles, success, errors, warnings, hints) to
// [lipgloss.Style] values. Colors degrade to plain text when the output is not a terminal.
package ui
