package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Status lines go to stderr so command output on stdout stays pipeable
var (
	mu        sync.Mutex
	out       io.Writer = os.Stderr
	quietMode bool
)

// SetOutput redirects status output
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// SetQuietMode hides everything but errors
func SetQuietMode(quiet bool) {
	mu.Lock()
	defer mu.Unlock()
	quietMode = quiet
}

func emit(s string, always bool) {
	mu.Lock()
	defer mu.Unlock()
	if quietMode && !always {
		return
	}
	fmt.Fprintln(out, s)
}

func withDetail(msg string, args []interface{}) string {
	if len(args) > 0 && fmt.Sprint(args[0]) != "" {
		return msg + ": " + fmt.Sprint(args[0])
	}
	return msg
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	emit(errorStyle.Render(withDetail(msg, args)), true)
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	emit(successStyle.Render(msg), false)
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	emit(labelStyle.Render(label)+": "+valueStyle.Render(value), false)
}

// PrintWarning prints a warning message in orange
func PrintWarning(msg string, args ...interface{}) {
	emit(warningStyle.Render(withDetail(msg, args)), false)
}

// PrintHighlight prints a highlighted message
func PrintHighlight(msg string) {
	emit(highlightStyle.Render(msg), false)
}

// Field is one row of a Panel
type Field struct {
	Label string
	Value string
}

// Panel renders a titled box of label/value rows
func Panel(title string, fields []Field) string {
	width := 0
	for _, f := range fields {
		if len(f.Label) > width {
			width = len(f.Label)
		}
	}

	rows := make([]string, 0, len(fields))
	for _, f := range fields {
		label := labelStyle.Render(f.Label + strings.Repeat(" ", width-len(f.Label)))
		value := valueStyle.Render(f.Value)
		if f.Label == "State" {
			value = stateStyle(f.Value).Render(f.Value)
		}
		rows = append(rows, label+"  "+value)
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		strings.Join(rows, "\n"),
	))
}

// PrintPanel prints a Panel
func PrintPanel(title string, fields []Field) {
	emit(Panel(title, fields), false)
}
