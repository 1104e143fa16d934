package ui

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetQuietMode(false)
	})
	return &buf
}

func TestPrintFunctions(t *testing.T) {
	buf := capture(t)

	PrintError("Login failed", "bad_password")
	PrintSuccess("Logged in")
	PrintInfo("User", "alice")
	PrintWarning("Throttled")
	PrintHighlight("Timeline")

	text := buf.String()
	assert.Contains(t, text, "Login failed: bad_password")
	assert.Contains(t, text, "Logged in")
	assert.Contains(t, text, "User")
	assert.Contains(t, text, "alice")
	assert.Contains(t, text, "Throttled")
	assert.Contains(t, text, "Timeline")
}

func TestPrintErrorWithoutDetail(t *testing.T) {
	buf := capture(t)
	PrintError("No session", "")
	assert.NotContains(t, buf.String(), "No session:")
}

func TestQuietModeKeepsErrors(t *testing.T) {
	buf := capture(t)
	SetQuietMode(true)

	PrintSuccess("hidden")
	PrintInfo("hidden", "hidden")
	PrintError("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestPanel(t *testing.T) {
	p := Panel("Session", []Field{
		{Label: "User", Value: "alice"},
		{Label: "State", Value: "authenticated"},
		{Label: "Expires", Value: "2030-01-01"},
	})

	assert.Contains(t, p, "Session")
	assert.Contains(t, p, "alice")
	assert.Contains(t, p, "authenticated")
	assert.Contains(t, p, "2030-01-01")
}
