package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediamatrixhub/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestShowSubStructures(t *testing.T) {
	dir := t.TempDir()
	structures := writeFile(t, dir, "uaf.json", `{
		"A":  ["Direzione", "", "", "A"],
		"A1": ["Ufficio uno", "", "", "A"],
		"A2": ["Ufficio due", "", "", "A"],
		"B":  ["Altro", "", "", "Z"]
	}`)
	persons := writeFile(t, dir, "pers.json", `{
		"1": ["100", "a@example.org", "", "Rossi", "Anna", "", "A1"],
		"2": ["101", "b@example.org", "", "Bianchi", "Bruno", "", "B"],
		"3": ["102", "c@example.org", "", "Verdi", "Carla", "", "A"]
	}`)

	out, err := runRoot(t, "show-sub-structures", structures, "A", "--persons", persons)
	require.NoError(t, err)

	assert.Contains(t, out, "Ufficio uno")
	assert.Contains(t, out, "Ufficio due")
	assert.NotContains(t, out, "Altro")
	assert.Contains(t, out, "2 employees in 3 structures")
}

func TestShowSubStructuresMissingFile(t *testing.T) {
	_, err := runRoot(t, "show-sub-structures", filepath.Join(t.TempDir(), "missing.json"), "A")
	require.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"ID", "Title"}, [][]string{{"1", "Primo"}, {"2"}}, []columnAlignment{alignRight})
	assert.Contains(t, out, "Primo")
	assert.Contains(t, out, "ID")
	assert.Equal(t, 0, strings.Count(out, "<nil>"))
	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestPrintNotificationReport(t *testing.T) {
	var buf bytes.Buffer
	printNotificationReport(&buf, &dto.NotificationReport{
		Debug: true,
		Events: []dto.EventDispatch{
			{EventID: 3, Title: "Pillola", Sent: 2, Failed: []string{"x@example.org"}},
		},
	})
	out := buf.String()
	assert.Contains(t, out, "Debug mode enabled")
	assert.Contains(t, out, "#3, Pillola: 2 email")
	assert.Contains(t, out, "error sending email to x@example.org")

	buf.Reset()
	printNotificationReport(&buf, &dto.NotificationReport{})
	assert.Contains(t, buf.String(), "No enabled events found.")
}
