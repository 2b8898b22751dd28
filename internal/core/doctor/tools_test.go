package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubLookPath(t *testing.T, missing ...string) {
	t.Helper()
	orig := lookPathFunc
	t.Cleanup(func() { lookPathFunc = orig })

	lookPathFunc = func(file string) (string, error) {
		for _, m := range missing {
			if file == m {
				return "", &exec.Error{Name: file, Err: fmt.Errorf("not found")}
			}
		}
		return file, nil
	}
}

func testTools() []Tool {
	return []Tool{
		{Label: "swiftDialog", Path: "/usr/local/bin/dialog", Required: true},
		{Label: "jamf", Path: "/usr/local/bin/jamf", Required: true},
		{Label: "open", Path: "open", Purpose: "needed to launch Software Update and Self Service"},
	}
}

func TestToolsCheck_AllPresent(t *testing.T) {
	stubLookPath(t)

	result := NewToolsCheck(testTools()...).Run(context.Background())

	assert.Equal(t, "Tools", result.Name)
	require.Len(t, result.Items, 3)
	for _, item := range result.Items {
		assert.Equal(t, StatusPass, item.Status, item.Label)
	}
	assert.Equal(t, "/usr/local/bin/dialog", result.Items[0].Detail)
}

func TestToolsCheck_RequiredMissing(t *testing.T) {
	stubLookPath(t, "/usr/local/bin/jamf")

	result := NewToolsCheck(testTools()...).Run(context.Background())

	require.Len(t, result.Items, 3)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, StatusFail, result.Items[1].Status)
	assert.Equal(t, "jamf", result.Items[1].Label)
	assert.Equal(t, StatusPass, result.Items[2].Status)
}

func TestToolsCheck_OptionalMissing(t *testing.T) {
	stubLookPath(t, "open")

	result := NewToolsCheck(testTools()...).Run(context.Background())

	require.Len(t, result.Items, 3)
	assert.Equal(t, StatusWarn, result.Items[2].Status)
	assert.Contains(t, result.Items[2].Detail, "Software Update")
}

func TestRun(t *testing.T) {
	stubLookPath(t, "/usr/local/bin/jamf", "open")

	report := Run(context.Background(), NewToolsCheck(testTools()...))
	require.Len(t, report.Checks, 1)
	assert.Equal(t, StatusFail, report.Checks[0].Items[1].Status)

	assert.Equal(t, Counts{Passed: 1, Warned: 1, Failed: 1}, report.Summary)
	assert.False(t, report.Healthy)
}

func TestCounts_Healthy(t *testing.T) {
	assert.True(t, Counts{Passed: 3, Warned: 2}.Healthy())
	assert.False(t, Counts{Passed: 3, Failed: 1}.Healthy())
}
