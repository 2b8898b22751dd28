package doctor

import (
	"context"
	"os/exec"
)

// lookPathFunc is the function used to find executables.
// Package-level variable to allow test overrides.
var lookPathFunc = exec.LookPath

// Tool is an external program the walkthrough drives.
type Tool struct {
	Label    string
	Path     string
	Required bool
	Purpose  string // shown when an optional tool is missing
}

// ToolsCheck verifies that the external programs are installed and executable.
type ToolsCheck struct {
	tools []Tool
}

// NewToolsCheck creates a new tools check.
func NewToolsCheck(tools ...Tool) *ToolsCheck {
	return &ToolsCheck{tools: tools}
}

func (c *ToolsCheck) Name() string {
	return "Tools"
}

func (c *ToolsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	for _, tool := range c.tools {
		path, err := lookPathFunc(tool.Path)
		switch {
		case err == nil:
			result.Items = append(result.Items, CheckItem{
				Label:  tool.Label,
				Status: StatusPass,
				Detail: path,
			})
		case tool.Required:
			result.Items = append(result.Items, CheckItem{
				Label:  tool.Label,
				Status: StatusFail,
				Detail: tool.Path + " not found",
			})
		default:
			detail := tool.Path + " not found"
			if tool.Purpose != "" {
				detail += " (" + tool.Purpose + ")"
			}
			result.Items = append(result.Items, CheckItem{
				Label:  tool.Label,
				Status: StatusWarn,
				Detail: detail,
			})
		}
	}

	return result
}
