package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// CommandFilesCheck verifies that the swiftDialog command files can be
// created and flags leftovers from an earlier run.
type CommandFilesCheck struct {
	files []string
}

// NewCommandFilesCheck creates a new command files check.
func NewCommandFilesCheck(files ...string) *CommandFilesCheck {
	return &CommandFilesCheck{files: files}
}

func (c *CommandFilesCheck) Name() string {
	return "Command Files"
}

func (c *CommandFilesCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	for _, file := range c.files {
		if item, ok := dirItem(file, filepath.Dir(file)); !ok {
			result.Items = append(result.Items, item)
			continue
		}

		if _, err := os.Stat(file); err == nil {
			result.Items = append(result.Items, CheckItem{
				Label:  file,
				Status: StatusWarn,
				Detail: "left over from a previous run, removed on next start",
			})
			continue
		}

		result.Items = append(result.Items, CheckItem{
			Label:  file,
			Status: StatusPass,
		})
	}

	return result
}

// BrandingCheck reports whether the branding image is cached.
type BrandingCheck struct {
	cacheDir string
	cached   func() bool
}

// NewBrandingCheck creates a new branding check.
func NewBrandingCheck(cacheDir string, cached func() bool) *BrandingCheck {
	return &BrandingCheck{cacheDir: cacheDir, cached: cached}
}

func (c *BrandingCheck) Name() string {
	return "Branding"
}

func (c *BrandingCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if c.cacheDir == "" {
		result.Items = append(result.Items, CheckItem{
			Label:  "cache_dir",
			Status: StatusWarn,
			Detail: "not configured, the fallback icon is always used",
		})
		return result
	}

	if c.cached != nil && c.cached() {
		result.Items = append(result.Items, CheckItem{
			Label:  c.cacheDir,
			Status: StatusPass,
			Detail: "branding image cached",
		})
		return result
	}

	item, ok := dirItem(c.cacheDir, c.cacheDir)
	if ok {
		item = CheckItem{
			Label:  c.cacheDir,
			Status: StatusWarn,
			Detail: "branding image not cached yet, downloaded on first prompt",
		}
	}
	result.Items = append(result.Items, item)

	return result
}

// dirItem checks that dir exists and is a directory. ok is false when the
// returned item describes a problem.
func dirItem(label, dir string) (CheckItem, bool) {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return CheckItem{Label: label, Status: StatusWarn, Detail: fmt.Sprintf("directory %s does not exist", dir)}, false
	case err != nil:
		return CheckItem{Label: label, Status: StatusFail, Detail: fmt.Sprintf("inaccessible: %v", err)}, false
	case !info.IsDir():
		return CheckItem{Label: label, Status: StatusFail, Detail: fmt.Sprintf("%s is not a directory", dir)}, false
	}
	return CheckItem{}, true
}
