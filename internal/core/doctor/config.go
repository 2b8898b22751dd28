package doctor

import (
	"context"
	"os"

	"github.com/colonyops/walkthrough/internal/core/config"
)

// ConfigCheck reports on the configuration file and non-fatal config issues.
type ConfigCheck struct {
	cfg  *config.Config
	path string
}

// NewConfigCheck creates a new config check. cfg is the already loaded and
// validated configuration.
func NewConfigCheck(cfg *config.Config, path string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, path: path}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	switch _, err := os.Stat(c.path); {
	case c.path == "":
		result.Items = append(result.Items, CheckItem{
			Label:  "config file",
			Status: StatusPass,
			Detail: "none given, using built-in defaults",
		})
	case os.IsNotExist(err):
		result.Items = append(result.Items, CheckItem{
			Label:  c.path,
			Status: StatusWarn,
			Detail: "not found, using built-in defaults",
		})
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  c.path,
			Status: StatusFail,
			Detail: err.Error(),
		})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  c.path,
			Status: StatusPass,
		})
	}

	for _, w := range c.cfg.Warnings() {
		label := w.Category
		if w.Item != "" {
			label += ": " + w.Item
		}
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusWarn,
			Detail: w.Message,
		})
	}

	return result
}
