package config

import (
	"fmt"
	"slices"

	"github.com/colonyops/walkthrough/internal/core/styles"
	"github.com/colonyops/walkthrough/internal/core/validate"
	"github.com/colonyops/walkthrough/pkg/tmpl"
	"github.com/hay-kot/criterio"
)

// UpdateTemplateData defines the fields available to the update messages.
type UpdateTemplateData struct {
	Current string // Installed macOS version
	Latest  string // Latest version reported by the software catalog
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		c.validateBinaries(),
		c.validateRoles(),
		c.validateApps(),
		c.validateMessages(),
		c.validateTheme(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	for _, app := range c.Apps {
		if len(app.Roles) == 0 && !app.Locked {
			warnings = append(warnings, ValidationWarning{
				Category: "Apps",
				Item:     app.Name,
				Message:  "app is not pre-selected for any role",
			})
		}
		if app.Icon == "" {
			warnings = append(warnings, ValidationWarning{
				Category: "Apps",
				Item:     app.Name,
				Message:  "app has no icon",
			})
		}
	}

	if c.Branding.URL == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Branding",
			Message:  "no branding url, the fallback icon is always used",
		})
	}

	if c.OSUpdate.CatalogURL == "" || c.OSUpdate.ReleaseName == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "OS Update",
			Message:  "catalog url or release name missing, updates are never reported",
		})
	}

	return warnings
}

func (c *Config) validateBinaries() error {
	var errs criterio.FieldErrorsBuilder

	if c.Dialog.Binary == "" {
		errs = errs.Append("dialog.binary", fmt.Errorf("cannot be empty"))
	}
	if c.Jamf.Binary == "" {
		errs = errs.Append("jamf.binary", fmt.Errorf("cannot be empty"))
	}
	if c.Dialog.CommandFile == "" {
		errs = errs.Append("dialog.command_file", fmt.Errorf("cannot be empty"))
	}
	if c.Dialog.ProgressCommandFile == "" {
		errs = errs.Append("dialog.progress_command_file", fmt.Errorf("cannot be empty"))
	}
	if c.Dialog.CommandFile != "" && c.Dialog.CommandFile == c.Dialog.ProgressCommandFile {
		errs = errs.Append("dialog.progress_command_file", fmt.Errorf("must differ from dialog.command_file"))
	}
	if c.Dialog.TimerExitCode <= 0 {
		errs = errs.Append("dialog.timer_exit_code", fmt.Errorf("must be a positive exit code"))
	}
	if c.Dialog.CommandDelay < 0 {
		errs = errs.Append("dialog.command_delay", fmt.Errorf("cannot be negative"))
	}

	return errs.ToError()
}

func (c *Config) validateRoles() error {
	var errs criterio.FieldErrorsBuilder

	if len(c.Roles.Values) == 0 {
		errs = errs.Append("roles.values", fmt.Errorf("at least one role is required"))
	}
	if c.Roles.Default != "" && !slices.Contains(c.Roles.Values, c.Roles.Default) {
		errs = errs.Append("roles.default", fmt.Errorf("%q is not one of the role values", c.Roles.Default))
	}

	return errs.ToError()
}

func (c *Config) validateApps() error {
	var errs criterio.FieldErrorsBuilder

	seen := make(map[string]bool, len(c.Apps))
	for i, app := range c.Apps {
		field := fmt.Sprintf("apps[%d]", i)

		if err := validate.AppName(app.Name); err != nil {
			errs = errs.Append(field+".name", err)
		} else if seen[app.Name] {
			errs = errs.Append(field+".name", fmt.Errorf("duplicate app name %q", app.Name))
		}
		seen[app.Name] = true

		if err := validate.Trigger(app.Trigger); err != nil {
			errs = errs.Append(field+".trigger", err)
		}

		for _, role := range app.Roles {
			if !slices.Contains(c.Roles.Values, role) {
				errs = errs.Append(field+".roles", fmt.Errorf("unknown role %q", role))
			}
		}
	}

	return errs.ToError()
}

// validateMessages checks template syntax of the update messages.
func (c *Config) validateMessages() error {
	var errs criterio.FieldErrorsBuilder
	data := UpdateTemplateData{Current: "13.0", Latest: "13.1"}

	if _, err := tmpl.Render(c.Messages.UpdateRequired, data); err != nil {
		errs = errs.Append("messages.update_required", fmt.Errorf("template error: %w", err))
	}
	if _, err := tmpl.Render(c.Messages.UpToDate, data); err != nil {
		errs = errs.Append("messages.up_to_date", fmt.Errorf("template error: %w", err))
	}

	return errs.ToError()
}

func (c *Config) validateTheme() error {
	var errs criterio.FieldErrorsBuilder
	if _, ok := styles.GetPalette(c.Theme); !ok {
		errs = errs.Append("theme", fmt.Errorf("unknown theme %q, expected one of %v", c.Theme, styles.ThemeNames()))
	}
	return errs.ToError()
}
