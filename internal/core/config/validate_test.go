package config

import (
	"testing"

	"github.com/colonyops/walkthrough/internal/core/catalog"
	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	return &cfg
}

func TestValidate_Default(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
		wantErr   string
	}{
		{
			name:      "empty dialog binary",
			mutate:    func(c *Config) { c.Dialog.Binary = "" },
			wantField: "dialog.binary",
			wantErr:   "cannot be empty",
		},
		{
			name:      "empty jamf binary",
			mutate:    func(c *Config) { c.Jamf.Binary = "" },
			wantField: "jamf.binary",
			wantErr:   "cannot be empty",
		},
		{
			name:      "shared command files",
			mutate:    func(c *Config) { c.Dialog.ProgressCommandFile = c.Dialog.CommandFile },
			wantField: "dialog.progress_command_file",
			wantErr:   "must differ",
		},
		{
			name:      "default role outside values",
			mutate:    func(c *Config) { c.Roles.Default = "Sales" },
			wantField: "roles.default",
			wantErr:   "not one of the role values",
		},
		{
			name:      "no roles",
			mutate:    func(c *Config) { c.Roles.Values = nil; c.Roles.Default = ""; c.Apps = nil },
			wantField: "roles.values",
			wantErr:   "at least one role",
		},
		{
			name: "duplicate app",
			mutate: func(c *Config) {
				c.Apps = append(c.Apps, catalog.App{Name: "Figma", Trigger: "install-Figma"})
			},
			wantField: "name",
			wantErr:   "duplicate app name",
		},
		{
			name: "missing trigger",
			mutate: func(c *Config) {
				c.Apps = []catalog.App{{Name: "Figma", Roles: []string{"Design"}}}
			},
			wantField: "apps[0].trigger",
			wantErr:   "trigger is required",
		},
		{
			name: "unknown role",
			mutate: func(c *Config) {
				c.Apps = []catalog.App{{Name: "Figma", Roles: []string{"Marketing"}, Trigger: "install-Figma"}}
			},
			wantField: "apps[0].roles",
			wantErr:   "unknown role",
		},
		{
			name: "trigger with whitespace",
			mutate: func(c *Config) {
				c.Apps = []catalog.App{{Name: "Figma", Roles: []string{"Design"}, Trigger: "install Figma"}}
			},
			wantField: "apps[0].trigger",
			wantErr:   "whitespace",
		},
		{
			name:      "unknown theme",
			mutate:    func(c *Config) { c.Theme = "solarized" },
			wantField: "theme",
			wantErr:   "unknown theme",
		},
		{
			name:      "bad update template",
			mutate:    func(c *Config) { c.Messages.UpdateRequired = "Latest: {{ .Newest }}" },
			wantField: "messages.update_required",
			wantErr:   "template error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Contains(t, fieldErrs[0].Field, tt.wantField)
			assert.Contains(t, fieldErrs[0].Err.Error(), tt.wantErr)
		})
	}
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	assert.Empty(t, cfg.Warnings())

	cfg.Apps = append(cfg.Apps, catalog.App{Name: "Slack", Trigger: "install-Slack"})
	cfg.Branding.URL = ""

	warnings := cfg.Warnings()
	require.Len(t, warnings, 3)
	assert.Equal(t, "Slack", warnings[0].Item)
	assert.Contains(t, warnings[0].Message, "not pre-selected")
	assert.Contains(t, warnings[1].Message, "no icon")
	assert.Equal(t, "Branding", warnings[2].Category)
}
