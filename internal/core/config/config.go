// Package config handles configuration loading and validation for walkthrough.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/colonyops/walkthrough/internal/core/catalog"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Jamf deploys the walkthrough configuration.
const DefaultPath = "/Library/Management/walkthrough/config.yaml"

// Config holds the application configuration. It is loaded once at startup
// and treated as read-only afterwards.
type Config struct {
	TitlePrefix string         `yaml:"title_prefix"`
	Theme       string         `yaml:"theme"` // terminal output theme, see styles.ThemeNames
	Dialog      DialogConfig   `yaml:"dialog"`
	Jamf        JamfConfig     `yaml:"jamf"`
	Branding    BrandingConfig `yaml:"branding"`
	OSUpdate    OSUpdateConfig `yaml:"os_update"`
	Roles       catalog.Roles  `yaml:"roles"`
	Apps        []catalog.App  `yaml:"apps"`
	Messages    Messages       `yaml:"messages"`
	Timing      TimingConfig   `yaml:"timing"`
}

// DialogConfig configures the swiftDialog binary and its command files.
type DialogConfig struct {
	Binary              string        `yaml:"binary"`
	CommandFile         string        `yaml:"command_file"`          // default command file for prompts
	ProgressCommandFile string        `yaml:"progress_command_file"` // command file of the install progress window
	Icon                string        `yaml:"icon"`                  // fallback icon when branding is unavailable
	DownloadIcon        string        `yaml:"download_icon"`
	TimerExitCode       int           `yaml:"timer_exit_code"`
	CommandDelay        time.Duration `yaml:"command_delay"` // pause before each command file write
}

// JamfConfig configures the Jamf binary.
type JamfConfig struct {
	Binary          string `yaml:"binary"`
	RegistrationURL string `yaml:"registration_url"` // Self Service deep link for device compliance
}

// BrandingConfig configures the Self Service branding image used as the dialog icon.
type BrandingConfig struct {
	URL      string `yaml:"url"`
	CacheDir string `yaml:"cache_dir"`
	FileName string `yaml:"file_name"`
}

// OSUpdateConfig configures the macOS update check.
type OSUpdateConfig struct {
	CatalogURL         string `yaml:"catalog_url"`
	ReleaseName        string `yaml:"release_name"` // catalog entry name, e.g. "Apple macOS Ventura"
	DemoVersion        string `yaml:"demo_version"`
	SystemVersionPlist string `yaml:"system_version_plist"`
}

// Messages holds the prompt copy. Update messages are Go templates rendered
// with .Current and .Latest.
type Messages struct {
	Welcome        string `yaml:"welcome"`
	SelectRole     string `yaml:"select_role"`
	SelectApps     string `yaml:"select_apps"`
	Installing     string `yaml:"installing"`
	UpdateRequired string `yaml:"update_required"`
	UpToDate       string `yaml:"up_to_date"`
	Registration   string `yaml:"registration"`
}

// TimingConfig holds the fixed pauses that let swiftDialog catch up.
type TimingConfig struct {
	StepDelay         time.Duration `yaml:"step_delay"`
	InstallStartDelay time.Duration `yaml:"install_start_delay"`
	DemoInstallDelay  time.Duration `yaml:"demo_install_delay"`
	PromptTimer       time.Duration `yaml:"prompt_timer"`
}

// DefaultConfig returns a Config with the stock onboarding flow.
func DefaultConfig() Config {
	return Config{
		TitlePrefix: "COMPANY Setup",
		Theme:       "tokyo-night",
		Dialog: DialogConfig{
			Binary:              "/usr/local/bin/dialog",
			CommandFile:         "/var/tmp/dialog.log",
			ProgressCommandFile: "/var/tmp/dialog_user_walkthrough.log",
			Icon:                "SF=sparkles.rectangle.stack.fill,colour=auto,weight=medium",
			DownloadIcon:        "SF=laptopcomputer.and.arrow.down,colour=auto,weight=medium",
			TimerExitCode:       4,
			CommandDelay:        500 * time.Millisecond,
		},
		Jamf: JamfConfig{
			Binary:          "/usr/local/bin/jamf",
			RegistrationURL: "jamfselfservice://content?entity=policy&id=19&action=view",
		},
		Branding: BrandingConfig{
			URL:      "https://COMPANY.jamfcloud.com/api/v1/branding-images/download/9",
			CacheDir: "/Library/Management/images",
			FileName: "brandingimage.png",
		},
		OSUpdate: OSUpdateConfig{
			CatalogURL:         "https://jamf-patch.jamfcloud.com/v1/software/",
			ReleaseName:        "Apple macOS Ventura",
			DemoVersion:        "19.1",
			SystemVersionPlist: "/System/Library/CoreServices/SystemVersion.plist",
		},
		Roles: catalog.Roles{
			Title:   "Select Role",
			Default: "Engineering",
			Values:  []string{"Design", "Engineering", "Other"},
		},
		Apps:     defaultApps(),
		Messages: defaultMessages(),
		Timing: TimingConfig{
			StepDelay:         1500 * time.Millisecond,
			InstallStartDelay: time.Second,
			DemoInstallDelay:  500 * time.Millisecond,
			PromptTimer:       10 * time.Second,
		},
	}
}

func defaultApps() []catalog.App {
	const icon = "https://PATH.TO.ICON.com"
	return []catalog.App{
		{Name: "Adobe Acrobat Reader", Icon: icon, Roles: []string{"Design", "Other"}, Trigger: "install-Adobe_Acrobat_Reader"},
		{Name: "Docker Desktop", Icon: icon, Roles: []string{"Engineering"}, Trigger: "install-Docker"},
		{Name: "Figma", Icon: icon, Roles: []string{"Design"}, Trigger: "install-Figma"},
		{Name: "GitHub Desktop", Icon: icon, Roles: []string{"Engineering"}, Trigger: "install-GitHub_Desktop"},
		{Name: "iTerm2", Icon: icon, Roles: []string{"Engineering"}, Trigger: "install-iTerm2"},
		{Name: "Microsoft Office", Icon: icon, Roles: []string{"Design", "Engineering", "Other"}, Trigger: "install-Microsoft_Office_Suite", Locked: true},
		{Name: "Postman", Icon: icon, Roles: []string{"Engineering"}, Trigger: "install-Postman"},
		{Name: "Visual Studio Code", Icon: icon, Roles: []string{"Engineering"}, Trigger: "install-Visual_Studio_Code"},
		{Name: "Xcode", Icon: icon, Roles: []string{"Engineering"}, Trigger: "install-Xcode-14"},
	}
}

func defaultMessages() Messages {
	return Messages{
		Welcome: "Let's get a few more things setup on your new Mac.\n\n" +
			"\U0001F4BB Install Additional Apps\n\n" +
			"\U0001F504 macOS Update Check\n\n" +
			"\U0001F511 Device Compliance Registration",
		SelectRole: "Please select the role that most closely aligns to your function.",
		SelectApps: "Please select any additional applications you'd like us to install now:",
		Installing: "These applications are now being installed.\n\n" +
			"This will continue in the background.",
		UpdateRequired: "Let's get the latest version of macOS installed now\n\n" +
			"Current: {{ .Current }}\n" +
			"Latest: {{ .Latest }}",
		UpToDate: "Your Mac is already on the latest version of macOS.\n\n" +
			"Let's move onto Device Compliance Registration.",
		Registration: "While your selected apps install, we need to register this device with Microsoft.\n\n" +
			"We'll launch Self Service and continue there.",
	}
}

// Load reads configuration from the given path. If configPath is empty or
// doesn't exist, the defaults are returned.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// ErrExists is returned by Save when the target file exists and overwrite
// was not requested.
var ErrExists = errors.New("config file already exists")

// Save writes cfg as YAML to path, creating parent directories.
func Save(path string, cfg Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
	if c.Dialog.TimerExitCode == 0 {
		c.Dialog.TimerExitCode = defaults.Dialog.TimerExitCode
	}
	if c.Dialog.Icon == "" {
		c.Dialog.Icon = defaults.Dialog.Icon
	}
	if c.Dialog.DownloadIcon == "" {
		c.Dialog.DownloadIcon = defaults.Dialog.DownloadIcon
	}
	if c.Branding.FileName == "" {
		c.Branding.FileName = defaults.Branding.FileName
	}
	if c.OSUpdate.SystemVersionPlist == "" {
		c.OSUpdate.SystemVersionPlist = defaults.OSUpdate.SystemVersionPlist
	}
	if c.OSUpdate.DemoVersion == "" {
		c.OSUpdate.DemoVersion = defaults.OSUpdate.DemoVersion
	}
	if c.Roles.Title == "" {
		c.Roles.Title = defaults.Roles.Title
	}
	if c.Timing.PromptTimer == 0 {
		c.Timing.PromptTimer = defaults.Timing.PromptTimer
	}

	m, dm := &c.Messages, defaults.Messages
	for _, f := range []struct{ v *string; d string }{
		{&m.Welcome, dm.Welcome},
		{&m.SelectRole, dm.SelectRole},
		{&m.SelectApps, dm.SelectApps},
		{&m.Installing, dm.Installing},
		{&m.UpdateRequired, dm.UpdateRequired},
		{&m.UpToDate, dm.UpToDate},
		{&m.Registration, dm.Registration},
	} {
		if *f.v == "" {
			*f.v = f.d
		}
	}
}

// Title joins the title prefix with a step suffix.
func (c *Config) Title(suffix string) string {
	if suffix == "" {
		return c.TitlePrefix
	}
	return c.TitlePrefix + ": " + suffix
}
