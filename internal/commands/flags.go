package commands

import (
	"os"

	"github.com/colonyops/walkthrough/internal/core/config"
	"github.com/colonyops/walkthrough/internal/walkthrough"
)

// DefaultEnvFile is the optional dotenv file Jamf deploys next to the config.
const DefaultEnvFile = "/Library/Management/walkthrough/walkthrough.env"

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	RunID      string

	// Console shows prompts in the terminal instead of swiftDialog
	Console bool

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// App is wired in the Before hook once the config is loaded
	App *walkthrough.App
}

// DefaultConfigPath returns the config path deployed by Jamf.
func DefaultConfigPath() string {
	return config.DefaultPath
}

// EnvFile returns the dotenv file to load, honoring WALKTHROUGH_ENV_FILE.
func EnvFile() string {
	if f := os.Getenv("WALKTHROUGH_ENV_FILE"); f != "" {
		return f
	}
	return DefaultEnvFile
}

// WorkerArgs returns the global flags that make a re-executed worker log and
// load config the same way as this process.
func (f *Flags) WorkerArgs() []string {
	args := []string{"--config", f.ConfigPath, "--log", f.LogLevel, "--run-id", f.RunID}
	if f.LogFile != "" {
		args = append(args, "--log-file", f.LogFile)
	}
	return args
}
