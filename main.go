package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/walkthrough/internal/commands"
	"github.com/colonyops/walkthrough/internal/core/config"
	"github.com/colonyops/walkthrough/internal/core/logging"
	"github.com/colonyops/walkthrough/internal/core/styles"
	"github.com/colonyops/walkthrough/internal/walkthrough"
	"github.com/colonyops/walkthrough/pkg/executil"
	"github.com/colonyops/walkthrough/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// loadEnvFile applies the optional dotenv file. Variables already set in the
// environment win.
func loadEnvFile() error {
	err := godotenv.Load(commands.EnvFile())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	envErr := loadEnvFile()

	var logCloser func()

	flags := &commands.Flags{}
	runCmd := commands.NewRunCmd(flags)

	app := &cli.Command{
		Name:      "walkthrough",
		Usage:     "Guide a new Mac user through onboarding",
		UsageText: "walkthrough [global options] [mountpoint] [computer_name] [user_shortname] [command]",
		Description: `Walkthrough shows a short series of swiftDialog prompts on a freshly
provisioned Mac: a welcome, role and application selection, a macOS update
check and device compliance registration.

Selected applications are installed by Jamf policies in a separate worker
process while the remaining prompts are shown. Progress is reported to the
swiftDialog progress window.

Run 'walkthrough --demo' to show every prompt without running policies.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log",
				Aliases:     []string{"log-level"},
				Usage:       "log level (trace, debug, info, warn, error, fatal)",
				Sources:     cli.EnvVars("WALKTHROUGH_LOG"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "append JSON logs to this file instead of stderr",
				Sources:     cli.EnvVars("WALKTHROUGH_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("WALKTHROUGH_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "run-id",
				Usage:       "run identifier shared with the install worker",
				Sources:     cli.EnvVars("WALKTHROUGH_RUN_ID"),
				Hidden:      true,
				Destination: &flags.RunID,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			if envErr != nil {
				log.Warn().Err(envErr).Msg("ignoring env file")
			}

			if flags.RunID == "" {
				flags.RunID = uuid.NewString()
			}
			ctx = logging.WithProcess(logging.WithRunID(ctx, flags.RunID), "main")

			// config subcommands load and report on the file themselves
			if c.Args().First() == "config" {
				return ctx, nil
			}

			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.Theme)
			styles.SetTheme(palette)

			wt, err := walkthrough.NewApp(cfg, &executil.RealExecutor{}, walkthrough.Options{
				Console: flags.Console,
				Out:     os.Stdout,
			})
			if err != nil {
				return ctx, err
			}
			flags.App = wt

			log.Debug().Ctx(ctx).Str("config", flags.ConfigPath).Str("version", version).Msg("walkthrough initialized")
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewInstallWorkerCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags).Register(app)
	app = commands.NewAppsCmd(flags).Register(app)
	app = commands.NewConfigCmd(flags).Register(app)

	// Register walkthrough flags on root command
	app.Flags = append(app.Flags, runCmd.Flags()...)

	// Run the walkthrough when no subcommand is provided. Jamf positionals
	// are accepted and logged.
	app.Action = runCmd.Run

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	stop()
	os.Exit(exitCode)
}
