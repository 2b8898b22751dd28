package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/walkthrough/internal/core/config"
	"github.com/colonyops/walkthrough/internal/core/styles"
	"github.com/colonyops/walkthrough/pkg/iojson"
)

type ConfigCmd struct {
	flags  *Flags
	format string
	force  bool
	output string
}

// NewConfigCmd creates the config command group.
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds the config commands to the application.
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate the configuration file",
				UsageText:   "walkthrough config validate [options]",
				Description: "Loads the configuration file and reports field errors and warnings.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.runValidate,
			},
			{
				Name:        "init",
				Usage:       "Write the default configuration",
				UsageText:   "walkthrough config init [--output path] [--force]",
				Description: "Writes the built-in configuration as YAML so it can be edited and deployed with Jamf.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "output",
						Aliases:     []string{"o"},
						Usage:       "path to write (defaults to --config)",
						Destination: &cmd.output,
					},
					&cli.BoolFlag{
						Name:        "force",
						Usage:       "overwrite an existing file",
						Destination: &cmd.force,
					},
				},
				Action: cmd.runInit,
			},
		},
	})

	return app
}

type fieldErrorJSON struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validateJSON struct {
	Valid    bool                       `json:"valid"`
	Errors   []fieldErrorJSON           `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func (cmd *ConfigCmd) runValidate(_ context.Context, c *cli.Command) error {
	out := validateJSON{Valid: true}

	cfg, err := config.Load(cmd.flags.ConfigPath)
	if err != nil {
		out.Valid = false
		out.Errors = fieldErrors(err)
	} else {
		out.Warnings = cfg.Warnings()
	}

	if cmd.format == "json" {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, out); err != nil {
			return err
		}
	} else {
		cmd.outputText(c.Root().Writer, out)
	}

	if !out.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

// fieldErrors flattens a load error into one entry per invalid field.
func fieldErrors(err error) []fieldErrorJSON {
	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return []fieldErrorJSON{{Message: err.Error()}}
	}

	out := make([]fieldErrorJSON, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, fieldErrorJSON{Field: fe.Field, Message: fe.Err.Error()})
	}
	return out
}

func (cmd *ConfigCmd) outputText(w io.Writer, out validateJSON) {
	for _, warn := range out.Warnings {
		item := ""
		if warn.Item != "" {
			item = styles.TextMutedStyle.Render(" (" + warn.Item + ")")
		}
		_, _ = fmt.Fprintf(w, "%s %s: %s%s\n", styles.StatusIcon("warn"), warn.Category, warn.Message, item)
	}

	for _, fe := range out.Errors {
		field := fe.Field
		if field == "" {
			field = "config"
		}
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.StatusIcon("fail"), field, fe.Message)
	}

	_, _ = fmt.Fprintln(w)
	if out.Valid {
		_, _ = fmt.Fprintln(w, styles.TextSuccessStyle.Render("Configuration is valid"))
		return
	}
	_, _ = fmt.Fprintln(w, styles.TextErrorStyle.Render(fmt.Sprintf("%d error(s) found", len(out.Errors))))
}

func (cmd *ConfigCmd) runInit(_ context.Context, c *cli.Command) error {
	path := cmd.output
	if path == "" {
		path = cmd.flags.ConfigPath
	}

	if err := config.Save(path, config.DefaultConfig(), cmd.force); err != nil {
		if errors.Is(err, config.ErrExists) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		return err
	}

	_, _ = fmt.Fprintln(c.Root().Writer, styles.TextSuccessStyle.Render("Wrote "+path))
	return nil
}
