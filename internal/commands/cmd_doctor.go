package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/colonyops/walkthrough/internal/core/doctor"
	"github.com/colonyops/walkthrough/internal/core/styles"
	"github.com/colonyops/walkthrough/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type DoctorCmd struct {
	flags  *Flags
	format string
}

func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on this Mac's walkthrough setup",
		UsageText:   "walkthrough doctor [options]",
		Description: "Checks the configuration, the swiftDialog and Jamf binaries, the command files and the branding cache.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	report := cmd.flags.App.Doctor.RunChecks(ctx, cmd.flags.ConfigPath)

	var err error
	if cmd.format == "json" {
		err = iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, report)
	} else {
		printReport(c.Root().ErrWriter, report)
	}
	if err != nil {
		return err
	}

	if !report.Healthy {
		return cli.Exit("", 1)
	}
	return nil
}

func printReport(w io.Writer, report doctor.Report) {
	if w == nil {
		w = os.Stderr
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.TextPrimaryBoldStyle.Render("Walkthrough Doctor"))
	_, _ = fmt.Fprintln(w, styles.TextMutedStyle.Render(strings.Repeat("─", 40)))

	for _, result := range report.Checks {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, styles.TextForegroundBoldStyle.Render(result.Name))
		for _, item := range result.Items {
			line := "  " + styles.StatusIcon(string(item.Status)) + " " + item.Label
			if item.Detail != "" {
				line += " " + styles.TextMutedStyle.Render(item.Detail)
			}
			_, _ = fmt.Fprintln(w, line)
		}
	}

	s := report.Summary
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n",
		styles.TextSuccessStyle.Render(fmt.Sprintf("%d passed", s.Passed)),
		styles.TextWarningStyle.Render(fmt.Sprintf("%d warnings", s.Warned)),
		styles.TextErrorStyle.Render(fmt.Sprintf("%d failed", s.Failed)),
	)
}
