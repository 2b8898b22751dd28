package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/walkthrough/internal/core/catalog"
	"github.com/colonyops/walkthrough/internal/core/styles"
	"github.com/colonyops/walkthrough/pkg/iojson"
)

type AppsCmd struct {
	flags *Flags

	// flags
	role   string
	format string
}

// NewAppsCmd creates a new apps command
func NewAppsCmd(flags *Flags) *AppsCmd {
	return &AppsCmd{flags: flags}
}

// Register adds the apps command to the application
func (cmd *AppsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "apps",
		Usage:     "List the application catalog",
		UsageText: "walkthrough apps [--role R] [--format text|json]",
		Description: `Displays every configured application with its Jamf trigger and roles.

Use --role to show which applications are pre-selected for that role.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "role",
				Usage:       "show pre-selection for this role",
				Destination: &cmd.role,
			},
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

type appJSON struct {
	catalog.App
	Selected bool `json:"selected"`
}

func (cmd *AppsCmd) run(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.App.Config
	if cmd.role != "" && !slices.Contains(cfg.Roles.Values, cmd.role) {
		return fmt.Errorf("unknown role %q, expected one of %s", cmd.role, strings.Join(cfg.Roles.Values, ", "))
	}

	apps := cmd.flags.App.Catalog.Apps()
	boxes := cmd.flags.App.Catalog.Checkboxes(cmd.role)

	if cmd.format == "json" {
		out := make([]appJSON, 0, len(apps))
		for i, a := range apps {
			out = append(out, appJSON{App: a, Selected: boxes[i].Checked})
		}
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, out)
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, " \tNAME\tTRIGGER\tROLES")

	for i, a := range apps {
		mark := " "
		if cmd.role != "" || a.Locked {
			mark = styles.StatusIcon(checkboxStatus(boxes[i]))
		}

		roles := strings.Join(a.Roles, ", ")
		if a.Locked {
			roles += styles.TextMutedStyle.Render(" (locked)")
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, a.Name, a.Trigger, roles)
	}

	return w.Flush()
}

func checkboxStatus(b catalog.Checkbox) string {
	if b.Checked {
		return "pass"
	}
	return "pending"
}
