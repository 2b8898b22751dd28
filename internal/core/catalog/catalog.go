// Package catalog holds the static application table offered during onboarding
// and the role based pre-selection logic built on top of it.
package catalog

import (
	"fmt"
	"slices"
	"sort"
)

// App describes one installable application.
type App struct {
	Name    string   `yaml:"name" json:"name"`
	Icon    string   `yaml:"icon" json:"icon"`
	Roles   []string `yaml:"roles" json:"roles"`     // roles that pre-check this app
	Trigger string   `yaml:"trigger" json:"trigger"` // Jamf policy custom event
	Locked  bool     `yaml:"locked" json:"locked"`   // always installed, not user togglable
}

// EligibleFor reports whether role pre-checks the app.
func (a App) EligibleFor(role string) bool {
	return slices.Contains(a.Roles, role)
}

// Roles is the single choice role picker definition.
type Roles struct {
	Title   string   `yaml:"title" json:"title"`
	Default string   `yaml:"default" json:"default"`
	Values  []string `yaml:"values" json:"values"`
}

// Checkbox is the pre-selection state of one app for a role.
type Checkbox struct {
	Label    string
	Checked  bool
	Disabled bool
}

// WorkItem is one install job handed to the installer. Index is the row of
// the progress list the item reports against.
type WorkItem struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Trigger string `json:"trigger"`
}

// Row is one entry of the progress list shown while installing.
type Row struct {
	Title string
	Icon  string
}

// Catalog is an immutable lookup over the configured apps.
type Catalog struct {
	apps   []App
	byName map[string]App
}

// New builds a catalog. App names must be unique.
func New(apps []App) (*Catalog, error) {
	c := &Catalog{
		apps:   make([]App, len(apps)),
		byName: make(map[string]App, len(apps)),
	}
	copy(c.apps, apps)

	for _, a := range apps {
		if _, dup := c.byName[a.Name]; dup {
			return nil, fmt.Errorf("duplicate app %q", a.Name)
		}
		c.byName[a.Name] = a
	}
	return c, nil
}

// Apps returns a copy of the apps in configured order.
func (c *Catalog) Apps() []App {
	out := make([]App, len(c.apps))
	copy(out, c.apps)
	return out
}

// Lookup returns the app with the given name.
func (c *Catalog) Lookup(name string) (App, bool) {
	a, ok := c.byName[name]
	return a, ok
}

// Checkboxes returns the checkbox state for every app given the selected
// role. An app is checked when role is in its eligibility set. Locked apps
// are always checked and disabled.
func (c *Catalog) Checkboxes(role string) []Checkbox {
	boxes := make([]Checkbox, 0, len(c.apps))
	for _, a := range c.apps {
		boxes = append(boxes, Checkbox{
			Label:    a.Name,
			Checked:  a.Locked || a.EligibleFor(role),
			Disabled: a.Locked,
		})
	}
	return boxes
}

// BuildSelectedLists turns the selected app names into the progress rows and
// the matching install work items. Names are sorted so the result does not
// depend on input order; WorkItem.Index is the position of the row in the
// returned slice. Duplicate names collapse to one entry.
func (c *Catalog) BuildSelectedLists(names []string) ([]Row, []WorkItem, error) {
	selected := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		selected = append(selected, n)
	}
	sort.Strings(selected)

	rows := make([]Row, 0, len(selected))
	items := make([]WorkItem, 0, len(selected))
	for i, name := range selected {
		app, ok := c.byName[name]
		if !ok {
			return nil, nil, fmt.Errorf("unknown app %q", name)
		}
		rows = append(rows, Row{Title: app.Name, Icon: app.Icon})
		items = append(items, WorkItem{Index: i, Name: app.Name, Trigger: app.Trigger})
	}

	return rows, items, nil
}
