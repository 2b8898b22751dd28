// Package dialog drives swiftDialog prompts and the command files used to
// update a running dialog window.
package dialog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/dedent"
)

// Checkbox is one entry of a checkbox prompt.
type Checkbox struct {
	Label    string `json:"label"`
	Checked  bool   `json:"checked"`
	Disabled bool   `json:"disabled"`
}

// ListItem is one row of a progress list.
type ListItem struct {
	Title      string `json:"title"`
	Icon       string `json:"icon,omitempty"`
	Status     string `json:"status,omitempty"`
	StatusText string `json:"statustext,omitempty"`
}

// SelectItem is a single choice drop-down.
type SelectItem struct {
	Title   string   `json:"title"`
	Default string   `json:"default,omitempty"`
	Values  []string `json:"values"`
}

// Options describes one prompt. Zero values are left out of the serialized
// form so swiftDialog applies its own defaults.
type Options struct {
	Title         string
	Message       string
	Icon          string
	Button1Text   string
	Button1Action string

	Checkboxes  []Checkbox
	ListItems   []ListItem
	SelectItems []SelectItem

	Position  string
	Small     bool
	Mini      bool
	Width     int
	Height    int
	OnTop     *bool // nil means on top
	IgnoreDND bool
	Timer     time.Duration

	CommandFile string
	NonBlocking bool
}

// Bool returns a pointer to v, for Options.OnTop.
func Bool(v bool) *bool { return &v }

type payload struct {
	Title         string       `json:"title,omitempty"`
	Message       string       `json:"message,omitempty"`
	Icon          string       `json:"icon,omitempty"`
	Button1Text   string       `json:"button1text,omitempty"`
	Button1Action string       `json:"button1action,omitempty"`
	Checkbox      []Checkbox   `json:"checkbox,omitempty"`
	ListItem      []ListItem   `json:"listitem,omitempty"`
	SelectItems   []SelectItem `json:"selectitems,omitempty"`
	Position      string       `json:"position,omitempty"`
	Small         bool         `json:"small,omitempty"`
	Mini          bool         `json:"mini,omitempty"`
	Width         string       `json:"width,omitempty"`
	Height        string       `json:"height,omitempty"`
	OnTop         bool         `json:"ontop"`
	IgnoreDND     bool         `json:"ignorednd,omitempty"`
	Timer         string       `json:"timer,omitempty"`
	HideTimerBar  bool         `json:"hidetimerbar,omitempty"`
	CommandFile   string       `json:"commandfile,omitempty"`
	JSON          bool         `json:"json"`
	Moveable      bool         `json:"moveable"`
}

// MarshalJSON encodes the options as the swiftDialog --jsonstring document.
func (o Options) MarshalJSON() ([]byte, error) {
	p := payload{
		Title:         o.Title,
		Message:       NormalizeMessage(o.Message),
		Icon:          o.Icon,
		Button1Text:   o.Button1Text,
		Button1Action: o.Button1Action,
		Checkbox:      o.Checkboxes,
		ListItem:      o.ListItems,
		SelectItems:   o.SelectItems,
		Position:      o.Position,
		Small:         o.Small,
		Mini:          o.Mini,
		OnTop:         o.OnTop == nil || *o.OnTop,
		IgnoreDND:     o.IgnoreDND,
		CommandFile:   o.CommandFile,
		JSON:          true,
		Moveable:      true,
	}

	if o.Width > 0 {
		p.Width = strconv.Itoa(o.Width)
	}
	if o.Height > 0 {
		p.Height = strconv.Itoa(o.Height)
	}
	if o.Timer > 0 {
		p.Timer = strconv.Itoa(int(math.Ceil(o.Timer.Seconds())))
		p.HideTimerBar = true
	}

	return json.Marshal(p)
}

// NormalizeMessage strips the common indentation of a multi-line message and
// trims surrounding blank lines.
func NormalizeMessage(msg string) string {
	return strings.TrimSpace(dedent.Dedent(msg))
}
