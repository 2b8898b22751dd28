package walkthrough

import (
	"context"
	"fmt"

	"github.com/colonyops/walkthrough/internal/core/catalog"
	"github.com/colonyops/walkthrough/internal/core/config"
	"github.com/colonyops/walkthrough/internal/core/coop"
	"github.com/colonyops/walkthrough/internal/core/dialog"
	"github.com/colonyops/walkthrough/internal/core/osupdate"
	"github.com/colonyops/walkthrough/pkg/executil"
	"github.com/colonyops/walkthrough/pkg/tmpl"
	"github.com/rs/zerolog"
)

// UpdateChecker reports whether macOS needs updating.
type UpdateChecker interface {
	Check(ctx context.Context, demo bool) osupdate.Status
}

// Steps holds the four prompts of the walkthrough. Each step runs as a
// cooperative task and yields once before doing anything.
type Steps struct {
	log       zerolog.Logger
	cfg       *config.Config
	catalog   *catalog.Catalog
	presenter dialog.Presenter
	updates   UpdateChecker
	exec      executil.Executor
	demo      bool
}

// NewSteps creates the walkthrough steps.
func NewSteps(
	log zerolog.Logger,
	cfg *config.Config,
	cat *catalog.Catalog,
	presenter dialog.Presenter,
	updates UpdateChecker,
	exec executil.Executor,
	demo bool,
) *Steps {
	return &Steps{
		log:       log,
		cfg:       cfg,
		catalog:   cat,
		presenter: presenter,
		updates:   updates,
		exec:      exec,
		demo:      demo,
	}
}

// Welcome introduces the walkthrough.
func (s *Steps) Welcome(ctx context.Context, t *coop.Task) error {
	if err := t.Yield(ctx); err != nil {
		return err
	}

	s.presenter.Present(ctx, dialog.Options{
		Title:       s.cfg.Title(""),
		Message:     s.cfg.Messages.Welcome,
		Button1Text: "Next",
		Height:      300,
		Timer:       s.cfg.Timing.PromptTimer,
	})
	return nil
}

// RoleApps asks for the user's role, then which apps to install, and opens
// the progress window. It returns the install work items, or nil when no
// app was picked.
func (s *Steps) RoleApps(ctx context.Context, t *coop.Task) ([]catalog.WorkItem, error) {
	if err := t.Yield(ctx); err != nil {
		return nil, err
	}

	role := s.selectRole(ctx)
	apps := s.selectApps(ctx, role)
	if len(apps) == 0 {
		s.log.Debug().Ctx(ctx).Msg("app selection was empty, moving on")
		return nil, nil
	}

	rows, items, err := s.catalog.BuildSelectedLists(apps)
	if err != nil {
		return nil, fmt.Errorf("build selected lists: %w", err)
	}

	listItems := make([]dialog.ListItem, 0, len(rows))
	for _, row := range rows {
		listItems = append(listItems, dialog.ListItem{
			Title:      row.Title,
			Icon:       row.Icon,
			Status:     dialog.StatusPending,
			StatusText: "Pending",
		})
	}

	s.presenter.Present(ctx, dialog.Options{
		Title:       s.cfg.Title("Installing Applications"),
		Message:     s.cfg.Messages.Installing,
		Icon:        s.cfg.Dialog.DownloadIcon,
		Button1Text: "Ok",
		NonBlocking: true,
		OnTop:       dialog.Bool(false),
		ListItems:   listItems,
		Position:    "bottomright",
		CommandFile: s.cfg.Dialog.ProgressCommandFile,
	})

	return items, nil
}

func (s *Steps) selectRole(ctx context.Context) string {
	res := s.presenter.Present(ctx, dialog.Options{
		Title:       s.cfg.Title(s.cfg.Roles.Title),
		Message:     s.cfg.Messages.SelectRole,
		Button1Text: "Next",
		Height:      220,
		Width:       600,
		SelectItems: []dialog.SelectItem{{
			Title:   s.cfg.Roles.Title,
			Default: s.cfg.Roles.Default,
			Values:  s.cfg.Roles.Values,
		}},
	})

	role, ok := res.SelectedOption()
	if !ok {
		s.log.Debug().Ctx(ctx).Msg("no role selected")
		return ""
	}
	s.log.Debug().Ctx(ctx).Str("role", role).Msg("selected role")
	return role
}

func (s *Steps) selectApps(ctx context.Context, role string) []string {
	boxes := s.catalog.Checkboxes(role)
	checkboxes := make([]dialog.Checkbox, 0, len(boxes))
	for _, b := range boxes {
		checkboxes = append(checkboxes, dialog.Checkbox{
			Label:    b.Label,
			Checked:  b.Checked,
			Disabled: b.Disabled,
		})
	}

	res := s.presenter.Present(ctx, dialog.Options{
		Title:       s.cfg.Title("Select Applications"),
		Message:     s.cfg.Messages.SelectApps,
		Button1Text: "Install",
		Height:      450,
		Width:       600,
		Checkboxes:  checkboxes,
	})

	apps := res.Checked()
	s.log.Debug().Ctx(ctx).Strs("apps", apps).Msg("selected apps")
	return apps
}

// DeviceUpdate checks for a macOS update and points the user at Software
// Update when one is needed.
func (s *Steps) DeviceUpdate(ctx context.Context, t *coop.Task) error {
	if err := t.Yield(ctx); err != nil {
		return err
	}

	st := s.updates.Check(ctx, s.demo)
	s.log.Debug().Ctx(ctx).Bool("required", st.Required).Str("local", st.Local).Str("latest", st.Latest).Msg("update check")

	if err := t.Sleep(ctx, s.cfg.Timing.StepDelay); err != nil {
		return err
	}

	data := config.UpdateTemplateData{Current: st.Local, Latest: st.Latest}

	if !st.Required {
		s.presenter.Present(ctx, dialog.Options{
			Title:       s.cfg.Title("macOS Update"),
			Message:     s.render(ctx, s.cfg.Messages.UpToDate, data),
			Button1Text: "Next",
			Mini:        true,
			Position:    "topright",
			Timer:       s.cfg.Timing.PromptTimer,
		})
		return nil
	}

	s.presenter.Present(ctx, dialog.Options{
		Title:       s.cfg.Title("Update Required"),
		Message:     s.render(ctx, s.cfg.Messages.UpdateRequired, data),
		Button1Text: "Update Now",
		Mini:        true,
		OnTop:       dialog.Bool(false),
		Position:    "topright",
	})

	if s.demo {
		s.log.Info().Ctx(ctx).Msg("demo mode enabled, bypassing Software Update launch")
		return nil
	}

	s.open(ctx, osupdate.SettingsURL(st.Local))
	return nil
}

// DeviceRegistration sends the user to Self Service to register the device.
func (s *Steps) DeviceRegistration(ctx context.Context, t *coop.Task) error {
	if err := t.Yield(ctx); err != nil {
		return err
	}
	if err := t.Sleep(ctx, s.cfg.Timing.StepDelay); err != nil {
		return err
	}

	s.presenter.Present(ctx, dialog.Options{
		Title:       s.cfg.Title("Device Compliance Registration"),
		Message:     s.cfg.Messages.Registration,
		Button1Text: "Register",
		Mini:        true,
		Position:    "topright",
		OnTop:       dialog.Bool(false),
	})

	if s.demo {
		s.log.Info().Ctx(ctx).Msg("demo mode enabled, bypassing Self Service launch")
		return nil
	}

	s.open(ctx, s.cfg.Jamf.RegistrationURL)
	return nil
}

// open launches url with the OS handler without waiting for it.
func (s *Steps) open(ctx context.Context, url string) {
	p, err := s.exec.Start(ctx, "open", url)
	if err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Str("url", url).Msg("failed to open url")
		return
	}
	s.log.Debug().Ctx(ctx).Str("url", url).Int("pid", p.Pid).Msg("opened url")
}

// render fills an update message. Templates are validated at load time, so
// a failure here only logs and falls back to the raw text.
func (s *Steps) render(ctx context.Context, text string, data config.UpdateTemplateData) string {
	out, err := tmpl.Render(text, data)
	if err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("render message")
		return text
	}
	return out
}
