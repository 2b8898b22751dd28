// Package walkthrough provides the service layer for the onboarding flow.
package walkthrough

import (
	"fmt"
	"io"

	"github.com/colonyops/walkthrough/internal/core/branding"
	"github.com/colonyops/walkthrough/internal/core/catalog"
	"github.com/colonyops/walkthrough/internal/core/config"
	"github.com/colonyops/walkthrough/internal/core/dialog"
	"github.com/colonyops/walkthrough/internal/core/jamf"
	"github.com/colonyops/walkthrough/internal/core/logging"
	"github.com/colonyops/walkthrough/internal/core/osupdate"
	"github.com/colonyops/walkthrough/pkg/executil"
)

// App is the central entry point for all walkthrough operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Config    *config.Config
	Catalog   *catalog.Catalog
	Presenter dialog.Presenter
	Branding  *branding.Resolver
	Updates   UpdateChecker
	Policies  *jamf.Runner
	Doctor    *DoctorService
	Exec      executil.Executor
}

// Options selects how prompts are shown.
type Options struct {
	// Console renders prompts in the terminal instead of swiftDialog.
	Console bool
	// Out receives console prompts.
	Out io.Writer
}

// NewApp wires an App from the loaded configuration.
func NewApp(cfg *config.Config, exec executil.Executor, opts Options) (*App, error) {
	cat, err := catalog.New(cfg.Apps)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	brand := branding.New(logging.Component("branding"), branding.Config{
		URL:      cfg.Branding.URL,
		CacheDir: cfg.Branding.CacheDir,
		FileName: cfg.Branding.FileName,
		Fallback: cfg.Dialog.Icon,
	})

	var presenter dialog.Presenter
	if opts.Console {
		presenter = dialog.NewConsole(logging.Component("console"), opts.Out)
	} else {
		presenter = dialog.NewSwiftDialog(logging.Component("dialog"), exec, brand, dialog.SwiftDialogConfig{
			Binary:        cfg.Dialog.Binary,
			CommandFile:   cfg.Dialog.CommandFile,
			TimerExitCode: cfg.Dialog.TimerExitCode,
		})
	}

	updates := osupdate.NewChecker(logging.Component("osupdate"), osupdate.Config{
		CatalogURL:         cfg.OSUpdate.CatalogURL,
		ReleaseName:        cfg.OSUpdate.ReleaseName,
		DemoVersion:        cfg.OSUpdate.DemoVersion,
		SystemVersionPlist: cfg.OSUpdate.SystemVersionPlist,
	})

	return &App{
		Config:    cfg,
		Catalog:   cat,
		Presenter: presenter,
		Branding:  brand,
		Updates:   updates,
		Policies:  jamf.NewRunner(logging.Component("jamf"), exec, cfg.Jamf.Binary),
		Doctor:    NewDoctorService(cfg, brand),
		Exec:      exec,
	}, nil
}

// Installer returns an in-process installer reporting to the progress
// window's command file.
func (a *App) Installer() *Installer {
	return NewInstaller(
		logging.Component("installer"),
		dialog.NewChannel(a.Config.Dialog.ProgressCommandFile, a.Config.Dialog.CommandDelay),
		a.Policies,
		a.Config.Timing.InstallStartDelay,
		a.Config.Timing.DemoInstallDelay,
	)
}

// Steps returns the walkthrough steps.
func (a *App) Steps(demo bool) *Steps {
	return NewSteps(logging.Component("steps"), a.Config, a.Catalog, a.Presenter, a.Updates, a.Exec, demo)
}
