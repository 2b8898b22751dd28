package walkthrough

import (
	"context"

	"github.com/colonyops/walkthrough/internal/core/branding"
	"github.com/colonyops/walkthrough/internal/core/config"
	"github.com/colonyops/walkthrough/internal/core/doctor"
)

// DoctorService runs health checks on the walkthrough setup.
type DoctorService struct {
	config   *config.Config
	branding *branding.Resolver
}

// NewDoctorService creates a new DoctorService.
func NewDoctorService(cfg *config.Config, brand *branding.Resolver) *DoctorService {
	return &DoctorService{
		config:   cfg,
		branding: brand,
	}
}

// RunChecks executes all doctor checks.
func (d *DoctorService) RunChecks(ctx context.Context, configPath string) doctor.Report {
	return doctor.Run(ctx,
		doctor.NewConfigCheck(d.config, configPath),
		doctor.NewToolsCheck(
			doctor.Tool{Label: "swiftDialog", Path: d.config.Dialog.Binary, Required: true},
			doctor.Tool{Label: "jamf", Path: d.config.Jamf.Binary, Required: true},
			doctor.Tool{Label: "open", Path: "open", Purpose: "launches Software Update and Self Service"},
		),
		doctor.NewCommandFilesCheck(d.config.Dialog.CommandFile, d.config.Dialog.ProgressCommandFile),
		doctor.NewBrandingCheck(d.config.Branding.CacheDir, d.branding.Cached),
	)
}
