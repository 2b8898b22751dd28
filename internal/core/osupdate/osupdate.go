// Package osupdate decides whether the Mac should be updated by comparing
// the installed macOS version with the Jamf software catalog.
package osupdate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/groob/plist"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/host"
	"golang.org/x/mod/semver"
)

// ErrReleaseNotFound is returned when the catalog has no entry for the
// configured release name.
var ErrReleaseNotFound = errors.New("release not found in software catalog")

// Settings deep links for Software Update.
const (
	SoftwareUpdateURL       = "x-apple.systempreferences:com.apple.Software-Update-Settings.extension"
	LegacySoftwareUpdateURL = "x-apple.systempreferences:com.apple.preferences.softwareupdate"
)

var catalogHTTPClient = &http.Client{Timeout: 10 * time.Second}

var fetchCatalogJSON = func(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := catalogHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request software catalog: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request software catalog: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read software catalog body: %w", err)
	}
	return body, nil
}

var platformVersion = func(ctx context.Context) (string, error) {
	_, _, version, err := host.PlatformInformationWithContext(ctx)
	return version, err
}

// Config configures a Checker.
type Config struct {
	CatalogURL         string
	ReleaseName        string
	DemoVersion        string
	SystemVersionPlist string
}

// Status is the outcome of an update check.
type Status struct {
	Required bool
	Local    string
	Latest   string // empty when the catalog could not answer
}

// CatalogEntry is one title of the software catalog. Only the fields the
// check reads are decoded; the catalog carries more.
type CatalogEntry struct {
	Name           string `json:"name"`
	CurrentVersion string `json:"currentVersion"`
}

type systemVersion struct {
	ProductName    string `plist:"ProductName"`
	ProductVersion string `plist:"ProductVersion"`
}

// Checker compares the local macOS version to the catalog.
type Checker struct {
	log zerolog.Logger
	cfg Config
}

// NewChecker creates a Checker.
func NewChecker(log zerolog.Logger, cfg Config) *Checker {
	return &Checker{log: log, cfg: cfg}
}

// LocalVersion returns the installed macOS version. It reads
// SystemVersion.plist and falls back to the host platform information.
func (c *Checker) LocalVersion(ctx context.Context) string {
	if c.cfg.SystemVersionPlist != "" {
		v, err := readPlistVersion(c.cfg.SystemVersionPlist)
		if err == nil && v != "" {
			return v
		}
		c.log.Debug().Ctx(ctx).Err(err).Str("path", c.cfg.SystemVersionPlist).Msg("system version plist unavailable")
	}

	v, err := platformVersion(ctx)
	if err != nil {
		c.log.Debug().Ctx(ctx).Err(err).Msg("platform information unavailable")
		return ""
	}
	return v
}

func readPlistVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read system version: %w", err)
	}

	var sv systemVersion
	if err := plist.Unmarshal(data, &sv); err != nil {
		return "", fmt.Errorf("decode system version: %w", err)
	}
	return sv.ProductVersion, nil
}

// LatestVersion returns the current version of the configured release. The
// catalog reports versions such as "13.4.1 (22F82)"; only the first token is
// kept.
func (c *Checker) LatestVersion(ctx context.Context) (string, error) {
	if c.cfg.CatalogURL == "" || c.cfg.ReleaseName == "" {
		return "", ErrReleaseNotFound
	}

	body, err := fetchCatalogJSON(ctx, c.cfg.CatalogURL)
	if err != nil {
		return "", fmt.Errorf("fetch software catalog: %w", err)
	}

	var entries []CatalogEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return "", fmt.Errorf("decode software catalog: %w", err)
	}

	for _, e := range entries {
		if e.Name != c.cfg.ReleaseName {
			continue
		}
		fields := strings.Fields(e.CurrentVersion)
		if len(fields) == 0 {
			return "", fmt.Errorf("%s: empty currentVersion", e.Name)
		}
		return fields[0], nil
	}

	return "", fmt.Errorf("%q: %w", c.cfg.ReleaseName, ErrReleaseNotFound)
}

// Check reports whether an update is required. In demo mode an update is
// always required and the catalog is not contacted. Catalog failures are
// logged and reported as no update.
func (c *Checker) Check(ctx context.Context, demo bool) Status {
	st := Status{Local: c.LocalVersion(ctx)}

	if demo {
		c.log.Info().Ctx(ctx).Msg("demo mode is enabled, setting dummy software update info")
		st.Required = true
		st.Latest = c.cfg.DemoVersion
		return st
	}

	latest, err := c.LatestVersion(ctx)
	if err != nil {
		c.log.Warn().Ctx(ctx).Err(err).Str("release", c.cfg.ReleaseName).Msg("could not determine latest macOS version")
		return st
	}
	st.Latest = latest

	c.log.Info().Ctx(ctx).Str("current", st.Local).Str("latest", latest).Msg("macOS versions")
	st.Required = NewerThan(latest, st.Local)
	return st
}

// NewerThan reports whether version a is strictly newer than b. Versions
// that do not parse never compare as newer.
func NewerThan(a, b string) bool {
	na, ok := normalizeVersion(a)
	if !ok {
		return false
	}
	nb, ok := normalizeVersion(b)
	if !ok {
		return false
	}
	return semver.Compare(na, nb) > 0
}

func normalizeVersion(version string) (string, bool) {
	if semver.IsValid(version) {
		return version, true
	}

	withPrefix := "v" + version
	if semver.IsValid(withPrefix) {
		return withPrefix, true
	}

	return "", false
}

// MajorVersion returns the leading component of version.
func MajorVersion(version string) (int, bool) {
	head, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SettingsURL returns the Software Update deep link for the installed
// version. macOS 13 moved Software Update into System Settings.
func SettingsURL(localVersion string) string {
	if major, ok := MajorVersion(localVersion); ok && major >= 13 {
		return SoftwareUpdateURL
	}
	return LegacySoftwareUpdateURL
}
