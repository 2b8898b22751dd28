// Package branding resolves the Self Service branding image used as the
// default dialog icon.
package branding

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"github.com/rs/zerolog"
)

// maxImageSize caps the download so a misbehaving endpoint cannot fill the disk.
const maxImageSize = 10 << 20

// Config configures a Resolver.
type Config struct {
	URL      string
	CacheDir string
	FileName string
	Fallback string // icon returned when the image is unavailable
}

// Resolver returns the path of the cached branding image, downloading it on
// first use.
type Resolver struct {
	log    zerolog.Logger
	store  *diskv.Diskv
	client *http.Client
	cfg    Config
}

func flatTransform(string) []string { return []string{} }

// New creates a resolver caching into cfg.CacheDir.
func New(log zerolog.Logger, cfg Config) *Resolver {
	return &Resolver{
		log: log,
		store: diskv.New(diskv.Options{
			BasePath:  cfg.CacheDir,
			Transform: flatTransform,
			FilePerm:  0o644,
			PathPerm:  0o755,
		}),
		client: &http.Client{Timeout: 10 * time.Second},
		cfg:    cfg,
	}
}

// Path is where the cached image lives on disk.
func (r *Resolver) Path() string {
	return filepath.Join(r.cfg.CacheDir, r.cfg.FileName)
}

// Cached reports whether the image is already on disk.
func (r *Resolver) Cached() bool {
	return r.cfg.CacheDir != "" && r.cfg.FileName != "" && r.store.Has(r.cfg.FileName)
}

// Icon returns the cached image path, downloading the image when it is
// missing. Any failure yields the fallback icon.
func (r *Resolver) Icon(ctx context.Context) string {
	if r.cfg.CacheDir == "" || r.cfg.FileName == "" {
		return r.cfg.Fallback
	}

	if r.store.Has(r.cfg.FileName) {
		r.log.Debug().Ctx(ctx).Str("path", r.Path()).Msg("branding image already on disk")
		return r.Path()
	}

	if r.cfg.URL == "" {
		return r.cfg.Fallback
	}

	data, err := r.download(ctx)
	if err != nil {
		r.log.Debug().Ctx(ctx).Err(err).Msg("branding image could not be downloaded, using generic icon")
		return r.cfg.Fallback
	}

	if err := r.store.Write(r.cfg.FileName, data); err != nil {
		r.log.Warn().Ctx(ctx).Err(err).Str("path", r.Path()).Msg("failed to cache branding image")
		return r.cfg.Fallback
	}

	r.log.Debug().Ctx(ctx).Str("path", r.Path()).Msg("branding image downloaded")
	return r.Path()
}

func (r *Resolver) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch branding image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty branding image")
	}
	return data, nil
}
