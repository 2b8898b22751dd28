package osupdate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexedwards/flow"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const systemVersionPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>ProductBuildVersion</key>
	<string>22E261</string>
	<key>ProductName</key>
	<string>macOS</string>
	<key>ProductVersion</key>
	<string>13.3.1</string>
</dict>
</plist>
`

const catalogJSON = `[
	{"id": "0CE", "name": "Apple macOS Monterey", "publisher": "Apple Inc.", "currentVersion": "12.6.5 (21G531)"},
	{"id": "530", "name": "Apple macOS Ventura", "publisher": "Apple Inc.", "currentVersion": "13.4 (22F66)"}
]`

func writePlist(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "SystemVersion.plist")
	require.NoError(t, os.WriteFile(path, []byte(systemVersionPlist), 0o644))
	return path
}

// newCatalogServer serves the catalog at /v1/software/ and counts requests.
func newCatalogServer(t *testing.T, body string, calls *int) string {
	t.Helper()
	mux := flow.New()
	mux.HandleFunc("/v1/software/", func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}, http.MethodGet)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL + "/v1/software/"
}

func stubPlatform(t *testing.T, version string, err error) {
	t.Helper()
	prev := platformVersion
	platformVersion = func(context.Context) (string, error) { return version, err }
	t.Cleanup(func() { platformVersion = prev })
}

func newChecker(t *testing.T, url, release string) *Checker {
	t.Helper()
	return NewChecker(zerolog.Nop(), Config{
		CatalogURL:         url,
		ReleaseName:        release,
		DemoVersion:        "19.1",
		SystemVersionPlist: writePlist(t),
	})
}

func TestLocalVersion_Plist(t *testing.T) {
	stubPlatform(t, "99.0", nil)
	c := newChecker(t, "", "")
	assert.Equal(t, "13.3.1", c.LocalVersion(context.Background()))
}

func TestLocalVersion_FallsBackToPlatform(t *testing.T) {
	stubPlatform(t, "12.6.3", nil)
	c := NewChecker(zerolog.Nop(), Config{SystemVersionPlist: filepath.Join(t.TempDir(), "missing.plist")})
	assert.Equal(t, "12.6.3", c.LocalVersion(context.Background()))
}

func TestLocalVersion_Unavailable(t *testing.T) {
	stubPlatform(t, "", errors.New("not supported"))
	c := NewChecker(zerolog.Nop(), Config{})
	assert.Equal(t, "", c.LocalVersion(context.Background()))
}

func TestCheck_UpdateRequired(t *testing.T) {
	var calls int
	url := newCatalogServer(t, catalogJSON, &calls)

	st := newChecker(t, url, "Apple macOS Ventura").Check(context.Background(), false)

	assert.Equal(t, Status{Required: true, Local: "13.3.1", Latest: "13.4"}, st)
	assert.Equal(t, 1, calls)
}

func TestCheck_IgnoresUnreadCatalogFields(t *testing.T) {
	var calls int
	body := `[{"id": 530, "name": "Apple macOS Ventura", "publisher": {"name": "Apple Inc."}, ` +
		`"currentVersion": "13.4 (22F66)", "lastModified": 1685577600}]`
	url := newCatalogServer(t, body, &calls)

	st := newChecker(t, url, "Apple macOS Ventura").Check(context.Background(), false)
	assert.Equal(t, Status{Required: true, Local: "13.3.1", Latest: "13.4"}, st)
}

func TestCheck_UpToDate(t *testing.T) {
	var calls int
	url := newCatalogServer(t, `[{"name": "Apple macOS Ventura", "currentVersion": "13.3.1 (22E261)"}]`, &calls)

	st := newChecker(t, url, "Apple macOS Ventura").Check(context.Background(), false)
	assert.False(t, st.Required)
	assert.Equal(t, "13.3.1", st.Latest)
}

func TestCheck_ReleaseMissing(t *testing.T) {
	var calls int
	url := newCatalogServer(t, catalogJSON, &calls)

	c := newChecker(t, url, "Apple macOS Sonoma")
	st := c.Check(context.Background(), false)

	assert.False(t, st.Required)
	assert.Equal(t, "", st.Latest)
	assert.Equal(t, "13.3.1", st.Local)

	_, err := c.LatestVersion(context.Background())
	require.ErrorIs(t, err, ErrReleaseNotFound)
}

func TestCheck_Demo(t *testing.T) {
	var calls int
	url := newCatalogServer(t, catalogJSON, &calls)

	st := newChecker(t, url, "Apple macOS Ventura").Check(context.Background(), true)

	assert.Equal(t, Status{Required: true, Local: "13.3.1", Latest: "19.1"}, st)
	assert.Zero(t, calls)
}

func TestCheck_CatalogErrors(t *testing.T) {
	t.Run("malformed json", func(t *testing.T) {
		var calls int
		url := newCatalogServer(t, `{"not": "an array"}`, &calls)

		st := newChecker(t, url, "Apple macOS Ventura").Check(context.Background(), false)
		assert.False(t, st.Required)
		assert.Empty(t, st.Latest)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		st := newChecker(t, url, "Apple macOS Ventura").Check(context.Background(), false)
		assert.False(t, st.Required)
		assert.Empty(t, st.Latest)
	})

	t.Run("not found status", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		t.Cleanup(srv.Close)

		_, err := newChecker(t, srv.URL, "Apple macOS Ventura").LatestVersion(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
	})
}

func TestCheck_StubbedFetch(t *testing.T) {
	prev := fetchCatalogJSON
	fetchCatalogJSON = func(context.Context, string) ([]byte, error) {
		return []byte(`[{"name": "Apple macOS Ventura", "currentVersion": "14.0"}]`), nil
	}
	t.Cleanup(func() { fetchCatalogJSON = prev })

	st := newChecker(t, "https://catalog.invalid/", "Apple macOS Ventura").Check(context.Background(), false)
	assert.True(t, st.Required)
	assert.Equal(t, "14.0", st.Latest)
}

func TestNewerThan(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"13.4", "13.3.1", true},
		{"13.4", "13.4", false},
		{"13.4", "13.4.0", false},
		{"13.10", "13.9", true},
		{"12.6.5", "13.0", false},
		{"13.4", "", false},
		{"garbage", "13.0", false},
		{"v14.1", "13.0", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NewerThan(tt.a, tt.b), "%s > %s", tt.a, tt.b)
	}
}

func TestSettingsURL(t *testing.T) {
	assert.Equal(t, SoftwareUpdateURL, SettingsURL("13.3.1"))
	assert.Equal(t, SoftwareUpdateURL, SettingsURL("14.0"))
	assert.Equal(t, LegacySoftwareUpdateURL, SettingsURL("12.6.5"))
	assert.Equal(t, LegacySoftwareUpdateURL, SettingsURL(""))
}

func TestMajorVersion(t *testing.T) {
	major, ok := MajorVersion("13.3.1")
	assert.True(t, ok)
	assert.Equal(t, 13, major)

	_, ok = MajorVersion("beta")
	assert.False(t, ok)
}
