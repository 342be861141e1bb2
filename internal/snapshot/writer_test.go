// internal/snapshot/writer_test.go
package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Avi13113/Scraper/internal/config"
)

// fakeSource is a canned page the writer can persist.
type fakeSource struct {
	html          string
	htmlErr       error
	screenshot    []byte
	screenshotErr error
	url           string
	urlErr        error
}

func (s *fakeSource) HTML(ctx context.Context) (string, error) { return s.html, s.htmlErr }
func (s *fakeSource) Screenshot(ctx context.Context) ([]byte, error) {
	return s.screenshot, s.screenshotErr
}
func (s *fakeSource) CurrentURL(ctx context.Context) (string, error) { return s.url, s.urlErr }

var fixedTime = time.Date(2026, 8, 25, 14, 30, 5, 0, time.UTC)

func newTestWriter(t *testing.T, cfg config.CaptureConfig) *Writer {
	t.Helper()
	w := NewWriter(cfg, zap.NewNop())
	w.now = func() time.Time { return fixedTime }
	return w
}

func resultPageSource() *fakeSource {
	return &fakeSource{
		html: `<html><head><title>Adele Tickets</title></head>` +
			`<body><div data-testid="event-card">show</div></body></html>`,
		screenshot: []byte{0x89, 0x50, 0x4e, 0x47},
		url:        "https://www.ticketmaster.com/search?q=Adele",
	}
}

func TestPersistWritesAllArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := config.CaptureConfig{
		OutputDir:  dir,
		Screenshot: true,
		Markdown:   true,
		Manifest:   true,
	}
	w := newTestWriter(t, cfg)

	res, err := w.Persist(context.Background(), resultPageSource(), "Adele Tour")
	require.NoError(t, err)
	require.NotNil(t, res)

	stem := "ticketmaster_Adele_Tour_20260825_143005"
	assert.Equal(t, filepath.Join(dir, stem+".html"), res.HTMLPath)
	assert.Equal(t, filepath.Join(dir, stem+".png"), res.ScreenshotPath)
	assert.Equal(t, filepath.Join(dir, stem+".md"), res.MarkdownPath)
	assert.Equal(t, filepath.Join(dir, stem+".json"), res.ManifestPath)
	assert.Equal(t, "https://www.ticketmaster.com/search?q=Adele", res.FinalURL)
	assert.Equal(t, fixedTime, res.CapturedAt)

	markup, err := os.ReadFile(res.HTMLPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(markup), "<!DOCTYPE html>\n"),
		"snapshot must carry the DOCTYPE preamble")
	assert.Contains(t, string(markup), "Adele Tickets")

	img, err := os.ReadFile(res.ScreenshotPath)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, img)

	rendition, err := os.ReadFile(res.MarkdownPath)
	require.NoError(t, err)
	assert.Contains(t, string(rendition), "show")
}

func TestPersistManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := config.CaptureConfig{OutputDir: dir, Screenshot: true, Manifest: true}
	w := newTestWriter(t, cfg)

	res, err := w.Persist(context.Background(), resultPageSource(), "Adele")
	require.NoError(t, err)
	require.NotEmpty(t, res.ManifestPath)

	got, err := ReadManifest(res.ManifestPath)
	require.NoError(t, err)

	want := &Manifest{
		Query:          "Adele",
		HTMLPath:       res.HTMLPath,
		ScreenshotPath: res.ScreenshotPath,
		FinalURL:       "https://www.ticketmaster.com/search?q=Adele",
		CapturedAt:     fixedTime,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestPersistScreenshotDisabled(t *testing.T) {
	dir := t.TempDir()
	cfg := config.CaptureConfig{OutputDir: dir, Screenshot: false}
	w := newTestWriter(t, cfg)

	res, err := w.Persist(context.Background(), resultPageSource(), "Adele")
	require.NoError(t, err)

	assert.Empty(t, res.ScreenshotPath)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, ".png", filepath.Ext(e.Name()))
	}
}

func TestPersistScreenshotFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	cfg := config.CaptureConfig{OutputDir: dir, Screenshot: true}
	w := newTestWriter(t, cfg)

	src := resultPageSource()
	src.screenshotErr = errors.New("target crashed")

	res, err := w.Persist(context.Background(), src, "Adele")
	require.Error(t, err)
	assert.Nil(t, res)
}

func TestPersistMarkupReadFailure(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter(t, config.CaptureConfig{OutputDir: dir})

	src := resultPageSource()
	src.htmlErr = errors.New("tab is gone")

	res, err := w.Persist(context.Background(), src, "Adele")
	require.Error(t, err)
	assert.Nil(t, res)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "nothing may be written when the markup cannot be read")
}

func TestPersistMissingFinalURLIsTolerated(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter(t, config.CaptureConfig{OutputDir: dir})

	src := resultPageSource()
	src.urlErr = errors.New("no location")

	res, err := w.Persist(context.Background(), src, "Adele")
	require.NoError(t, err)
	assert.Empty(t, res.FinalURL)
}

func TestVerifyHTMLDistinguishesMissingFromEmpty(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter(t, config.CaptureConfig{OutputDir: dir})

	err := w.verifyHTML(filepath.Join(dir, "never_written.html"))
	assert.ErrorIs(t, err, ErrSnapshotMissing)

	empty := filepath.Join(dir, "empty.html")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	err = w.verifyHTML(empty)
	assert.ErrorIs(t, err, ErrSnapshotEmpty)

	full := filepath.Join(dir, "full.html")
	require.NoError(t, os.WriteFile(full, []byte("<html></html>"), 0o644))
	assert.NoError(t, w.verifyHTML(full))
}

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"spaces", "Adele World Tour", "Adele_World_Tour"},
		{"slashes", "AC/DC", "AC_DC"},
		{"surrounding whitespace", "  Adele  ", "Adele"},
		{"plain", "Coldplay", "Coldplay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeQuery(tt.query))
		})
	}
}

func TestEnsureOutputsDirCreatesNestedPath(t *testing.T) {
	base := t.TempDir()
	nested := filepath.Join(base, "a", "b", "outputs")
	w := newTestWriter(t, config.CaptureConfig{OutputDir: nested})

	dir, err := w.ensureOutputsDir()
	require.NoError(t, err)
	assert.Equal(t, nested, dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
