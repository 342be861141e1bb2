// internal/snapshot/writer.go
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Avi13113/Scraper/internal/config"
)

var (
	// ErrSnapshotMissing indicates the HTML file was never created on disk.
	ErrSnapshotMissing = errors.New("html snapshot was not created")
	// ErrSnapshotEmpty indicates the HTML file exists but has zero bytes.
	ErrSnapshotEmpty = errors.New("html snapshot is empty")
)

// filenameStemPrefix anchors every artifact name to the vendor being captured.
const filenameStemPrefix = "ticketmaster"

// timestampLayout gives second precision, filesystem safe.
const timestampLayout = "20060102_150405"

// Source is the minimal page surface the writer needs to persist a capture.
// *browser.Session satisfies it.
type Source interface {
	HTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	CurrentURL(ctx context.Context) (string, error)
}

// Result names the artifacts written for one successful capture. Immutable
// after creation; never read back by this program.
type Result struct {
	Query          string
	HTMLPath       string
	ScreenshotPath string // empty when screenshots are disabled
	MarkdownPath   string // empty when the markdown rendition is disabled
	ManifestPath   string // empty when the manifest is disabled
	FinalURL       string
	CapturedAt     time.Time
}

// Writer persists rendered pages into the configured outputs directory.
type Writer struct {
	cfg    config.CaptureConfig
	logger *zap.Logger

	// now is swapped in tests to pin the filename timestamp.
	now func() time.Time
}

// NewWriter creates a snapshot writer.
func NewWriter(cfg config.CaptureConfig, logger *zap.Logger) *Writer {
	return &Writer{
		cfg:    cfg,
		logger: logger.Named("snapshot"),
		now:    time.Now,
	}
}

// Persist writes the HTML snapshot (DOCTYPE-prefixed, post-render markup) plus
// the optional screenshot, markdown rendition, and manifest, then verifies the
// HTML file exists and is non-empty.
func (w *Writer) Persist(ctx context.Context, src Source, query string) (*Result, error) {
	outputsDir, err := w.ensureOutputsDir()
	if err != nil {
		return nil, err
	}

	capturedAt := w.now()
	stem := fmt.Sprintf("%s_%s_%s", filenameStemPrefix, sanitizeQuery(query), capturedAt.Format(timestampLayout))

	res := &Result{
		Query:      query,
		CapturedAt: capturedAt,
		HTMLPath:   filepath.Join(outputsDir, stem+".html"),
	}

	w.logger.Info("Saving HTML snapshot",
		zap.String("directory", outputsDir),
		zap.String("filename", filepath.Base(res.HTMLPath)))

	markup, err := src.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read page markup: %w", err)
	}
	if err := os.WriteFile(res.HTMLPath, []byte("<!DOCTYPE html>\n"+markup), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write HTML snapshot: %w", err)
	}

	// Screenshot and markdown rendition are independent; write them concurrently.
	g, gctx := errgroup.WithContext(ctx)

	if w.cfg.Screenshot {
		res.ScreenshotPath = filepath.Join(outputsDir, stem+".png")
		g.Go(func() error {
			img, err := src.Screenshot(gctx)
			if err != nil {
				return err
			}
			if err := os.WriteFile(res.ScreenshotPath, img, 0o644); err != nil {
				return fmt.Errorf("failed to write screenshot: %w", err)
			}
			w.logger.Info("Screenshot saved", zap.String("path", res.ScreenshotPath))
			return nil
		})
	}

	if w.cfg.Markdown {
		res.MarkdownPath = filepath.Join(outputsDir, stem+".md")
		g.Go(func() error {
			rendition, err := renderMarkdown(markup)
			if err != nil {
				// The markdown rendition is a convenience artifact; a conversion
				// failure must not sink the capture.
				w.logger.Warn("Markdown rendition failed", zap.Error(err))
				res.MarkdownPath = ""
				return nil
			}
			if err := os.WriteFile(res.MarkdownPath, []byte(rendition), 0o644); err != nil {
				w.logger.Warn("Failed to write markdown rendition", zap.Error(err))
				res.MarkdownPath = ""
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := w.verifyHTML(res.HTMLPath); err != nil {
		return nil, err
	}

	if finalURL, err := src.CurrentURL(ctx); err == nil {
		res.FinalURL = finalURL
	} else {
		w.logger.Debug("Could not determine final URL", zap.Error(err))
	}

	if summary, err := summarizeFile(res.HTMLPath); err == nil {
		w.logger.Info("Snapshot summary",
			zap.String("title", summary.Title),
			zap.Int("event_cards", summary.EventCards))
	} else {
		w.logger.Debug("Snapshot summary unavailable", zap.Error(err))
	}

	if w.cfg.Manifest {
		manifestPath := filepath.Join(outputsDir, stem+".json")
		if err := writeManifest(manifestPath, res); err != nil {
			w.logger.Warn("Failed to write capture manifest", zap.Error(err))
		} else {
			res.ManifestPath = manifestPath
		}
	}

	return res, nil
}

// ensureOutputsDir resolves and creates the outputs directory.
func (w *Writer) ensureOutputsDir() (string, error) {
	dir, err := homedir.Expand(w.cfg.OutputDir)
	if err != nil {
		return "", fmt.Errorf("failed to expand output directory '%s': %w", w.cfg.OutputDir, err)
	}
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to determine working directory: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create outputs directory '%s': %w", dir, err)
	}
	return dir, nil
}

// verifyHTML confirms the snapshot landed on disk with content, distinguishing
// "not created" from "created but empty".
func (w *Writer) verifyHTML(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		w.logger.Error("HTML file was not created", zap.String("path", path))
		return fmt.Errorf("%w: %s", ErrSnapshotMissing, path)
	}
	if info.Size() == 0 {
		w.logger.Warn("HTML file was created but is empty", zap.String("path", path))
		return fmt.Errorf("%w: %s", ErrSnapshotEmpty, path)
	}
	w.logger.Info("HTML file saved successfully",
		zap.String("path", path),
		zap.Float64("size_kb", float64(info.Size())/1024))
	return nil
}

// sanitizeQuery makes the query safe to embed in a filename.
func sanitizeQuery(query string) string {
	s := strings.TrimSpace(query)
	s = strings.ReplaceAll(s, " ", "_")
	// Path separators would break the stem.
	s = strings.ReplaceAll(s, string(os.PathSeparator), "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}
