// internal/snapshot/manifest.go
package snapshot

import (
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Manifest is the machine-readable record of one capture, written next to the
// artifacts so the downstream crawler does not need to glob for them.
type Manifest struct {
	Query          string    `json:"query"`
	HTMLPath       string    `json:"html_path"`
	ScreenshotPath string    `json:"screenshot_path,omitempty"`
	MarkdownPath   string    `json:"markdown_path,omitempty"`
	FinalURL       string    `json:"final_url,omitempty"`
	CapturedAt     time.Time `json:"captured_at"`
}

// writeManifest serializes the capture record to disk.
func writeManifest(path string, res *Result) error {
	m := Manifest{
		Query:          res.Query,
		HTMLPath:       res.HTMLPath,
		ScreenshotPath: res.ScreenshotPath,
		MarkdownPath:   res.MarkdownPath,
		FinalURL:       res.FinalURL,
		CapturedAt:     res.CapturedAt,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a capture manifest from disk.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}
