// internal/browser/manager_test.go
package browser

import (
	"context"
	"runtime"
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Avi13113/Scraper/internal/config"
)

// The allocator does not expose its flag set, so these tests assert on option
// counts: each toggle must contribute exactly its own options.

func newTestManager(cfg *config.Config) *Manager {
	return &Manager{
		logger: zap.NewNop(),
		cfg:    cfg,
	}
}

func TestBuildAllocatorOptionsExtendsDefaults(t *testing.T) {
	m := newTestManager(config.NewDefaultConfig())
	opts := m.buildAllocatorOptions()

	// Defaults plus headless, disable-gpu, ignore-certificate-errors,
	// disable-extensions, start-maximized, disable-notifications and
	// disable-popup-blocking at minimum.
	assert.Greater(t, len(opts), len(chromedp.DefaultExecAllocatorOptions)+6)
}

func TestBuildAllocatorOptionsRespectsToggles(t *testing.T) {
	base := config.NewDefaultConfig()
	base.Browser.StartMaximized = false
	base.Browser.DisableNotifications = false
	base.Browser.DisablePopupBlocking = false
	base.Browser.UserAgent = ""

	trimmed := newTestManager(base).buildAllocatorOptions()

	full := config.NewDefaultConfig()
	full.Browser.UserAgent = "Mozilla/5.0 (capture)"
	enriched := newTestManager(full).buildAllocatorOptions()

	// Each toggle contributes exactly one option.
	assert.Equal(t, len(trimmed)+4, len(enriched))
}

func TestBuildAllocatorOptionsParsesCustomArgs(t *testing.T) {
	cfg := config.NewDefaultConfig()
	without := newTestManager(cfg).buildAllocatorOptions()

	cfg.Browser.Args = []string{"--lang=en-US", "--mute-audio"}
	with := newTestManager(cfg).buildAllocatorOptions()

	assert.Equal(t, len(without)+2, len(with))
}

func TestBuildAllocatorOptionsContainerFlags(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("container flags are linux-only")
	}
	m := newTestManager(config.NewDefaultConfig())
	opts := m.buildAllocatorOptions()

	// no-sandbox, disable-dev-shm-usage, disable-setuid-sandbox on top of the
	// toggled set.
	assert.Greater(t, len(opts), len(chromedp.DefaultExecAllocatorOptions)+9)
}

func TestNewSessionRequiresInitializedManager(t *testing.T) {
	m := newTestManager(config.NewDefaultConfig())

	s, err := m.NewSession(context.Background())
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "not initialized")
}
