// internal/capture/orchestrator.go
package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Avi13113/Scraper/internal/config"
	"github.com/Avi13113/Scraper/internal/snapshot"
)

// Page is the browser surface the orchestrator drives. *browser.Session
// satisfies it; tests substitute fakes.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitReady(ctx context.Context, timeout time.Duration) error
	Sleep(ctx context.Context, d time.Duration) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	Click(ctx context.Context, selector string, timeout time.Duration) error
	ClearAndType(ctx context.Context, selector, text string) error
	PressEnter(ctx context.Context) error
	ScrollToBottom(ctx context.Context) error
	ScrollToTop(ctx context.Context) error
	Close(ctx context.Context) error

	snapshot.Source
}

// PageFactory opens a fresh page (tab) for one attempt.
type PageFactory func(ctx context.Context) (Page, error)

// Persister writes the rendered page to disk and verifies the artifacts.
type Persister interface {
	Persist(ctx context.Context, src snapshot.Source, query string) (*snapshot.Result, error)
}

// errPersistenceFailed marks a failed persistence step. Unlike session-level
// failures it is not retried: the page rendered, writing it just failed.
var errPersistenceFailed = errors.New("persistence failed")

// Orchestrator owns the full capture lifecycle, from navigation through
// persistence, inside a bounded retry loop with a fresh session per attempt
// and guaranteed teardown on every exit path.
type Orchestrator struct {
	cfg       config.CaptureConfig
	logger    *zap.Logger
	newPage   PageFactory
	persister Persister

	// limiter paces retry attempts. Burst 1 means the first attempt starts
	// immediately and each subsequent one waits out the retry delay.
	limiter *rate.Limiter
}

// New creates a capture orchestrator.
func New(cfg config.CaptureConfig, logger *zap.Logger, newPage PageFactory, persister Persister) *Orchestrator {
	limit := rate.Inf
	if cfg.RetryDelay > 0 {
		limit = rate.Every(cfg.RetryDelay)
	}
	return &Orchestrator{
		cfg:       cfg,
		logger:    logger.Named("capture"),
		newPage:   newPage,
		persister: persister,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Run performs up to MaxRetries+1 capture attempts and returns the result of
// the first success, or ErrNoResult once attempts are exhausted.
func (o *Orchestrator) Run(ctx context.Context, query string) (*snapshot.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	o.logger.Info("Starting search", zap.String("query", query))

	for attempt := 0; attempt <= o.cfg.MaxRetries; attempt++ {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("capture aborted: %w", err)
		}

		res, err := o.attempt(ctx, query, attempt)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("capture aborted: %w", ctx.Err())
		}
		if errors.Is(err, errPersistenceFailed) {
			// The page was captured but could not be written; retrying the
			// whole search will not fix the disk.
			o.logger.Error("Persistence failed, giving up.", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrNoResult, err)
		}

		o.logger.Error("Attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if attempt < o.cfg.MaxRetries {
			o.logger.Info("Retrying...", zap.Int("next_attempt", attempt+2))
		}
	}

	o.logger.Error("Max retries reached. Giving up.")
	return nil, ErrNoResult
}

// attempt runs one full capture pass on a fresh page. The page is always torn
// down before attempt returns, whatever the outcome.
func (o *Orchestrator) attempt(ctx context.Context, query string, attempt int) (*snapshot.Result, error) {
	page, err := o.newPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close(ctx)

	o.logger.Info("Loading target site",
		zap.String("url", o.cfg.TargetURL),
		zap.Int("attempt", attempt+1))

	if err := page.Navigate(ctx, o.cfg.TargetURL); err != nil {
		return nil, err
	}
	if err := page.WaitReady(ctx, o.cfg.PageLoadTimeout); err != nil {
		return nil, fmt.Errorf("%w: initial load: %v", ErrLoadTimeout, err)
	}
	// Additional wait for dynamic content.
	if err := page.Sleep(ctx, o.cfg.SettleDelay); err != nil {
		return nil, err
	}

	o.dismissConsent(ctx, page)

	searchInput, err := o.findSearchInput(ctx, page)
	if err != nil {
		return nil, err
	}

	o.logger.Info("Entering search query...")
	if err := page.ClearAndType(ctx, searchInput.Selector, query); err != nil {
		return nil, fmt.Errorf("failed to enter query: %w", err)
	}
	if err := page.PressEnter(ctx); err != nil {
		return nil, fmt.Errorf("failed to submit query: %w", err)
	}

	o.confirmResults(ctx, page)

	if err := page.WaitReady(ctx, o.cfg.PageLoadTimeout); err != nil {
		return nil, fmt.Errorf("%w: results page: %v", ErrLoadTimeout, err)
	}

	if err := o.forceLazyContent(ctx, page); err != nil {
		return nil, err
	}

	o.logger.Info("Saving webpage...")
	res, err := o.persister.Persist(ctx, page, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errPersistenceFailed, err)
	}

	o.logger.Info("Success! Files saved.",
		zap.String("html", res.HTMLPath),
		zap.String("screenshot", res.ScreenshotPath))
	return res, nil
}

// dismissConsent clicks the cookie-consent accept button if it shows up.
// Best-effort: absence of the dialog is the common case.
func (o *Orchestrator) dismissConsent(ctx context.Context, page Page) {
	if err := page.Click(ctx, ConsentButtonSelector, o.cfg.ConsentTimeout); err != nil {
		o.logger.Info("No cookie consent popup found")
		return
	}
	// Give the overlay a moment to animate out.
	_ = page.Sleep(ctx, time.Second)
}

// findSearchInput probes the ordered selector strategies until one yields a
// visible element.
func (o *Orchestrator) findSearchInput(ctx context.Context, page Page) (*Probe, error) {
	for _, probe := range SearchInputProbes(o.cfg.SearchProbeTimeout) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err := page.WaitVisible(ctx, probe.Selector, probe.Timeout); err != nil {
			o.logger.Debug("Search input probe missed",
				zap.String("probe", probe.Name),
				zap.String("selector", probe.Selector))
			continue
		}
		o.logger.Debug("Search input located", zap.String("probe", probe.Name))
		return &probe, nil
	}
	return nil, fmt.Errorf("%w: could not find search input", ErrElementNotFound)
}

// confirmResults probes for a rendered result container. A miss is logged but
// never aborts the run; the snapshot is saved anyway.
func (o *Orchestrator) confirmResults(ctx context.Context, page Page) {
	for _, probe := range ResultProbes(o.cfg.ResultProbeTimeout) {
		if ctx.Err() != nil {
			return
		}
		if err := page.WaitVisible(ctx, probe.Selector, probe.Timeout); err == nil {
			o.logger.Info("Search results found", zap.String("probe", probe.Name))
			return
		}
	}
	o.logger.Warn("Could not confirm results - will try to save anyway")
}

// forceLazyContent scrolls to the bottom and back so lazy-loaded listings
// materialize before the snapshot.
func (o *Orchestrator) forceLazyContent(ctx context.Context, page Page) error {
	o.logger.Info("Loading all content...")
	if err := page.ScrollToBottom(ctx); err != nil {
		return fmt.Errorf("failed to scroll to bottom: %w", err)
	}
	if err := page.Sleep(ctx, o.cfg.ScrollBottomPause); err != nil {
		return err
	}
	if err := page.ScrollToTop(ctx); err != nil {
		return fmt.Errorf("failed to scroll to top: %w", err)
	}
	return page.Sleep(ctx, o.cfg.ScrollTopPause)
}
