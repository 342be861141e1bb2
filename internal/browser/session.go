// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Avi13113/Scraper/internal/config"
)

// readyStatePollInterval is how often WaitReady re-checks document.readyState.
const readyStatePollInterval = 250 * time.Millisecond

// Session represents one live browser tab driven over CDP.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	cfg    *config.Config

	onClose   func()
	closeOnce sync.Once
}

// newSession derives a tab context from the allocator.
func newSession(allocatorCtx context.Context, cfg *config.Config, logger *zap.Logger) (*Session, error) {
	sessionID := uuid.New().String()

	ctx, cancel := chromedp.NewContext(allocatorCtx)

	s := &Session{
		id:     sessionID,
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With(zap.String("session_id", sessionID)),
		cfg:    cfg,
	}
	return s, nil
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// run executes chromedp actions against the session target, honoring both the
// session lifecycle and the caller's context.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, opCancel := CombineContext(s.ctx, ctx)
	defer opCancel()

	if err := chromedp.Run(opCtx, actions...); err != nil {
		// Prefer the cancellation cause over chromedp's wrapped error.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.ctx.Err() != nil {
			return fmt.Errorf("session closed: %w", s.ctx.Err())
		}
		return err
	}
	return nil
}

// Navigate loads the given URL.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating", zap.String("url", url))
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation to '%s' failed: %w", url, err)
	}
	return nil
}

// WaitReady polls document.readyState until it reports "complete" or the timeout
// elapses.
func (s *Session) WaitReady(ctx context.Context, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyStatePollInterval)
	defer ticker.Stop()

	for {
		var state string
		if err := s.run(waitCtx, chromedp.Evaluate(`document.readyState`, &state)); err != nil {
			if waitCtx.Err() != nil {
				return fmt.Errorf("page did not reach readyState=complete within %s: %w", timeout, waitCtx.Err())
			}
			return fmt.Errorf("failed to read document.readyState: %w", err)
		}
		if state == "complete" {
			return nil
		}

		select {
		case <-waitCtx.Done():
			return fmt.Errorf("page did not reach readyState=complete within %s: %w", timeout, waitCtx.Err())
		case <-ticker.C:
		}
	}
}

// Sleep pauses for the given duration, respecting context cancellation.
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	return s.run(ctx, chromedp.Sleep(d))
}

// WaitVisible blocks until an element matching the CSS selector is visible, or
// the per-probe timeout elapses.
func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("element '%s' not visible within %s: %w", selector, timeout, err)
	}
	return nil
}

// Click waits for the element to be visible and clicks it.
func (s *Session) Click(ctx context.Context, selector string, timeout time.Duration) error {
	clickCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	action := chromedp.Tasks{
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	}
	if err := s.run(clickCtx, action); err != nil {
		return fmt.Errorf("failed to click '%s': %w", selector, err)
	}
	return nil
}

// ClearAndType clears the input matching the selector and types the text into it.
func (s *Session) ClearAndType(ctx context.Context, selector, text string) error {
	action := chromedp.Tasks{
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Focus(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	}
	if err := s.run(ctx, action); err != nil {
		return fmt.Errorf("failed to type into '%s': %w", selector, err)
	}
	return nil
}

// PressEnter dispatches an Enter key event to the focused element.
func (s *Session) PressEnter(ctx context.Context) error {
	if err := s.run(ctx, chromedp.KeyEvent(kb.Enter)); err != nil {
		return fmt.Errorf("failed to dispatch Enter key: %w", err)
	}
	return nil
}

// ScrollToBottom scrolls the window to the bottom of the document, forcing
// lazy-loaded content to materialize.
func (s *Session) ScrollToBottom(ctx context.Context) error {
	return s.run(ctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight);`, nil))
}

// ScrollToTop scrolls the window back to the top of the document.
func (s *Session) ScrollToTop(ctx context.Context) error {
	return s.run(ctx, chromedp.Evaluate(`window.scrollTo(0, 0);`, nil))
}

// HTML returns the full current document markup as rendered, not the original
// server response.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		node, err := dom.GetDocument().Do(c)
		if err != nil {
			return err
		}
		html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(c)
		return err
	}))
	if err != nil {
		return "", fmt.Errorf("failed to capture document markup: %w", err)
	}
	return html, nil
}

// Screenshot captures a full-page PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

// CurrentURL reports the document location.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return url, nil
}

// Close tears down the tab. Safe to call multiple times and on every exit path.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.logger.Info("Closing session.")
		s.cancel()
		if s.onClose != nil {
			s.onClose()
		}
	})
	return nil
}
