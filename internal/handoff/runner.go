// internal/handoff/runner.go
package handoff

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/Avi13113/Scraper/internal/config"
)

// Runner launches the downstream crawler after a successful capture. The
// crawler is a black box: it gets no arguments, and its exit status is
// observed and logged but never enforced.
type Runner struct {
	cfg    config.CrawlerConfig
	logger *zap.Logger
}

// NewRunner creates a crawler process runner.
func NewRunner(cfg config.CrawlerConfig, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: logger.Named("handoff"),
	}
}

// Run starts the configured crawler command and waits for it to finish.
// Returned errors are informational; the caller's own outcome must not change.
func (r *Runner) Run(ctx context.Context) error {
	if !r.cfg.Enabled || len(r.cfg.Command) == 0 {
		r.logger.Debug("Downstream crawler disabled; skipping handoff.")
		return nil
	}

	runCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	r.logger.Info("Starting crawler process...", zap.Strings("command", r.cfg.Command))

	cmd := exec.CommandContext(runCtx, r.cfg.Command[0], r.cfg.Command[1:]...)
	output, err := cmd.CombinedOutput()
	if len(output) > 0 {
		r.logger.Debug("Crawler output", zap.ByteString("output", output))
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			r.logger.Error("Crawler process failed",
				zap.Int("exit_code", exitErr.ExitCode()),
				zap.Error(err))
			return fmt.Errorf("crawler exited with code %d: %w", exitErr.ExitCode(), err)
		}
		r.logger.Error("Failed to launch crawler process", zap.Error(err))
		return fmt.Errorf("failed to launch crawler: %w", err)
	}

	r.logger.Info("Crawler process completed successfully")
	return nil
}
