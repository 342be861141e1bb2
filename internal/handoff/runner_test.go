// internal/handoff/runner_test.go
package handoff

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Avi13113/Scraper/internal/config"
)

func TestRunSkipsWhenDisabled(t *testing.T) {
	r := NewRunner(config.CrawlerConfig{Enabled: false, Command: []string{"sh", "-c", "exit 1"}}, zap.NewNop())
	assert.NoError(t, r.Run(context.Background()))
}

func TestRunSkipsWhenCommandEmpty(t *testing.T) {
	r := NewRunner(config.CrawlerConfig{Enabled: true}, zap.NewNop())
	assert.NoError(t, r.Run(context.Background()))
}

func TestRunSuccessfulCrawler(t *testing.T) {
	r := NewRunner(config.CrawlerConfig{
		Enabled: true,
		Command: []string{"sh", "-c", "echo crawling; exit 0"},
	}, zap.NewNop())
	assert.NoError(t, r.Run(context.Background()))
}

func TestRunReportsCrawlerExitCode(t *testing.T) {
	r := NewRunner(config.CrawlerConfig{
		Enabled: true,
		Command: []string{"sh", "-c", "exit 3"},
	}, zap.NewNop())

	err := r.Run(context.Background())
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode())
}

func TestRunReportsMissingBinary(t *testing.T) {
	r := NewRunner(config.CrawlerConfig{
		Enabled: true,
		Command: []string{"/nonexistent/crawler-binary"},
	}, zap.NewNop())

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to launch crawler")
}

func TestRunHonoursTimeout(t *testing.T) {
	r := NewRunner(config.CrawlerConfig{
		Enabled: true,
		Command: []string{"sleep", "30"},
		Timeout: 100 * time.Millisecond,
	}, zap.NewNop())

	start := time.Now()
	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
