package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Avi13113/Scraper/internal/browser"
	"github.com/Avi13113/Scraper/internal/capture"
	"github.com/Avi13113/Scraper/internal/config"
	"github.com/Avi13113/Scraper/internal/handoff"
	"github.com/Avi13113/Scraper/internal/observability"
	"github.com/Avi13113/Scraper/internal/snapshot"
)

const shutdownTimeout = 15 * time.Second

// newCaptureCmd creates and configures the `capture` command.
func newCaptureCmd() *cobra.Command {
	captureCmd := &cobra.Command{
		Use:   "capture [query]",
		Short: "Searches the ticket vendor and saves the rendered results page",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their Viper keys so command-line values override
			// the config file and environment variables.
			if err := viper.BindPFlag("capture.max_retries", cmd.Flags().Lookup("retries")); err != nil {
				return err
			}
			if err := viper.BindPFlag("capture.output_dir", cmd.Flags().Lookup("output")); err != nil {
				return err
			}
			if err := viper.BindPFlag("capture.screenshot", cmd.Flags().Lookup("screenshot")); err != nil {
				return err
			}
			if err := viper.BindPFlag("capture.target_url", cmd.Flags().Lookup("target")); err != nil {
				return err
			}
			return viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Context is signal-aware; an operator interrupt cancels everything.
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// Re-resolve the config now that flags are bound.
			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return fmt.Errorf("failed to finalize config: %w", err)
			}

			var query string
			if len(args) == 1 {
				query = args[0]
			} else {
				query = readQuery(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			query = strings.TrimSpace(query)
			if query == "" {
				// Rejected before any browser session exists. Log-only: the
				// process still exits with the default success code.
				logger.Error("Search query cannot be empty")
				return nil
			}

			result, err := runCapture(ctx, cfg, logger, query)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Info("Operation cancelled by user")
					return nil
				}
				logger.Error("Failed to save the webpage. Please check the logs for details.", zap.Error(err))
				return nil
			}

			logger.Info("Capture complete",
				zap.String("html", result.HTMLPath),
				zap.String("screenshot", result.ScreenshotPath))

			// Downstream handoff: launched once per successful capture, exit
			// status observed but never propagated.
			if err := handoff.NewRunner(cfg.Crawler, logger).Run(ctx); err != nil {
				logger.Warn("Downstream crawler reported failure", zap.Error(err))
			}
			return nil
		},
	}

	captureCmd.Flags().IntP("retries", "r", 2, "Maximum retry attempts after the first failure. (Overrides config/env)")
	captureCmd.Flags().StringP("output", "o", "outputs", "Directory for saved snapshots. (Overrides config/env)")
	captureCmd.Flags().Bool("screenshot", true, "Capture a full-page screenshot alongside the HTML.")
	captureCmd.Flags().String("target", "https://www.ticketmaster.com", "Root URL of the ticket vendor.")
	captureCmd.Flags().Bool("headless", true, "Run the browser headless.")

	return captureCmd
}

// runCapture wires the browser manager, snapshot writer, and orchestrator for
// one capture run, guaranteeing browser teardown on every exit path.
func runCapture(ctx context.Context, cfg *config.Config, logger *zap.Logger, query string) (*snapshot.Result, error) {
	manager, err := browser.NewManager(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := manager.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Error during browser shutdown", zap.Error(err))
		}
	}()

	writer := snapshot.NewWriter(cfg.Capture, logger)
	factory := func(ctx context.Context) (capture.Page, error) {
		return manager.NewSession(ctx)
	}

	orchestrator := capture.New(cfg.Capture, logger, factory, writer)
	return orchestrator.Run(ctx, query)
}

// readQuery prompts the operator for a single query line on stdin.
func readQuery(in io.Reader, out io.Writer) string {
	fmt.Fprint(out, "\nEnter search query (Artist, Event or Venue): ")
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}
