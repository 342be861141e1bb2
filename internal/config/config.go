// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Capture CaptureConfig `mapstructure:"capture" yaml:"capture"`
	Crawler CrawlerConfig `mapstructure:"crawler" yaml:"crawler"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the Chrome instance driven over CDP.
type BrowserConfig struct {
	Headless bool `mapstructure:"headless" yaml:"headless"`
	// StartMaximized opens the window maximized when running headful.
	StartMaximized bool `mapstructure:"start_maximized" yaml:"start_maximized"`
	// DisableNotifications suppresses permission prompts that can cover the page.
	DisableNotifications bool `mapstructure:"disable_notifications" yaml:"disable_notifications"`
	// DisablePopupBlocking keeps vendor popups from stealing focus handling;
	// we only ever drive the initial tab.
	DisablePopupBlocking bool     `mapstructure:"disable_popup_blocking" yaml:"disable_popup_blocking"`
	IgnoreTLSErrors      bool     `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	UserAgent            string   `mapstructure:"user_agent" yaml:"user_agent"`
	Args                 []string `mapstructure:"args" yaml:"args"`
}

// CaptureConfig tunes the search-and-capture workflow.
type CaptureConfig struct {
	TargetURL string `mapstructure:"target_url" yaml:"target_url"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// MaxRetries is the number of additional attempts after the first one fails.
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`

	PageLoadTimeout time.Duration `mapstructure:"page_load_timeout" yaml:"page_load_timeout"`
	SettleDelay     time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	ConsentTimeout  time.Duration `mapstructure:"consent_timeout" yaml:"consent_timeout"`

	SearchProbeTimeout time.Duration `mapstructure:"search_probe_timeout" yaml:"search_probe_timeout"`
	ResultProbeTimeout time.Duration `mapstructure:"result_probe_timeout" yaml:"result_probe_timeout"`

	ScrollBottomPause time.Duration `mapstructure:"scroll_bottom_pause" yaml:"scroll_bottom_pause"`
	ScrollTopPause    time.Duration `mapstructure:"scroll_top_pause" yaml:"scroll_top_pause"`

	Screenshot bool `mapstructure:"screenshot" yaml:"screenshot"`
	Markdown   bool `mapstructure:"markdown" yaml:"markdown"`
	Manifest   bool `mapstructure:"manifest" yaml:"manifest"`
}

// CrawlerConfig describes the downstream crawler process launched after a
// successful capture. The crawler is a black box; we only observe its exit status.
type CrawlerConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
	Command []string `mapstructure:"command" yaml:"command"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "scraper")
	v.SetDefault("logger.log_file", "scraper.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.start_maximized", true)
	v.SetDefault("browser.disable_notifications", true)
	v.SetDefault("browser.disable_popup_blocking", true)
	v.SetDefault("browser.ignore_tls_errors", false)

	// -- Capture --
	v.SetDefault("capture.target_url", "https://www.ticketmaster.com")
	v.SetDefault("capture.output_dir", "outputs")
	v.SetDefault("capture.max_retries", 2)
	v.SetDefault("capture.retry_delay", "2s")
	v.SetDefault("capture.page_load_timeout", "30s")
	v.SetDefault("capture.settle_delay", "2s")
	v.SetDefault("capture.consent_timeout", "5s")
	v.SetDefault("capture.search_probe_timeout", "5s")
	v.SetDefault("capture.result_probe_timeout", "4s")
	v.SetDefault("capture.scroll_bottom_pause", "2s")
	v.SetDefault("capture.scroll_top_pause", "1s")
	v.SetDefault("capture.screenshot", true)
	v.SetDefault("capture.markdown", false)
	v.SetDefault("capture.manifest", true)

	// -- Crawler --
	v.SetDefault("crawler.enabled", true)
	v.SetDefault("crawler.command", []string{"./crawler"})
	v.SetDefault("crawler.timeout", "15m")
}

// NewDefaultConfig creates a configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Capture.TargetURL == "" {
		return fmt.Errorf("capture.target_url is a required configuration field")
	}
	if c.Capture.OutputDir == "" {
		return fmt.Errorf("capture.output_dir is a required configuration field")
	}
	if c.Capture.MaxRetries < 0 {
		return fmt.Errorf("capture.max_retries must not be negative")
	}
	if c.Capture.PageLoadTimeout <= 0 {
		return fmt.Errorf("capture.page_load_timeout must be a positive duration")
	}
	if c.Capture.SearchProbeTimeout <= 0 {
		return fmt.Errorf("capture.search_probe_timeout must be a positive duration")
	}
	if c.Crawler.Enabled && len(c.Crawler.Command) == 0 {
		return fmt.Errorf("crawler.command must not be empty when crawler.enabled is set")
	}
	return nil
}
