package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const AppName = "coinwidget"

// Settings holds static runtime parameters. They are not edited from the UI;
// users who need to point the widget elsewhere drop a settings.yaml next to
// config.json.
type Settings struct {
	BinanceAPI        string `yaml:"binance_api"`
	FiatRateURL       string `yaml:"fiat_rate_url"`
	TradeURL          string `yaml:"trade_url"`
	QuoteSuffix       string `yaml:"quote_suffix"`
	RefreshIntervalMS int    `yaml:"refresh_interval_ms"`
	LogLevel          string `yaml:"log_level"`
	FontPath          string `yaml:"font_path"`
	LangPath          string `yaml:"lang_path"`
}

func DefaultSettings() Settings {
	return Settings{
		BinanceAPI:        "https://api.binance.com",
		FiatRateURL:       "https://api.exchangerate-api.com/v4/latest/USD",
		TradeURL:          "https://www.binance.com/en/trade/",
		QuoteSuffix:       "USDT",
		RefreshIntervalMS: 2500,
		LogLevel:          "info",
	}
}

func (s Settings) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshIntervalMS) * time.Millisecond
}

// Validate checks settings validity.
func (s Settings) Validate() error {
	if !strings.HasPrefix(s.BinanceAPI, "http://") && !strings.HasPrefix(s.BinanceAPI, "https://") {
		return fmt.Errorf("invalid binance_api: %q", s.BinanceAPI)
	}
	if !strings.HasPrefix(s.FiatRateURL, "http://") && !strings.HasPrefix(s.FiatRateURL, "https://") {
		return fmt.Errorf("invalid fiat_rate_url: %q", s.FiatRateURL)
	}
	if !strings.HasPrefix(s.TradeURL, "http://") && !strings.HasPrefix(s.TradeURL, "https://") {
		return fmt.Errorf("invalid trade_url: %q", s.TradeURL)
	}
	if s.QuoteSuffix == "" {
		return errors.New("quote_suffix must not be empty")
	}
	if s.RefreshIntervalMS <= 0 {
		return errors.New("refresh_interval_ms must be positive")
	}
	return nil
}

// LoadSettings reads path over the defaults. A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return DefaultSettings(), fmt.Errorf("%w: can't read settings", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("%w: can't unmarshal settings", err)
	}
	s.BinanceAPI = strings.TrimRight(s.BinanceAPI, "/")
	if !strings.HasSuffix(s.TradeURL, "/") {
		s.TradeURL += "/"
	}
	if err := s.Validate(); err != nil {
		return DefaultSettings(), fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// ConfigDir returns the directory holding config.json and settings.yaml.
// A config.json in the working directory wins (portable mode).
func ConfigDir() string {
	if _, err := os.Stat(ConfigFileName); err == nil {
		return "."
	}
	if root, err := os.UserConfigDir(); err == nil {
		return filepath.Join(root, AppName)
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("USERPROFILE"), AppName)
	}
	return "."
}
