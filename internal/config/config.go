// Package config loads scraper settings from defaults, an optional YAML file and
// GAMINGREV_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/fetch"
	"github.com/spf13/viper"
)

// Config is the complete scraper configuration
type Config struct {
	OutputDir string        `mapstructure:"output_dir"`
	PriorDir  string        `mapstructure:"prior_dir"`
	DataDir   string        `mapstructure:"data_dir"` // run history
	HTTP      HTTPConfig    `mapstructure:"http"`
	Browser   BrowserConfig `mapstructure:"browser"`
	Log       LogConfig     `mapstructure:"log"`
}

// HTTPConfig holds document download settings
type HTTPConfig struct {
	Timeout          time.Duration `mapstructure:"timeout"`
	UserAgent        string        `mapstructure:"user_agent"`
	BrowserUserAgent string        `mapstructure:"browser_user_agent"`
}

// BrowserConfig holds the headless Chrome settings used by form-driven reports
type BrowserConfig struct {
	Headless bool          `mapstructure:"headless"`
	ExecPath string        `mapstructure:"exec_path"`
	Settle   time.Duration `mapstructure:"settle"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // "text" or "json"
}

// Load reads configuration. When path is empty the file is searched as
// gaming-revenue.yaml in the working directory and ~/.config/gaming-revenue;
// a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gaming-revenue")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(homeDir(), ".config", "gaming-revenue"))
	}

	v.SetEnvPrefix("GAMINGREV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.OutputDir = expandHome(cfg.OutputDir)
	cfg.PriorDir = expandHome(cfg.PriorDir)
	cfg.DataDir = expandHome(cfg.DataDir)
	return &cfg, nil
}

// Default returns the configuration with no file or environment overlay
func Default() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding defaults: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", ".")
	v.SetDefault("prior_dir", "Finished States")
	v.SetDefault("data_dir", "~/.local/share/gaming-revenue")

	v.SetDefault("http.timeout", fetch.DefaultTimeout)
	v.SetDefault("http.user_agent", fetch.DefaultUA)
	v.SetDefault("http.browser_user_agent", fetch.BrowserUA)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.settle", 3*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
