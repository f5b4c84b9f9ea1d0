package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PRCA_"

// Load layers defaults, the YAML file named by PRCA_CONFIG and PRCA_*
// environment variables, lowest precedence first. A .env file (or the one
// named by PRCA_ENV_FILE) is read into the environment first without
// overriding variables that are already set.
func Load() (*Config, error) {
	base := New()

	envFile := os.Getenv(envPrefix + "ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, envFile, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// PRCA_NAV_TIMEOUT -> nav_timeout
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	}
	if c.MinRows < 0 {
		return fmt.Errorf("%w: min_rows must be >= 0", ErrInvalidConfig)
	}

	timeouts := map[string]int64{
		"nav_timeout":      int64(c.NavTimeout),
		"selector_timeout": int64(c.SelectorTimeout),
		"consent_timeout":  int64(c.ConsentTimeout),
		"page_timeout":     int64(c.PageTimeout),
	}
	for name, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
		}
	}
	if c.SettleDelay < 0 || c.CategoryInterval < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidConfig)
	}
	return nil
}
