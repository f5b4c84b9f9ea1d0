package config

import (
	"time"

	"github.com/westhuggin/prca-standings-scraper/pkg/extractor"
)

type Config struct {
	LogLevel string `koanf:"log_level"`

	// BaseURL is the standings site root; the query is built per event.
	BaseURL string `koanf:"base_url"`

	// MinRows is the markup confidence threshold, a selector needs more
	// matches than this.
	MinRows int `koanf:"min_rows"`

	NavTimeout       time.Duration `koanf:"nav_timeout"`
	SelectorTimeout  time.Duration `koanf:"selector_timeout"`
	SettleDelay      time.Duration `koanf:"settle_delay"`
	ConsentTimeout   time.Duration `koanf:"consent_timeout"`
	PageTimeout      time.Duration `koanf:"page_timeout"`
	CategoryInterval time.Duration `koanf:"category_interval"`

	// ResponseKeywords filters which background responses are buffered.
	ResponseKeywords []string `koanf:"response_keywords"`
	WaitSelector     string   `koanf:"wait_selector"`

	DebugDir      string `koanf:"debug_dir"`
	DumpOnFailure bool   `koanf:"dump_on_failure"`

	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`
	NatsURL       string `koanf:"nats_url"`
	NatsSubject   string `koanf:"nats_subject"`
	MeiliURL      string `koanf:"meili_url"`
	MeiliKey      string `koanf:"meili_key"`
}

func New() *Config {
	return &Config{
		LogLevel:         "info",
		BaseURL:          "https://www.prorodeo.com",
		MinRows:          extractor.DefaultMinRows,
		NavTimeout:       45 * time.Second,
		SelectorTimeout:  15 * time.Second,
		SettleDelay:      3 * time.Second,
		ConsentTimeout:   5 * time.Second,
		PageTimeout:      2 * time.Minute,
		CategoryInterval: 2 * time.Second,
		ResponseKeywords: []string{"standing", "leaderboard", "ranking", "api", "graphql"},
		WaitSelector:     `table tbody tr, [role="row"], [class*="row"]`,
		DebugDir:         "debug",
		DumpOnFailure:    true,
		MongoDatabase:    "prca",
		NatsSubject:      "standings.snapshots",
	}
}
