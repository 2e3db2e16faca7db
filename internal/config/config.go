package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port              string `yaml:"port"`
		RequestTimeoutSec int    `yaml:"request_timeout_sec"`
	} `yaml:"server"`
	Quote struct {
		URL      string `yaml:"url"`
		SecID    string `yaml:"sec_id"`
		Unit     string `yaml:"unit"`
		Source   string `yaml:"source"`
		Timezone string `yaml:"timezone"`
	} `yaml:"quote"`
	History struct {
		URL      string `yaml:"url"`
		Contract string `yaml:"contract"`
	} `yaml:"history"`
	Cache struct {
		TTLSeconds   int    `yaml:"ttl_sec"`
		HistoryLimit int    `yaml:"history_limit"`
		SQLitePath   string `yaml:"sqlite_path"`
	} `yaml:"cache"`
	Schedule struct {
		RefreshMinutes int  `yaml:"refresh_minutes"`
		RunOnStart     bool `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("QUOTE_URL"); v != "" {
		cfg.Quote.URL = v
	}
	if v := os.Getenv("QUOTE_SEC_ID"); v != "" {
		cfg.Quote.SecID = v
	}
	if v := os.Getenv("HISTORY_URL"); v != "" {
		cfg.History.URL = v
	}
	if v := os.Getenv("HISTORY_CONTRACT"); v != "" {
		cfg.History.Contract = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("RUN_ON_START"); v == "true" {
		cfg.Schedule.RunOnStart = true
	}
	if v := os.Getenv("CACHE_TTL_SEC"); v != "" {
		var x int
		if _, err := fmt.Sscanf(v, "%d", &x); err == nil && x > 0 {
			cfg.Cache.TTLSeconds = x
		}
	}
	if v := os.Getenv("REFRESH_MINUTES"); v != "" {
		var x int
		if _, err := fmt.Sscanf(v, "%d", &x); err == nil && x > 0 {
			cfg.Schedule.RefreshMinutes = x
		}
	}

	// Defaults
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.RequestTimeoutSec == 0 {
		cfg.Server.RequestTimeoutSec = 10
	}
	if cfg.Quote.URL == "" {
		cfg.Quote.URL = "https://push2.eastmoney.com/api/qt/stock/get"
	}
	if cfg.Quote.SecID == "" {
		cfg.Quote.SecID = "118.Au99.99"
	}
	if cfg.Quote.Unit == "" {
		cfg.Quote.Unit = "CNY/gram"
	}
	if cfg.Quote.Source == "" {
		cfg.Quote.Source = "SGE Au99.99"
	}
	if cfg.Quote.Timezone == "" {
		cfg.Quote.Timezone = "Asia/Shanghai"
	}
	if cfg.History.URL == "" {
		cfg.History.URL = "https://www.sge.com.cn/sjzx/mrhq"
	}
	if cfg.History.Contract == "" {
		cfg.History.Contract = "Au99.99"
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 60
	}
	if cfg.Cache.HistoryLimit == 0 {
		cfg.Cache.HistoryLimit = 60
	}
	if cfg.Cache.SQLitePath == "" {
		cfg.Cache.SQLitePath = "data/gold_monitor.db"
	}
	if cfg.Schedule.RefreshMinutes == 0 {
		cfg.Schedule.RefreshMinutes = 60
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Quote.URL == "" {
		return fmt.Errorf("quote.url is required")
	}
	if c.Quote.SecID == "" {
		return fmt.Errorf("quote.sec_id is required")
	}
	if c.History.Contract == "" {
		return fmt.Errorf("history.contract is required")
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_sec must be positive")
	}
	if c.Cache.HistoryLimit <= 0 {
		return fmt.Errorf("cache.history_limit must be positive")
	}
	return nil
}
