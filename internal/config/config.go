// Package config carries the pipeline's tunables as one immutable value.
// Components receive a Config (or the few fields they need) at construction
// time; nothing reads configuration ambiently, so tests can inject short
// timeouts and a zero delay window.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds every knob the resolution pipeline exposes.
type Config struct {
	// Cache
	CacheDir     string        `mapstructure:"cache_dir"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	CacheBackend string        `mapstructure:"cache_backend"` // file, sqlite, postgres
	CacheDSN     string        `mapstructure:"cache_dsn"`     // sqlite path or postgres DSN

	// Fetching
	Headless     bool          `mapstructure:"headless"`
	PageTimeout  time.Duration `mapstructure:"page_timeout"`
	SelectorWait time.Duration `mapstructure:"selector_wait"`
	FallbackWait time.Duration `mapstructure:"fallback_wait"`
	LoadAttempts int           `mapstructure:"load_attempts"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
	DelayMin     time.Duration `mapstructure:"delay_min"`
	DelayMax     time.Duration `mapstructure:"delay_max"`
	ProxyURL     string        `mapstructure:"proxy_url"`

	// Matching
	ConfidenceFloor float64 `mapstructure:"confidence_floor"`

	// Detail enrichment
	MaxPhotos int `mapstructure:"max_photos"`

	// Service
	ListenAddr   string `mapstructure:"listen_addr"`
	Workers      int    `mapstructure:"workers"`
	BatchLimit   int    `mapstructure:"batch_limit"`
	MetricsOn    bool   `mapstructure:"metrics_enabled"`
	StaticLoader bool   `mapstructure:"static_loader"` // plain HTTP instead of a browser
}

// Default returns the configuration mirroring the production scraper's
// constants: a week of cache, three load attempts, a sub-second politeness
// window.
func Default() Config {
	return Config{
		CacheDir:        "./cache/openrice",
		CacheTTL:        7 * 24 * time.Hour,
		CacheBackend:    "file",
		Headless:        true,
		PageTimeout:     15 * time.Second,
		SelectorWait:    5 * time.Second,
		FallbackWait:    time.Second,
		LoadAttempts:    3,
		RetryDelay:      2 * time.Second,
		DelayMin:        500 * time.Millisecond,
		DelayMax:        time.Second,
		ConfidenceFloor: 0.3,
		MaxPhotos:       3,
		ListenAddr:      ":8080",
		Workers:         2,
		BatchLimit:      10,
		MetricsOn:       true,
	}
}

// Load reads configuration from an optional yaml file and OPENRICE_-prefixed
// environment variables, layered over Default.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("openrice")
	v.AutomaticEnv()

	cfg := Default()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	} else {
		v.SetConfigName("openriced")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		// A missing default config file is fine.
		_ = v.ReadInConfig()
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("cache_dir", cfg.CacheDir)
	v.SetDefault("cache_ttl", cfg.CacheTTL)
	v.SetDefault("cache_backend", cfg.CacheBackend)
	v.SetDefault("headless", cfg.Headless)
	v.SetDefault("page_timeout", cfg.PageTimeout)
	v.SetDefault("selector_wait", cfg.SelectorWait)
	v.SetDefault("fallback_wait", cfg.FallbackWait)
	v.SetDefault("load_attempts", cfg.LoadAttempts)
	v.SetDefault("retry_delay", cfg.RetryDelay)
	v.SetDefault("delay_min", cfg.DelayMin)
	v.SetDefault("delay_max", cfg.DelayMax)
	v.SetDefault("confidence_floor", cfg.ConfidenceFloor)
	v.SetDefault("max_photos", cfg.MaxPhotos)
	v.SetDefault("listen_addr", cfg.ListenAddr)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("batch_limit", cfg.BatchLimit)
	v.SetDefault("metrics_enabled", cfg.MetricsOn)
}
