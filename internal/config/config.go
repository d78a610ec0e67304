package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "PROPOSALBOARD_CONFIG"
	logLevelEnv       = "LOG_LEVEL"
	nanceURLEnv       = "NANCE_API_URL"
	snapshotHubEnv    = "SNAPSHOT_HUB_URL"
	snapshotAPIKeyEnv = "SNAPSHOT_API_KEY"
	listenEnv         = "PROPOSALBOARD_LISTEN"
	defaultSpaceEnv   = "PROPOSALBOARD_SPACE"
	defaultLimitEnv   = "PROPOSALBOARD_LIMIT"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Nance    NanceConfig    `yaml:"nance"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	HTTP     HTTPConfig     `yaml:"http"`
	Feed     FeedConfig     `yaml:"feed"`
	Watch    WatchConfig    `yaml:"watch"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// NanceConfig points at the proposal backend.
type NanceConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// SnapshotConfig points at the voting platform's GraphQL hub.
type SnapshotConfig struct {
	HubURL  string        `yaml:"hubUrl"`
	APIKey  string        `yaml:"apiKey"`
	Timeout time.Duration `yaml:"timeout"`
}

// HTTPConfig configures the JSON API.
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// FeedConfig holds list defaults used when a request leaves them out.
type FeedConfig struct {
	Space string `yaml:"space"`
	Limit int    `yaml:"limit"`
}

// WatchConfig sets how often the watch command refreshes.
type WatchConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(nanceURLEnv); v != "" {
		c.Nance.BaseURL = v
	}

	if v := os.Getenv(snapshotHubEnv); v != "" {
		c.Snapshot.HubURL = v
	}

	if v := os.Getenv(snapshotAPIKeyEnv); v != "" {
		c.Snapshot.APIKey = v
	}

	if v := os.Getenv(listenEnv); v != "" {
		c.HTTP.Listen = v
	}

	if v := os.Getenv(defaultSpaceEnv); v != "" {
		c.Feed.Space = v
	}

	if v := os.Getenv(defaultLimitEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Feed.Limit = n
		} else {
			log.Printf("config: ignoring %s=%q, want a positive integer", defaultLimitEnv, v)
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Nance.BaseURL != "" {
		base.Nance.BaseURL = override.Nance.BaseURL
	}
	if override.Nance.Timeout > 0 {
		base.Nance.Timeout = override.Nance.Timeout
	}

	if override.Snapshot.HubURL != "" {
		base.Snapshot.HubURL = override.Snapshot.HubURL
	}
	if override.Snapshot.APIKey != "" {
		base.Snapshot.APIKey = override.Snapshot.APIKey
	}
	if override.Snapshot.Timeout > 0 {
		base.Snapshot.Timeout = override.Snapshot.Timeout
	}

	if override.HTTP.Listen != "" {
		base.HTTP.Listen = override.HTTP.Listen
	}

	if override.Feed.Space != "" {
		base.Feed.Space = override.Feed.Space
	}
	if override.Feed.Limit > 0 {
		base.Feed.Limit = override.Feed.Limit
	}

	if override.Watch.Interval > 0 {
		base.Watch.Interval = override.Watch.Interval
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Nance:    NanceConfig{BaseURL: "https://api.nance.app", Timeout: 15 * time.Second},
		Snapshot: SnapshotConfig{HubURL: "https://hub.snapshot.org", Timeout: 20 * time.Second},
		HTTP:     HTTPConfig{Listen: ":8080"},
		Feed:     FeedConfig{Space: "juicebox", Limit: 15},
		Watch:    WatchConfig{Interval: time.Minute},
	}
}
