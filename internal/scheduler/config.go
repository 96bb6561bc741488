package scheduler

import "time"

// Config controls job cadences and per-job timeouts.
type Config struct {
	CollectInterval   time.Duration
	IndexInterval     time.Duration
	DowngradeInterval time.Duration

	CollectTimeout   time.Duration
	IndexTimeout     time.Duration
	DowngradeTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		CollectInterval:   4 * time.Hour,
		IndexInterval:     6 * time.Hour,
		DowngradeInterval: 24 * time.Hour,
		CollectTimeout:    2 * time.Minute,
		IndexTimeout:      time.Minute,
		DowngradeTimeout:  5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.CollectInterval <= 0 {
		c.CollectInterval = defaults.CollectInterval
	}
	if c.IndexInterval <= 0 {
		c.IndexInterval = defaults.IndexInterval
	}
	if c.DowngradeInterval <= 0 {
		c.DowngradeInterval = defaults.DowngradeInterval
	}
	if c.CollectTimeout <= 0 {
		c.CollectTimeout = defaults.CollectTimeout
	}
	if c.IndexTimeout <= 0 {
		c.IndexTimeout = defaults.IndexTimeout
	}
	if c.DowngradeTimeout <= 0 {
		c.DowngradeTimeout = defaults.DowngradeTimeout
	}
	return c
}
