package config

import "time"

// Config holds all application configuration.
type Config struct {
	Document    string   `mapstructure:"document"`     // path of the tracked document
	Keywords    []string `mapstructure:"keywords"`     // search keywords, query order
	MaxEntries  int      `mapstructure:"max_entries"`  // news log cap, 0 disables
	Concurrency int      `mapstructure:"concurrency"`  // parallel keyword fetches
	Feed        Feed     `mapstructure:"feed"`
	Retry       Retry    `mapstructure:"retry"`
}

// Feed holds feed source configuration.
type Feed struct {
	Endpoint  string        `mapstructure:"endpoint"` // URL template with one %s for the keyword
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	Limit     int           `mapstructure:"limit"` // max entries taken per keyword
}

// Retry holds fetch retry configuration.
type Retry struct {
	MaxRetries      uint64        `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Document:    "README.md",
		Keywords:    []string{"ai", "machine learning", "data science"},
		MaxEntries:  50,
		Concurrency: 4,
		Feed: Feed{
			Endpoint:  "", // feed client falls back to the Google News search feed
			Timeout:   15 * time.Second,
			UserAgent: "newstrack/1.0",
			Limit:     5,
		},
		Retry: Retry{
			MaxRetries:      2,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
	}
}
