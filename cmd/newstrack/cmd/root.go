package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/mfenderov/newstrack/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "newstrack",
	Short: "newstrack: a keyword news log for a markdown document",
	Long: `newstrack fetches news-feed entries for configured keywords, drops
articles it has already seen, and rewrites the marker-bounded news section
of a markdown document with the merged, time-ordered result.

Commands:
  run     Execute one fetch-and-update pass against the document
  render  Print the document's news section from its persisted log`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	// Start with defaults
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/newstrack")
		viper.AddConfigPath(".")
	}

	// Environment variable overrides
	// NEWSTRACK_FEED_TIMEOUT -> feed.timeout
	viper.SetEnvPrefix("NEWSTRACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Explicitly bind nested env vars
	viper.BindEnv("document", "NEWSTRACK_DOCUMENT")
	viper.BindEnv("keywords", "NEWSTRACK_KEYWORDS")
	viper.BindEnv("max_entries", "NEWSTRACK_MAX_ENTRIES")
	viper.BindEnv("concurrency", "NEWSTRACK_CONCURRENCY")
	viper.BindEnv("feed.endpoint", "NEWSTRACK_FEED_ENDPOINT")
	viper.BindEnv("feed.timeout", "NEWSTRACK_FEED_TIMEOUT")
	viper.BindEnv("feed.user_agent", "NEWSTRACK_FEED_USER_AGENT")
	viper.BindEnv("feed.limit", "NEWSTRACK_FEED_LIMIT")
	viper.BindEnv("retry.max_retries", "NEWSTRACK_RETRY_MAX_RETRIES")

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	// Unmarshal into struct (merges config file with defaults)
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Handle special case: keywords as a comma-separated string from env
	if keywords := os.Getenv("NEWSTRACK_KEYWORDS"); keywords != "" {
		cfg.Keywords = strings.Split(keywords, ",")
	}
}
