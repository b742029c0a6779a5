package slackbot

import (
	"fmt"
	"os"
)

// Config holds the Slack bot settings. The bot runs in Socket Mode
// only, so both tokens are required.
type Config struct {
	BotToken    string
	AppToken    string
	MetricsAddr string
	Verbose     bool
}

// LoadFromEnv reads the tokens from the environment.
func LoadFromEnv(metricsAddr string, verbose bool) (*Config, error) {
	cfg := &Config{
		MetricsAddr: metricsAddr,
		Verbose:     verbose,
	}

	cfg.BotToken = os.Getenv("SLACK_BOT_TOKEN")
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("SLACK_BOT_TOKEN is required")
	}

	cfg.AppToken = os.Getenv("SLACK_APP_TOKEN")
	if cfg.AppToken == "" {
		return nil, fmt.Errorf("SLACK_APP_TOKEN is required")
	}

	return cfg, nil
}
