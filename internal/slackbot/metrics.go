package slackbot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BuildInfo is set once at startup from linker-injected values.
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vidlytics_slack_build_info",
			Help: "Build information of the Slack bot",
		},
		[]string{"version", "commit", "date"},
	)

	messagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidlytics_slack_messages_total",
			Help: "Total number of Slack messages replied to",
		},
	)
)
