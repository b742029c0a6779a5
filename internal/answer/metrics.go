package answer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	questionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidlytics_questions_total",
			Help: "Total number of questions answered, by outcome",
		},
		[]string{"outcome"},
	)

	questionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidlytics_question_duration_seconds",
			Help:    "End-to-end duration of answering a question",
			Buckets: prometheus.DefBuckets,
		},
	)

	intentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidlytics_intents_total",
			Help: "Total number of resolved intents, by catalog method",
		},
		[]string{"method"},
	)
)
