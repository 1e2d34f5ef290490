// internal/playback/metrics.go
package playback

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// playbacksStarted counts playbacks that advanced the generation.
	playbacksStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reflex_playbacks_started_total",
			Help: "Total number of scenario playbacks started",
		},
	)

	// playbacksFinished counts playbacks by outcome.
	playbacksFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reflex_playbacks_finished_total",
			Help: "Total number of scenario playbacks by outcome",
		},
		[]string{"outcome"},
	)

	// playbackDuration records how long playbacks ran until they settled.
	playbackDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reflex_playback_duration_seconds",
			Help:    "Duration of scenario playbacks by outcome",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160},
		},
		[]string{"outcome"},
	)

	// turnsRendered counts fully rendered turns.
	turnsRendered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reflex_turns_rendered_total",
			Help: "Total number of turns rendered by actor",
		},
		[]string{"actor"},
	)

	// stepsSkipped counts steps with an unrecognized actor.
	stepsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reflex_steps_skipped_total",
			Help: "Total number of steps skipped for an unknown actor",
		},
	)

	// snippetFailures counts snippet fetches rendered as warnings.
	snippetFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reflex_snippet_failures_total",
			Help: "Total number of snippet fetch failures",
		},
	)
)

func init() {
	prometheus.MustRegister(
		playbacksStarted,
		playbacksFinished,
		playbackDuration,
		turnsRendered,
		stepsSkipped,
		snippetFailures,
	)
}
