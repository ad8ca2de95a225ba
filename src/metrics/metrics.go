// Package metrics exposes normalization outcome counters.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RecordsNormalized = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chainfolio_records_normalized_total",
		Help: "Raw explorer records normalized into canonical transactions.",
	}, []string{"chain"})

	RecordsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chainfolio_records_rejected_total",
		Help: "Raw explorer records rejected for missing identity.",
	}, []string{"chain"})

	UnclassifiedIntents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chainfolio_unclassified_intents_total",
		Help: "Normalized transactions left without a tax tag.",
	}, []string{"chain"})
)

func init() {
	prometheus.MustRegister(RecordsNormalized, RecordsRejected, UnclassifiedIntents)
}
