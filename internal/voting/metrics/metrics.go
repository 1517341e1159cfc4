package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	VotesCast       prometheus.Counter
	VotesRejected   *prometheus.CounterVec
	ResultsServed   prometheus.Counter
	ResultsCacheHit prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		VotesCast: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_votes_cast_total",
			Help: "Total number of ballots successfully recorded",
		}),
		VotesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ballotbox_votes_rejected_total",
			Help: "Total number of rejected cast-vote attempts by reason",
		}, []string{"reason"}),
		ResultsServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_results_projections_total",
			Help: "Total number of results projections computed",
		}),
		ResultsCacheHit: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_results_cache_hits_total",
			Help: "Total number of live-results reads served from cache",
		}),
	}
}

func (m *Metrics) IncrementVotesCast() {
	m.VotesCast.Inc()
}

func (m *Metrics) IncrementVotesRejected(reason string) {
	m.VotesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementResultsServed() {
	m.ResultsServed.Inc()
}

func (m *Metrics) IncrementResultsCacheHit() {
	m.ResultsCacheHit.Inc()
}
