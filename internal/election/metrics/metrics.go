package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ElectionsCreated prometheus.Counter
	ElectionsDeleted prometheus.Counter
	PartiesCreated   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		ElectionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_elections_created_total",
			Help: "Total number of elections created",
		}),
		ElectionsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_elections_deleted_total",
			Help: "Total number of elections deleted (cascade deletes included)",
		}),
		PartiesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_parties_created_total",
			Help: "Total number of candidate parties registered",
		}),
	}
}

func (m *Metrics) IncrementElectionsCreated() { m.ElectionsCreated.Inc() }
func (m *Metrics) IncrementElectionsDeleted() { m.ElectionsDeleted.Inc() }
func (m *Metrics) IncrementPartiesCreated()   { m.PartiesCreated.Inc() }
