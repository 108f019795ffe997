package counters

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cdrCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cdr",
	Name:      "built_count",
	Help:      "Total number of built CDRs.",
}, []string{"location", "currency"})

var cdrErrorCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cdr",
	Name:      "build_error_count",
	Help:      "Total number of failed CDR builds by error kind.",
}, []string{"kind"})

var warningCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cdr",
	Name:      "warning_count",
	Help:      "Total number of warnings raised while building CDRs.",
}, []string{"location"})

var energyCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cdr",
	Name:      "energy_kwh",
	Help:      "Energy billed in CDRs, kWh.",
}, []string{"location"})

var revenueCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cdr",
	Name:      "revenue",
	Help:      "Total cost excluding VAT billed in CDRs.",
}, []string{"location", "currency"})

var periodsHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "cdr",
	Name:      "charging_periods",
	Help:      "Number of charging periods per CDR.",
	Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
})

var pushCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpi",
	Name:      "cdr_push_count",
	Help:      "CDR pushes to the eMSP by result.",
}, []string{"result"})

func CountCdr(location, currency string, energy, cost float64, periods, warnings int) {
	if len(location) == 0 || len(currency) == 0 {
		return
	}
	cdrCounter.With(prometheus.Labels{"location": location, "currency": currency}).Inc()
	if energy > 0 {
		energyCounter.With(prometheus.Labels{"location": location}).Add(energy)
	}
	if cost > 0 {
		revenueCounter.With(prometheus.Labels{"location": location, "currency": currency}).Add(cost)
	}
	if warnings > 0 {
		warningCounter.With(prometheus.Labels{"location": location}).Add(float64(warnings))
	}
	periodsHistogram.Observe(float64(periods))
}

func CountBuildError(kind string) {
	if len(kind) == 0 {
		kind = "internal"
	}
	cdrErrorCounter.With(prometheus.Labels{"kind": kind}).Inc()
}

func CountPush(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	pushCounter.With(prometheus.Labels{"result": result}).Inc()
}
