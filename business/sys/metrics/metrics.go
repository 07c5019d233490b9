// Package metrics constructs the metrics the application will track.
package metrics

import (
	"expvar"
	"runtime"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This holds the single instance of the metrics value needed for
// collecting metrics. The expvar package is already based on a singleton
// for the different metrics that are registered with the package so there
// isn't much choice here.
var m *metrics

// metrics represents the set of metrics we gather. These fields are
// safe to be accessed concurrently thanks to expvar and prometheus. No
// extra abstraction is required.
type metrics struct {
	goroutines *expvar.Int
	requests   *expvar.Int
	errors     *expvar.Int
	panics     *expvar.Int

	tablesBuilt *prometheus.CounterVec
	chainSlots  prometheus.Histogram
	lookups     *prometheus.CounterVec
}

// init constructs the metrics value that will be used to capture metrics.
// The metrics value is stored in a package level variable since everything
// inside of expvar and prometheus is registered as a singleton.
func init() {
	m = &metrics{
		goroutines: expvar.NewInt("goroutines"),
		requests:   expvar.NewInt("requests"),
		errors:     expvar.NewInt("errors"),
		panics:     expvar.NewInt("panics"),

		tablesBuilt: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dispatch",
				Subsystem: "tables",
				Name:      "built_total",
				Help:      "Total number of dispatch tables built",
			},
			[]string{"satisfied"},
		),

		chainSlots: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "dispatch",
				Subsystem: "tables",
				Name:      "chain_slots",
				Help:      "Number of slots holding a collision chain per built table",
				Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
			},
		),

		lookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dispatch",
				Subsystem: "tables",
				Name:      "lookups_total",
				Help:      "Total number of selector lookups",
			},
			[]string{"result"},
		),
	}
}

// =============================================================================

// AddGoroutines refreshes the goroutine metric every 100 requests.
func AddGoroutines() int64 {
	if n := m.requests.Value(); n%100 == 0 {
		g := int64(runtime.NumGoroutine())
		m.goroutines.Set(g)
		return g
	}
	return 0
}

// AddRequests increments the request metric by 1.
func AddRequests() int64 {
	m.requests.Add(1)
	return m.requests.Value()
}

// AddErrors increments the errors metric by 1.
func AddErrors() int64 {
	m.errors.Add(1)
	return m.errors.Value()
}

// AddPanics increments the panics metric by 1.
func AddPanics() int64 {
	m.panics.Add(1)
	return m.panics.Value()
}

// TableBuilt records a built table and the number of chains it holds.
func TableBuilt(satisfied bool, chains int) {
	m.tablesBuilt.WithLabelValues(strconv.FormatBool(satisfied)).Inc()
	m.chainSlots.Observe(float64(chains))
}

// Lookup records a lookup and whether it reached a handler.
func Lookup(found bool) {
	result := "fallback"
	if found {
		result = "handler"
	}
	m.lookups.WithLabelValues(result).Inc()
}
