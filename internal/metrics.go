package internal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ExportCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "csvexport_exports_total",
	Help: "The total number of exports by table and status",
}, []string{"table", "status"})

var ExportRows = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "csvexport_export_rows",
	Help:    "The number of rows serialized per export",
	Buckets: []float64{1, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
})

var ExportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "csvexport_export_duration_seconds",
	Help:    "The duration of export calls",
	Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
})
