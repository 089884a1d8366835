package grant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// evaluations counts grant filter evaluations by permission and outcome
	// (match, nomatch, error).
	evaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentlake_grant_evaluations_total",
			Help: "Total number of grant filter evaluations",
		},
		[]string{"permission", "result"},
	)
	// cacheLookups counts compiled-filter cache lookups (hit, miss).
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentlake_grant_cache_lookups_total",
			Help: "Total number of grant filter cache lookups",
		},
		[]string{"result"},
	)
)
