package reaction

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// reactionsTotal counts reconciled reactions by kind and server verdict.
var reactionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "campusfeed_reactions_total",
		Help: "Total reactions reconciled, by kind and gateway action",
	},
	[]string{"kind", "action"},
)
