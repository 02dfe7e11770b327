package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	drinkMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coffeeshop_drink_mutations_total",
		Help: "Drinks created, updated or deleted",
	}, []string{"operation"}) // operation=create|update|delete

	authFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coffeeshop_auth_failures_total",
		Help: "Rejected requests to protected endpoints by error code",
	}, []string{"code"})

	jwksRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coffeeshop_jwks_refresh_total",
		Help: "Signing key set fetches by outcome",
	}, []string{"outcome"}) // outcome=success|failure
)

func RecordDrinkMutation(operation string) {
	drinkMutationsTotal.WithLabelValues(operation).Inc()
}

func RecordAuthFailure(code string) {
	authFailuresTotal.WithLabelValues(code).Inc()
}

func RecordJwksRefresh(outcome string) {
	jwksRefreshTotal.WithLabelValues(outcome).Inc()
}
