package metrics

import (
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsEndpoint = "/metrics"

// Register exposes the default prometheus registry on the router
func Register(router *httprouter.Router) {
	router.Handler("GET", metricsEndpoint, promhttp.Handler())
}
