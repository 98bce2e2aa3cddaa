package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kildevaeld/mocker/httpcontext"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatched labels requests that found no route, so stray paths cannot blow
// up the uri label.
const unmatched = "unmatched"

type Metrics struct {
	responseTime           prometheus.Histogram
	totalHttpRequestsToUri *prometheus.CounterVec
	totalHttpRequests      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		responseTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "response_time",
				Help:    "http response time.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		totalHttpRequestsToUri: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "total_http_requests_to_uri", Help: "http requests to uri"},
			[]string{"code", "uri", "method"},
		),
		totalHttpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "total_http_requests", Help: "http requests by code, and method"},
			[]string{"code", "method"},
		),
	}

	for _, c := range []prometheus.Collector{m.responseTime, m.totalHttpRequestsToUri, m.totalHttpRequests} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Collect records every request once the rest of the chain has decided on
// its status.
func (m *Metrics) Collect() httpcontext.MiddlewareHandler {
	return func(next httpcontext.HandlerFunc) httpcontext.HandlerFunc {
		return func(ctx *httpcontext.Context) (err error) {
			startTime := time.Now()

			defer func() {
				status := httpcontext.StatusOf(ctx, err)
				code := strconv.Itoa(status)
				method := ctx.Request().Method

				uri := ctx.Request().URL.EscapedPath()
				if status == http.StatusNotFound {
					uri = unmatched
				}

				m.totalHttpRequestsToUri.WithLabelValues(code, uri, method).Inc()
				m.totalHttpRequests.WithLabelValues(code, method).Inc()
				m.responseTime.Observe(time.Since(startTime).Seconds())
			}()

			return next(ctx)
		}
	}
}

// Handler serves the metrics gathered by g in the prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
