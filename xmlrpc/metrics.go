package xmlrpc

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "xmlrpc"

// result label values
const (
	resultOK        = "ok"
	resultFault     = "fault"
	resultConnect   = "connect"
	resultStatus    = "status"
	resultMalformed = "malformed"
	resultError     = "error"
)

var (
	clientCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "client",
			Name:      "calls_total",
			Help:      "Number of XML-RPC calls by method and result.",
		}, []string{"method", "result"})

	clientDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "client",
			Name:      "call_duration_seconds",
			Help:      "Duration of XML-RPC calls.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"method"})

	serverCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Number of received XML-RPC requests by result.",
		}, []string{"result"})
)

// RegisterMetrics registers the client and server metrics.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{clientCalls, clientDuration, serverCalls} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func resultOf(err error) string {
	var (
		fault     *MethodError
		connErr   *ConnectionError
		statusErr *HTTPStatusError
		malErr    *MalformedError
	)
	switch {
	case err == nil:
		return resultOK
	case errors.As(err, &fault):
		return resultFault
	case errors.As(err, &connErr):
		return resultConnect
	case errors.As(err, &statusErr):
		return resultStatus
	case errors.As(err, &malErr):
		return resultMalformed
	}
	return resultError
}

func observeCall(method string, start time.Time, err error) {
	clientCalls.WithLabelValues(method, resultOf(err)).Inc()
	clientDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
