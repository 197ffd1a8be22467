// Package metrics defines prometheus metric types and provides convenience
// methods to add accounting to the netlink transaction engine.
//
// When defining new operations or metrics, these are helpful values to track:
//  - things coming into or go out of the system: requests, datagrams, acks.
//  - the success or error status of any of the above.
//  - the distribution of syscall latency.
package metrics

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyscallTimeHistogram tracks the latency in the send and recv syscalls.
	// It does NOT include the time to process the netlink messages.
	SyscallTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "netlinkx_syscall_duration_seconds",
			Help: "netlink syscall latency distribution",
			Buckets: []float64{
				0.00001, 0.0000125, 0.000016, 0.00002, 0.000025, 0.000032, 0.00004, 0.00005, 0.000063, 0.000079,
				0.0001, 0.000125, 0.00016, 0.0002, 0.00025, 0.00032, 0.0004, 0.0005, 0.00063, 0.00079,
				0.001, 0.00125, 0.0016, 0.002, 0.0025, 0.0032, 0.004, 0.005, 0.0063, 0.0079,
				0.01, 0.0125, 0.016, 0.02, 0.025, 0.032, 0.04, 0.05, 0.063, 0.079,
				0.1, 0.125, 0.16, 0.2,
			},
		},
		[]string{"op"})

	// MessageCount counts received netlink messages by what the engine did
	// with them.
	//
	// Provides metrics:
	//   netlinkx_messages_total
	// Example usage:
	//   metrics.MessageCount.WithLabelValues("parsed").Inc()
	MessageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netlinkx_messages_total",
			Help: "The total number of netlink messages received, by disposition.",
		}, []string{"disposition"})

	// ErrorCount measures the number of errors
	// Provides metrics:
	//    netlinkx_error_total
	// Example usage:
	//    metrics.ErrorCount.With(prometheus.Labels{"type": "foobar"}).Inc()
	ErrorCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netlinkx_error_total",
			Help: "The total number of errors encountered.",
		}, []string{"type"})

	// TransactionCount counts completed receive loops by result code.
	TransactionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netlinkx_transactions_total",
			Help: "The total number of netlink receive loops, by result.",
		}, []string{"result"})
)

func init() {
	log.Println("Prometheus metrics in netlinkx.metrics are registered.")
}
