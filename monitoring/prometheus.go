package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/mezonai/decash/logx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type CallStatus string

const (
	CallSucceeded CallStatus = "success"
	CallFailed    CallStatus = "failure"
)

type runtimePromMetrics struct {
	upUnixSeconds    prometheus.Gauge
	callCount        *prometheus.CounterVec
	callDuration     *prometheus.HistogramVec
	memosAppended    prometheus.Counter
	transferCount    prometheus.Counter
	transferredYocto prometheus.Counter
	sequence         prometheus.Gauge
	panicCount       prometheus.Counter
}

func newRuntimePromMetrics() *runtimePromMetrics {
	return &runtimePromMetrics{
		upUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "decash_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the runtime start",
			},
		),
		callCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decash_call_count",
				Help: "The total number of contract calls by method and outcome",
			},
			[]string{"method", "status"},
		),
		callDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "decash_call_duration_seconds",
				Help:    "Wall time of a contract call including commit",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"method"},
		),
		memosAppended: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "decash_memos_appended_count",
				Help: "The total number of committed memo records",
			},
		),
		transferCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "decash_native_transfer_count",
				Help: "The total number of committed native transfers",
			},
		),
		transferredYocto: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "decash_native_transferred_yocto",
				Help: "Approximate total of native value transferred, in yocto units",
			},
		),
		sequence: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "decash_call_sequence",
				Help: "Sequence number of the last committed call",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "decash_panic_count",
				Help: "The total number of recovered panics",
			},
		),
	}
}

var (
	metricsOnce    sync.Once
	runtimeMetrics *runtimePromMetrics
)

// InitMetrics registers the collectors; safe to call more than once
func InitMetrics() {
	metricsOnce.Do(func() {
		runtimeMetrics = newRuntimePromMetrics()
		runtimeMetrics.upUnixSeconds.SetToCurrentTime()
	})
}

func metrics() *runtimePromMetrics {
	InitMetrics()
	return runtimeMetrics
}

func RegisterMetrics(mux *http.ServeMux) {
	logx.Info("MONITORING", "Registering prometheus metrics")
	mux.Handle("/metrics", promhttp.Handler())
}

func RecordCall(method string, status CallStatus, duration time.Duration) {
	m := metrics()
	m.callCount.With(prometheus.Labels{"method": method, "status": string(status)}).Inc()
	m.callDuration.With(prometheus.Labels{"method": method}).Observe(duration.Seconds())
}

func IncreaseMemosAppended() {
	metrics().memosAppended.Inc()
}

func RecordTransfer(amount *uint256.Int) {
	m := metrics()
	m.transferCount.Inc()
	m.transferredYocto.Add(amount.Float64())
}

func SetSequence(seq uint64) {
	metrics().sequence.Set(float64(seq))
}

func IncreasePanicCount() {
	metrics().panicCount.Inc()
}
