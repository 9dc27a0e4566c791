package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kiosk"

var (
	once sync.Once

	evaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Count of kiosk status evaluations by result.",
		},
		[]string{"result"},
	)

	evaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Time to load and evaluate one kiosk.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
		},
	)

	closureReasons = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "closure_reasons_total",
			Help:      "Count of closure causes seen during evaluations.",
		},
		[]string{"reason"},
	)

	statusCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_cache_total",
			Help:      "Status cache lookups by result.",
		},
		[]string{"result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of API requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	catalogReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_reloads_total",
			Help:      "Count of catalog reloads by result.",
		},
		[]string{"result"},
	)

	kioskOpen = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "kiosk_open",
			Help:      "1 when the kiosk takes orders, 0 otherwise.",
		},
		[]string{"kiosk"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			evaluations,
			evaluationDuration,
			closureReasons,
			statusCache,
			httpRequests,
			catalogReloads,
			kioskOpen,
		)
	})
}

// ObserveEvaluation records one evaluation with its closure reasons.
func ObserveEvaluation(closed bool, reasons []string, took time.Duration) {
	result := "open"
	if closed {
		result = "closed"
	}
	evaluations.WithLabelValues(result).Inc()
	evaluationDuration.Observe(took.Seconds())
	for _, r := range reasons {
		closureReasons.WithLabelValues(r).Inc()
	}
}

func IncCacheHit() {
	statusCache.WithLabelValues("hit").Inc()
}

func IncCacheMiss() {
	statusCache.WithLabelValues("miss").Inc()
}

func IncCacheError() {
	statusCache.WithLabelValues("error").Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncCatalogReload(ok bool) {
	if ok {
		catalogReloads.WithLabelValues("success").Inc()
		return
	}
	catalogReloads.WithLabelValues("failure").Inc()
}

func SetKioskOpen(kioskID int64, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	kioskOpen.WithLabelValues(strconv.FormatInt(kioskID, 10)).Set(v)
}

// ForgetKiosk drops the gauge of a kiosk that left the catalog.
func ForgetKiosk(kioskID int64) {
	kioskOpen.DeleteLabelValues(strconv.FormatInt(kioskID, 10))
}
