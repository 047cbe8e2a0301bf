// Package metrics 定义进程内的 Prometheus 指标，注册到默认 Registry，由 /metrics 暴露。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 数据加载
	LoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "movierec_load_duration_seconds",
			Help:    "Duration of loading and indexing the rating data",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	LoadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_load_total",
			Help: "Total number of data load attempts by result",
		},
		[]string{"result"}, // "ok", "error"
	)

	DataSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "movierec_data_size",
			Help: "Size of the loaded rating data",
		},
		[]string{"kind"}, // "ratings", "titles", "users"
	)

	// 推荐
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movierec_query_duration_seconds",
			Help:    "Duration of engine queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	QueryResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movierec_query_results",
			Help:    "Number of items returned by engine queries",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
		[]string{"query"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_cache_requests_total",
			Help: "Result cache lookups by backend and outcome",
		},
		[]string{"backend", "outcome"}, // outcome: "hit", "miss", "error"
	)

	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movierec_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordLoad 记录一次数据加载。
func RecordLoad(d time.Duration, err error) {
	LoadDuration.Observe(d.Seconds())
	if err != nil {
		LoadTotal.WithLabelValues("error").Inc()
		return
	}
	LoadTotal.WithLabelValues("ok").Inc()
}

// RecordDataSize 记录已加载的数据规模。
func RecordDataSize(ratings, titles, users int) {
	DataSize.WithLabelValues("ratings").Set(float64(ratings))
	DataSize.WithLabelValues("titles").Set(float64(titles))
	DataSize.WithLabelValues("users").Set(float64(users))
}

// RecordQuery 记录一次引擎查询。
func RecordQuery(query string, d time.Duration, results int) {
	QueryDuration.WithLabelValues(query).Observe(d.Seconds())
	QueryResults.WithLabelValues(query).Observe(float64(results))
}

// RecordHTTP 记录一次 HTTP 请求。
func RecordHTTP(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
