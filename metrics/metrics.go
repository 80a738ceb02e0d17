// Package metrics 目录树和投影的 Prometheus 指标
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 加载结果
const (
	LoadCompleted = "completed"
	LoadFailed    = "failed"
	LoadCancelled = "cancelled"
)

// Metrics 一棵树和它的投影使用的指标，nil 值可用，不记录任何内容
type Metrics struct {
	loadsStarted   prometheus.Counter
	loadsFinished  *prometheus.CounterVec
	loadDuration   prometheus.Histogram
	watchEvents    *prometheus.CounterVec
	watchDropped   *prometheus.CounterVec
	refreshes      prometheus.Counter
	sequenceLength prometheus.Gauge
	rootChanges    prometheus.Counter
}

// New 在 reg 上注册指标
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		loadsStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "explorer_loads_started_total",
			Help: "Directory enumerations started",
		}),
		loadsFinished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "explorer_loads_finished_total",
			Help: "Directory enumerations finished, by outcome",
		}, []string{"outcome"}),
		loadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "explorer_load_duration_seconds",
			Help:    "Directory enumeration duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		watchEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "explorer_watch_events_total",
			Help: "Watch events applied to the tree, by operation",
		}, []string{"op"}),
		watchDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "explorer_watch_events_dropped_total",
			Help: "Watch events that did not resolve to a loaded node, by operation",
		}, []string{"op"}),
		refreshes: f.NewCounter(prometheus.CounterOpts{
			Name: "explorer_projection_refreshes_total",
			Help: "Debounced projection refreshes",
		}),
		sequenceLength: f.NewGauge(prometheus.GaugeOpts{
			Name: "explorer_projection_length",
			Help: "Number of visible nodes in the projection",
		}),
		rootChanges: f.NewCounter(prometheus.CounterOpts{
			Name: "explorer_root_changes_total",
			Help: "Root path changes",
		}),
	}
}

func (m *Metrics) LoadStarted() {
	if m == nil {
		return
	}
	m.loadsStarted.Inc()
}

// LoadFinished 记录加载结果和耗时，取消的加载不计耗时
func (m *Metrics) LoadFinished(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.loadsFinished.WithLabelValues(outcome).Inc()
	if outcome != LoadCancelled {
		m.loadDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) WatchEvent(op string) {
	if m == nil {
		return
	}
	m.watchEvents.WithLabelValues(op).Inc()
}

// WatchDropped 记录无法对应到已加载节点的监听事件
func (m *Metrics) WatchDropped(op string) {
	if m == nil {
		return
	}
	m.watchDropped.WithLabelValues(op).Inc()
}

// Refreshed 记录一次防抖刷新及刷新后的序列长度
func (m *Metrics) Refreshed(length int) {
	if m == nil {
		return
	}
	m.refreshes.Inc()
	m.sequenceLength.Set(float64(length))
}

func (m *Metrics) SequenceLength(length int) {
	if m == nil {
		return
	}
	m.sequenceLength.Set(float64(length))
}

func (m *Metrics) RootChanged() {
	if m == nil {
		return
	}
	m.rootChanges.Inc()
}

// Handler 返回输出 g 中指标的 HTTP 处理器
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
