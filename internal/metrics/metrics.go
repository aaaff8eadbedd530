// Package metrics holds the prometheus collectors of the attendance service.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "school"

type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	checkIns         *prometheus.CounterVec
	geofenceDistance prometheus.Histogram
	attendanceSaves  *prometheus.CounterVec
	leaveTransitions *prometheus.CounterVec
	outboxPublished  *prometheus.CounterVec
}

// New registers every collector on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		checkIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "teacher_checkins_total",
			Help:      "Teacher check-in and check-out attempts by action and result code.",
		}, []string{"action", "result"}),
		geofenceDistance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geofence_distance_meters",
			Help:      "Distance between a check-in position and the school center.",
			Buckets:   []float64{10, 25, 50, 100, 200, 500, 1000, 5000, 25000},
		}),
		attendanceSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attendance_saves_total",
			Help:      "Roster attendance saves by mode and result.",
		}, []string{"mode", "result"}),
		leaveTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leave_transitions_total",
			Help:      "Leave workflow transitions by target state.",
		}, []string{"to"}),
		outboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_total",
			Help:      "Outbox publish attempts by topic and result.",
		}, []string{"topic", "result"}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.checkIns,
		m.geofenceDistance,
		m.attendanceSaves,
		m.leaveTransitions,
		m.outboxPublished,
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(seconds)
}

func (m *Metrics) CheckIn(action, result string) {
	if m == nil {
		return
	}
	m.checkIns.WithLabelValues(action, result).Inc()
}

func (m *Metrics) GeofenceDistance(meters float64) {
	if m == nil {
		return
	}
	m.geofenceDistance.Observe(meters)
}

func (m *Metrics) AttendanceSaved(mode, result string) {
	if m == nil {
		return
	}
	m.attendanceSaves.WithLabelValues(mode, result).Inc()
}

func (m *Metrics) LeaveTransition(to string) {
	if m == nil {
		return
	}
	m.leaveTransitions.WithLabelValues(to).Inc()
}

func (m *Metrics) OutboxPublished(topic, result string) {
	if m == nil {
		return
	}
	m.outboxPublished.WithLabelValues(topic, result).Inc()
}
