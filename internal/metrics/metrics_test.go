package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-school/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.CheckIn("check_in", "ok")
	m.CheckIn("check_in", "OUT_OF_RANGE")
	m.CheckIn("check_in", "ok")
	m.GeofenceDistance(42)
	m.LeaveTransition("approved")

	n, err := testutil.GatherAndCount(reg, "school_geofence_distance_meters")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = testutil.GatherAndCount(reg, "school_teacher_checkins_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `school_teacher_checkins_total{action="check_in",result="ok"} 2`)
	assert.Contains(t, w.Body.String(), `school_leave_transitions_total{to="approved"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.CheckIn("check_in", "ok")
		m.AttendanceSaved("simple", "ok")
		m.ObserveHTTP("/x", "GET", 200, 0.1)
	})
}
