package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/pivolan/marathon_analyzer/domain/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCounters(t *testing.T) {
	m := New()
	m.RecordLoaded(10)
	m.RecordLoaded(5)
	m.RecordExcluded("time_sentinel", 3)
	m.RecordExcluded("time_sentinel", 1)
	m.RecordHTTP("/api/views/{name}", "200")

	assert.Equal(t, 15.0, testutil.ToFloat64(m.recordsLoaded))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.recordsExcluded.WithLabelValues("time_sentinel")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/views/{name}", "200")))
}

func TestRecordExclusions(t *testing.T) {
	m := New()
	m.RecordExclusions([]models.ExclusionCount{
		{Reason: models.ReasonAgeCategory, Count: 4},
		{Reason: models.ReasonTimeSentinel, Count: 2},
	})
	assert.Equal(t, 4.0, testutil.ToFloat64(m.recordsExcluded.WithLabelValues("age_category")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.recordsExcluded.WithLabelValues("time_sentinel")))
}

func TestObserveView(t *testing.T) {
	m := New()
	done := m.ObserveView("yearly")
	done()

	assert.Equal(t, 1, testutil.CollectAndCount(m.viewDuration))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordExcluded("age_category", 2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `marathon_records_excluded_total{reason="age_category"} 2`)
}
