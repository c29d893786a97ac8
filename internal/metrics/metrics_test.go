package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest(http.MethodGet, "/api/projects", http.StatusOK, 20*time.Millisecond)
	c.RecordHTTPRequest(http.MethodGet, "/api/projects", http.StatusOK, 40*time.Millisecond)
	c.RecordTaskMoved("TODO", "DOING")
	c.RecordCreated("project")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/api/projects", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.taskMoves.WithLabelValues("TODO", "DOING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.created.WithLabelValues("project")))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordCreated("task")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `flowspace_entities_created_total{entity="task"} 1`))
}

func TestNopSatisfiesRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.RecordTaskMoved("TODO", "DONE")
}
