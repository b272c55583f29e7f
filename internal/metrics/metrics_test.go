package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics(t *testing.T) {
	m := New()

	m.ObservePhase(types.StateEncoding, 3*time.Second)
	m.ObserveRun(types.RunResult{Encoder: types.EncoderVirtualDub, Encoded: true, ExitCode: 2, Frames: 120})
	m.ObserveRun(types.RunResult{EarlyAbort: true})
	m.ObserveRun(types.RunResult{Error: "boom"})
	m.IncEventsDropped()

	out := scrape(t, m)
	assert.Contains(t, out, `demorec_runs_total{outcome="completed"} 1`)
	assert.Contains(t, out, `demorec_runs_total{outcome="aborted"} 1`)
	assert.Contains(t, out, `demorec_runs_total{outcome="failed"} 1`)
	assert.Contains(t, out, `demorec_encoder_exit_code{encoder="virtualdub"} 2`)
	assert.Contains(t, out, `demorec_phase_duration_seconds_count{phase="encoding"} 1`)
	assert.Contains(t, out, "demorec_frames_total 120")
	assert.Contains(t, out, "demorec_events_dropped_total 1")
}
