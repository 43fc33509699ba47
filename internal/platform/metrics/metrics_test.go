package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"openF1Poll/internal/modules/telemetry/application/port"
)

func TestRecorderCountsOutcomes(t *testing.T) {
	recorder := NewRecorder()

	recorder.PollStarted("intervals")
	require.Equal(t, 1.0, testutil.ToFloat64(recorder.inflight.WithLabelValues("intervals")))

	recorder.PollFinished("intervals", port.OutcomeOK, 120*time.Millisecond, 20)
	recorder.PollStarted("intervals")
	recorder.PollFinished("intervals", port.OutcomeFetchError, time.Second, 0)

	require.Equal(t, 0.0, testutil.ToFloat64(recorder.inflight.WithLabelValues("intervals")))
	require.Equal(t, 1.0, testutil.ToFloat64(recorder.polls.WithLabelValues("intervals", port.OutcomeOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(recorder.polls.WithLabelValues("intervals", port.OutcomeFetchError)))
	require.Equal(t, 20.0, testutil.ToFloat64(recorder.records.WithLabelValues("intervals")))
}

func TestRecorderHandlerExposesMetrics(t *testing.T) {
	recorder := NewRecorder()
	recorder.PollStarted("drivers")
	recorder.PollFinished("drivers", port.OutcomeOK, 10*time.Millisecond, 3)

	rec := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	require.True(t, strings.Contains(body, `openf1_records_written_total{endpoint="drivers"} 3`), body)
	require.True(t, strings.Contains(body, "openf1_poll_latency_ms_bucket"), body)
}
