package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(SubmissionsRejected.WithLabelValues("count_mismatch"))
	SubmissionsRejected.WithLabelValues("count_mismatch").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(SubmissionsRejected.WithLabelValues("count_mismatch")))

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `questionnaire_submissions_rejected_total{reason="count_mismatch"}`)
	assert.Contains(t, string(body), "questionnaire_http_inflight_requests")
}
