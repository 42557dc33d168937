package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMintCountsSaturation(t *testing.T) {
	InitMetrics()
	InitMetrics()

	before := testutil.ToFloat64(metrics().saturatedAmount)
	RecordMint(10, 5)
	assert.Equal(t, before+5, testutil.ToFloat64(metrics().saturatedAmount))
}

func TestRejectedMintByReason(t *testing.T) {
	before := testutil.ToFloat64(metrics().rejectedMintCount.WithLabelValues(string(MintUnauthorized)))
	RecordRejectedMint(MintUnauthorized)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics().rejectedMintCount.WithLabelValues(string(MintUnauthorized))))
}

func TestHandlerExposesLedgerMetrics(t *testing.T) {
	SetLedgerState(150, 2)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "w4t_ledger_total_supply 150")
}
