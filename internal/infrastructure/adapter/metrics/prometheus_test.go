package metrics

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_Counters(t *testing.T) {
	m := NewPrometheusMetrics()

	m.MutationApplied("spend", "atomic")
	m.MutationApplied("spend", "atomic")
	m.MutationApplied("receive", "fallback")
	m.FallbackUsed()
	m.CASConflict()
	m.CASConflict()
	m.PartialTransferFailure()
	m.AchievementUnlocked("streak_7")
	m.WithdrawalTransition("approved")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.mutations.WithLabelValues("spend", "atomic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("receive", "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.casConflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.partialTransferFailure))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.achievementsUnlocked.WithLabelValues("streak_7")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.withdrawalTransitions.WithLabelValues("approved")))
}

func TestPrometheusMetrics_Handler(t *testing.T) {
	m := NewPrometheusMetrics()
	m.MutationApplied("gift_sent", "atomic")
	m.WithdrawalTransition("completed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text, `gem_ledger_mutations_total{kind="gift_sent",path="atomic"} 1`))
	assert.True(t, strings.Contains(text, `gem_withdrawal_transitions_total{to="completed"} 1`))
	assert.True(t, strings.Contains(text, "go_goroutines"))
}

func TestPrometheusMetrics_RegisterDBStatsTwice(t *testing.T) {
	m := NewPrometheusMetrics()
	db := &sql.DB{}

	require.NoError(t, m.RegisterDBStats(db, "gem_ledger"))
	assert.Error(t, m.RegisterDBStats(db, "gem_ledger"))
}
