package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/domain/backup"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_HTTP(t *testing.T) {
	m := New()

	done := m.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpInFlight))
	done(http.MethodGet, "/api/v1/invoices/:id", http.StatusOK)
	m.RequestStarted()(http.MethodGet, "", http.StatusNotFound)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/invoices/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestMetrics_Business(t *testing.T) {
	m := New()

	m.DocumentIssued("invoice")
	m.DocumentIssued("invoice")
	m.PaymentRecorded("card", decimal.RequireFromString("120.50"))
	m.EmailSent("invoice_sent", nil)
	m.EmailSent("invoice_sent", errors.New("smtp"))
	m.SetOnlineUsers(4)
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()
	m.ObserveJob("backup", 2*time.Second, nil)
	m.ObserveJob("backup", time.Second, errors.New("x"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.documentsIssued.WithLabelValues("invoice")))
	assert.Equal(t, 120.5, testutil.ToFloat64(m.paymentsAmount.WithLabelValues("card")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.emails.WithLabelValues("invoice_sent", "failed")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.presenceOnline))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.wsConnections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("backup", "false")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ForecastServed("baseline")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `bizdesk_forecast_requests_total{source="baseline"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestEventCounter(t *testing.T) {
	m := New()
	h := m.Events()
	tenantID := uuid.New()

	for _, typ := range []string{backup.EventTypeBackupCompleted, backup.EventTypeBackupFailed, backup.EventTypeBackupCompleted} {
		ev := shared.NewBaseDomainEvent(typ, backup.AggregateTypeBackup, uuid.New(), tenantID)
		require.NoError(t, h.Handle(context.Background(), &ev))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.backups.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backups.WithLabelValues("failed")))
}
