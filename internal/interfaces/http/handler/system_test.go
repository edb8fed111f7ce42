package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/bizdesk/backend/internal/infrastructure/persistence"
	"github.com/bizdesk/backend/internal/interfaces/http/handler"
	"github.com/bizdesk/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestSystemHandler_Health(t *testing.T) {
	mock := testutil.NewMockDB(t)
	db := &persistence.Database{DB: mock.DB}

	decode := func(t *testing.T, tc *testutil.TestContext) handler.HealthResponse {
		var resp handler.HealthResponse
		require.NoError(t, json.Unmarshal(tc.ResponseBody(), &resp))
		return resp
	}

	t.Run("healthy", func(t *testing.T) {
		h := handler.NewSystemHandler("1.2.3", map[string]handler.Pinger{"database": db})
		testutil.RunHTTPTestCase(t, h.Health, testutil.HTTPTestCase{
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, tc *testutil.TestContext) {
				resp := decode(t, tc)
				assert.Equal(t, "healthy", resp.Status)
				assert.Equal(t, "1.2.3", resp.Version)
				assert.Equal(t, "up", resp.Checks["database"])
			},
		})
	})

	t.Run("dependency down", func(t *testing.T) {
		h := handler.NewSystemHandler("1.2.3", map[string]handler.Pinger{
			"database": db,
			"redis":    pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
		})
		testutil.RunHTTPTestCase(t, h.Health, testutil.HTTPTestCase{
			ExpectedStatus: http.StatusServiceUnavailable,
			Validate: func(t *testing.T, tc *testutil.TestContext) {
				resp := decode(t, tc)
				assert.Equal(t, "unhealthy", resp.Status)
				assert.Equal(t, "down", resp.Checks["redis"])
				assert.Equal(t, "up", resp.Checks["database"])
			},
		})
	})
}
