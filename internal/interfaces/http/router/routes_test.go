package router

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/bizdesk/backend/internal/domain/identity"
	"github.com/bizdesk/backend/internal/infrastructure/auth"
	"github.com/bizdesk/backend/internal/interfaces/http/handler"
	"github.com/bizdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emptyHandlers satisfies the route table without services; tests only reach
// the permission checks in front of them
func emptyHandlers() Handlers {
	return Handlers{
		Auth:         &handler.AuthHandler{},
		User:         &handler.UserHandler{},
		Settings:     &handler.SettingsHandler{},
		Client:       &handler.ClientHandler{},
		Vendor:       &handler.VendorHandler{},
		Product:      &handler.ProductHandler{},
		Stock:        &handler.StockHandler{},
		Invoice:      &handler.InvoiceHandler{},
		Quote:        &handler.QuoteHandler{},
		Reminder:     &handler.ReminderHandler{},
		Subscription: &handler.SubscriptionHandler{},
		Market:       &handler.MarketHandler{},
		Expense:      &handler.ExpenseHandler{},
		Tax:          &handler.TaxHandler{},
		CashRegister: &handler.CashRegisterHandler{},
		Audit:        &handler.AuditHandler{},
		Presence:     &handler.PresenceHandler{},
		Backup:       &handler.BackupHandler{},
		Report:       &handler.ReportHandler{},
		Notification: &handler.NotificationHandler{},
	}
}

func apiEngine(role identity.Role) *gin.Engine {
	engine := gin.New()
	r := NewRouter(engine, WithMiddleware(func(c *gin.Context) {
		if role != "" {
			c.Set(middleware.JWTClaimsKey, &auth.Claims{
				TenantID:    uuid.NewString(),
				UserID:      uuid.NewString(),
				Role:        string(role),
				Permissions: identity.PermissionsFor(role),
			})
		}
		c.Next()
	}))
	r.Register(Registrars(APIGroups(emptyHandlers()))...).Setup()
	return engine
}

func TestAPIGroups_RouteTable(t *testing.T) {
	seen := map[string]bool{}
	for _, g := range APIGroups(emptyHandlers()) {
		for _, route := range g.Routes() {
			key := route.Method + " " + route.Path
			require.False(t, seen[key], "duplicate route %s", key)
			seen[key] = true
		}
	}

	for _, want := range []string{
		"POST /auth/register", "POST /auth/login", "POST /auth/refresh", "POST /auth/logout",
		"GET /auth/me", "PUT /auth/me/password",
		"PUT /users/:id/role", "POST /users/:id/reset-password", "GET /roles",
		"GET /settings", "PUT /settings",
		"POST /clients/:id/deactivate", "DELETE /vendors/:id", "POST /products/:id/activate",
		"GET /stock/levels", "GET /stock/movements", "POST /stock/adjust", "PUT /stock/:product_id/min",
		"POST /invoices/:id/payments", "GET /invoices/:id/pdf",
		"POST /quotes/:id/convert", "GET /quotes/:id/pdf",
		"POST /reminders/:id/send", "POST /billing/generate",
		"POST /tax/declarations/generate", "POST /tax/declarations/:id/submit",
		"POST /cash-registers/:id/close", "GET /cash-registers/:id/closings",
		"POST /subscriptions/:id/resume", "POST /markets/:id/complete", "PUT /expenses/:id",
		"GET /audit/logs", "POST /presence/heartbeat", "GET /presence/online", "POST /alerts/validation",
		"GET /backups/:id/download", "POST /forecast/revenue", "POST /notifications/email",
		"GET /reports/dashboard",
	} {
		assert.True(t, seen[want], "missing route %s", want)
	}
}

func TestAPIGroups_Permissions(t *testing.T) {
	tests := []struct {
		role   identity.Role
		method string
		path   string
		want   int
	}{
		{"", http.MethodGet, "/api/v1/clients", http.StatusUnauthorized},
		{identity.RoleViewer, http.MethodPost, "/api/v1/clients", http.StatusForbidden},
		{identity.RoleViewer, http.MethodDelete, "/api/v1/invoices/" + uuid.NewString(), http.StatusForbidden},
		{identity.RoleViewer, http.MethodGet, "/api/v1/audit/logs", http.StatusForbidden},
		{identity.RoleCashier, http.MethodPost, "/api/v1/invoices/" + uuid.NewString() + "/send", http.StatusForbidden},
		{identity.RoleCashier, http.MethodPost, "/api/v1/backups", http.StatusForbidden},
		{identity.RoleCashier, http.MethodPost, "/api/v1/tax/declarations/generate", http.StatusForbidden},
		{identity.RoleAccountant, http.MethodPost, "/api/v1/stock/receive", http.StatusForbidden},
		{identity.RoleManager, http.MethodPost, "/api/v1/users", http.StatusForbidden},
		{identity.RoleManager, http.MethodDelete, "/api/v1/backups/" + uuid.NewString(), http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%s %s as %q", tc.method, tc.path, tc.role), func(t *testing.T) {
			w := serve(apiEngine(tc.role), tc.method, tc.path)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestAPIGroups_AuthLimit(t *testing.T) {
	h := emptyHandlers()
	h.AuthLimit = func(c *gin.Context) { c.AbortWithStatus(http.StatusTooManyRequests) }
	engine := gin.New()
	NewRouter(engine).Register(Registrars(APIGroups(h))...).Setup()

	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, "/api/v1/auth/login").Code)
	// logout is not throttled and answers 401 without a session
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodPost, "/api/v1/auth/logout").Code)
}
