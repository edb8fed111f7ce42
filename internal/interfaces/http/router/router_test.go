package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.BasePath())

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r := NewRouter(engine, WithMiddleware(func(c *gin.Context) {
		c.Header("X-Api", "1")
		c.Next()
	}))
	g := NewDomainGroup("clients", "/clients")
	g.GET("", func(c *gin.Context) { c.String(http.StatusOK, "clients") })
	r.Register(g).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/clients")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "clients", w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-Api"))

	w = serve(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Api"), "API middleware must not wrap engine routes")
}

func TestDomainGroup(t *testing.T) {
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("invoices", "/invoices")
		g.GET("/:id", ok).POST("", ok).PUT("/:id", ok).PATCH("/:id", ok).DELETE("/:id", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		for _, tc := range []struct{ method, path string }{
			{http.MethodGet, "/api/v1/invoices/1"},
			{http.MethodPost, "/api/v1/invoices"},
			{http.MethodPut, "/api/v1/invoices/1"},
			{http.MethodPatch, "/api/v1/invoices/1"},
			{http.MethodDelete, "/api/v1/invoices/1"},
		} {
			w := serve(engine, tc.method, tc.path)
			assert.Equal(t, http.StatusOK, w.Code, "%s %s", tc.method, tc.path)
			assert.Equal(t, tc.method, w.Body.String())
		}
	})

	t.Run("applies group middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("quotes", "/quotes").Use(func(c *gin.Context) {
			c.Header("X-Group", "quotes")
			c.Next()
		})
		g.GET("", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/quotes")
		assert.Equal(t, "quotes", w.Header().Get("X-Group"))
	})

	t.Run("mounts subgroups under the parent prefix", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("tax", "/tax")
		g.Group("declarations", "/declarations").GET("", ok).POST("/generate", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/tax/declarations").Code)
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "/api/v1/tax/declarations/generate").Code)
		assert.Equal(t, []RouteInfo{
			{Method: http.MethodGet, Path: "/tax/declarations"},
			{Method: http.MethodPost, Path: "/tax/declarations/generate"},
		}, g.Routes())
	})
}
