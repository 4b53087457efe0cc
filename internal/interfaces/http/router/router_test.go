package router

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/motoshop/backend/internal/infrastructure/config"
	"github.com/motoshop/backend/internal/interfaces/http/handler"
	"github.com/motoshop/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRouterSetup(t *testing.T) {
	t.Run("mounts at root by default", func(t *testing.T) {
		engine := gin.New()
		group := NewDomainGroup("test", "/test")
		group.GET("/ping/", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
		NewRouter(engine).Register(group).Setup()

		w := serve(engine, httptest.NewRequest(http.MethodGet, "/test/ping/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pong", w.Body.String())
	})

	t.Run("base path", func(t *testing.T) {
		engine := gin.New()
		group := NewDomainGroup("test", "/test")
		group.POST("/items", func(c *gin.Context) { c.Status(http.StatusCreated) })
		NewRouter(engine, WithBasePath("/api/")).Register(group).Setup()

		assert.Equal(t, http.StatusCreated, serve(engine, httptest.NewRequest(http.MethodPost, "/api/test/items", nil)).Code)
		assert.Equal(t, http.StatusNotFound, serve(engine, httptest.NewRequest(http.MethodPost, "/test/items", nil)).Code)
	})
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("pagos", "/pagos")
		assert.Equal(t, "pagos", g.Name())
		assert.Equal(t, "/pagos", g.Prefix())
	})

	t.Run("group middleware runs only for its routes", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test")
		sub := g.Group("inner", "/inner").Use(func(c *gin.Context) {
			c.Header("X-Inner", "1")
			c.Next()
		})
		sub.PATCH("/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })
		g.GET("/outer", func(c *gin.Context) { c.Status(http.StatusOK) })
		g.RegisterRoutes(engine.Group("/"))

		w := serve(engine, httptest.NewRequest(http.MethodPatch, "/test/inner/42", nil))
		assert.Equal(t, "42", w.Body.String())
		assert.Equal(t, "1", w.Header().Get("X-Inner"))

		w = serve(engine, httptest.NewRequest(http.MethodGet, "/test/outer", nil))
		assert.Empty(t, w.Header().Get("X-Inner"))
	})
}

func newCollectionsGroup() *DomainGroup {
	return NewCollectionsGroup(CollectionsHandlers{
		Installments: handler.NewInstallmentHandler(nil),
		Alerts:       handler.NewAlertHandler(nil),
		Reports:      handler.NewReportHandler(nil),
	})
}

func TestNewCollectionsGroup_Routes(t *testing.T) {
	var got []string
	for _, r := range newCollectionsGroup().Routes() {
		got = append(got, r.Method+" "+r.Path)
	}
	sort.Strings(got)

	assert.Equal(t, []string{
		"GET /pagos/alertas/",
		"GET /pagos/clientes-financiados/",
		"GET /pagos/clientes-financiados/exportar/",
		"GET /pagos/clientes-financiados/top-riesgo/",
		"GET /pagos/cuotas/",
		"GET /pagos/cuotas/:id/",
		"GET /pagos/resumen-cobros/",
		"PATCH /pagos/cuotas/:id/",
		"POST /pagos/alertas/:id/leida/",
		"POST /pagos/alertas/:id/resuelta/",
		"POST /pagos/alertas/generar/",
		"POST /pagos/cuotas/:id/pagar/",
		"POST /pagos/cuotas/generar/:ventaId/",
	}, got)
}

func TestNewCollectionsGroup_MountsWithoutConflicts(t *testing.T) {
	engine := gin.New()
	require.NotPanics(t, func() {
		NewRouter(engine).Register(newCollectionsGroup()).Setup()
	})
	assert.Len(t, engine.Routes(), 13)

	// malformed IDs are rejected before any service call
	w := serve(engine, httptest.NewRequest(http.MethodGet, "/pagos/cuotas/not-a-uuid/", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func testEngine(t *testing.T, httpCfg config.HTTPConfig) *gin.Engine {
	t.Helper()
	engine, stop, err := NewEngine(EngineOptions{
		ServiceName: "motoshop-cobros",
		HTTP:        httpCfg,
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(stop)

	sys := handler.NewSystemHandler("motoshop-cobros", "test")
	engine.GET("/health", sys.Health)
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, body)
	})
	return engine
}

func TestNewEngine(t *testing.T) {
	t.Run("standard headers", func(t *testing.T) {
		engine := testEngine(t, config.HTTPConfig{})

		w := serve(engine, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("cors preflight", func(t *testing.T) {
		engine := testEngine(t, config.HTTPConfig{CORSAllowOrigins: []string{"https://panel.motoshop.test"}})
		req := httptest.NewRequest(http.MethodOptions, "/pagos/cuotas/", nil)
		req.Header.Set("Origin", "https://panel.motoshop.test")

		w := serve(engine, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://panel.motoshop.test", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("body limit", func(t *testing.T) {
		engine := testEngine(t, config.HTTPConfig{MaxBodySize: 16})
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"referencia": "`+strings.Repeat("x", 64)+`"}`))
		req.Header.Set("Content-Type", "application/json")

		assert.Equal(t, http.StatusRequestEntityTooLarge, serve(engine, req).Code)
	})

	t.Run("rate limit", func(t *testing.T) {
		engine := testEngine(t, config.HTTPConfig{RateLimitEnabled: true, RateLimitRequests: 2, RateLimitWindow: time.Hour})

		for i := 0; i < 2; i++ {
			assert.Equal(t, http.StatusOK, serve(engine, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
		}
		w := serve(engine, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("bad trusted proxy", func(t *testing.T) {
		_, _, err := NewEngine(EngineOptions{HTTP: config.HTTPConfig{TrustedProxies: []string{"not-an-ip"}}, Logger: zap.NewNop()})
		assert.Error(t, err)
	})
}
