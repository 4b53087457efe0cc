package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	newRouter := func(limit int64) *gin.Engine {
		router := gin.New()
		router.Use(BodyLimit(limit))
		router.POST("/pagar", func(c *gin.Context) {
			if _, err := io.ReadAll(c.Request.Body); err != nil {
				HandleValidationError(c, err)
				return
			}
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	t.Run("allows request within limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/pagar", bytes.NewReader([]byte(`{"monto":1}`)))
		assert.Equal(t, http.StatusOK, serve(newRouter(1024), req).Code)
	})

	t.Run("rejects declared length over limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/pagar", strings.NewReader(strings.Repeat("x", 200)))
		w := serve(newRouter(100), req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_PAYLOAD_TOO_LARGE")
	})

	t.Run("caps streamed bodies", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/pagar", strings.NewReader(strings.Repeat("x", 100)))
		req.ContentLength = -1
		w := serve(newRouter(50), req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("zero disables the limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/pagar", strings.NewReader(strings.Repeat("x", 5000)))
		assert.Equal(t, http.StatusOK, serve(newRouter(0), req).Code)
	})
}
