package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	c.String(http.StatusOK, c.FullPath())
}

func newRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serveRequest(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	return serveRequest(engine, newRequest(method, path, ""))
}

func TestNewRouter(t *testing.T) {
	t.Run("defaults to v1", func(t *testing.T) {
		engine := gin.New()
		r := NewRouter(engine)
		r.Register(NewDomainGroup("orders", "/orders").GET("", okHandler))
		r.Setup()

		w := serve(engine, http.MethodGet, "/api/v1/orders")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("custom version", func(t *testing.T) {
		engine := gin.New()
		r := NewRouter(engine, WithAPIVersion("v2"))
		r.Register(NewDomainGroup("orders", "/orders").GET("", okHandler))
		r.Setup()

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v2/orders").Code)
		assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/orders").Code)
	})
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		dg := NewDomainGroup("shipments", "/shipments")
		assert.Equal(t, "shipments", dg.Name())
		assert.Equal(t, "/shipments", dg.Prefix())
	})

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		dg := NewDomainGroup("orders", "/orders").
			GET("/:id", okHandler).
			POST("", okHandler).
			PUT("/:id", okHandler).
			DELETE("/:id", okHandler)
		dg.RegisterRoutes(engine.Group("/api"))

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "/api/orders").Code)
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			w := serve(engine, method, "/api/orders/42")
			assert.Equal(t, http.StatusOK, w.Code, method)
			assert.Equal(t, "/api/orders/:id", w.Body.String())
		}
	})

	t.Run("group middleware runs before route handlers", func(t *testing.T) {
		engine := gin.New()
		var order []string
		dg := NewDomainGroup("orders", "/orders").
			Use(func(c *gin.Context) { order = append(order, "group"); c.Next() }).
			GET("", func(c *gin.Context) { order = append(order, "route"); c.Status(http.StatusOK) })
		dg.RegisterRoutes(engine.Group(""))

		serve(engine, http.MethodGet, "/orders")
		assert.Equal(t, []string{"group", "route"}, order)
	})

	t.Run("per-route middleware", func(t *testing.T) {
		engine := gin.New()
		deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }
		dg := NewDomainGroup("orders", "/orders").
			GET("", okHandler).
			DELETE("", deny, okHandler)
		dg.RegisterRoutes(engine.Group(""))

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/orders").Code)
		assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodDelete, "/orders").Code)
	})
}
