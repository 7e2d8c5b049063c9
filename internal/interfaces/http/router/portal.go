package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/logger"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/interfaces/http/handler"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers bundles the portal's HTTP handlers
type Handlers struct {
	Orders    *handler.OrderHandler
	Shipments *handler.ShipmentHandler
	Suppliers *handler.SupplierHandler
	System    *handler.SystemHandler
}

// EngineConfig controls the middleware chain of the portal engine
type EngineConfig struct {
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	RequestTimeout time.Duration
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
	Tracing        middleware.TracingConfig
	Meter          metric.Meter // nil disables HTTP metrics
	Profiling      bool
	TrustedProxies []string
}

// NewEngine builds the gin engine with the portal middleware chain and routes
func NewEngine(cfg EngineConfig, h Handlers, log *zap.Logger) (*gin.Engine, error) {
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.SpanAttributes(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.HTTPMetrics(cfg.Meter, log),
		middleware.Profiling(cfg.Profiling),
	)
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	engine.Use(middleware.Timeout(cfg.RequestTimeout))

	engine.GET("/health", h.System.Health)

	r := NewRouter(engine)
	for _, group := range PortalRoutes(h) {
		r.Register(group)
	}
	r.Setup()

	return engine, nil
}

// PortalRoutes returns the /api/v1 resource groups
func PortalRoutes(h Handlers) []*DomainGroup {
	orders := NewDomainGroup("purchase-orders", "/purchase-orders").
		POST("", h.Orders.Create).
		POST("/bulk", h.Orders.BulkCreate).
		GET("", h.Orders.List).
		GET("/:id", h.Orders.GetByID).
		PUT("/:id/delivery-date", h.Orders.UpdateDeliveryDate).
		PUT("/:id/status", h.Orders.UpdateStatus).
		DELETE("", middleware.RequireRole(middleware.RoleAdmin), h.Orders.Purge)

	suppliers := NewDomainGroup("suppliers", "/suppliers").
		GET("/performance", h.Suppliers.Performance)

	shipments := NewDomainGroup("shipments", "/shipments").
		GET("/plans", h.Shipments.Plans).
		POST("/plans/accept", h.Shipments.AcceptPlan).
		GET("", h.Shipments.List).
		GET("/:id", h.Shipments.GetByID).
		POST("/:id/dispatch", h.Shipments.Dispatch)

	return []*DomainGroup{orders, suppliers, shipments}
}
