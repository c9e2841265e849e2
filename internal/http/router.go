// README: HTTP router registration.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"freightquote/internal/http/handlers"
	"freightquote/internal/http/middleware"
	"freightquote/internal/modules/booking"
)

type RouterDeps struct {
	Pricing        handlers.PricingService
	Admin          handlers.PricingAdmin
	Booking        *booking.Service
	Log            *zap.Logger
	RequestTimeout time.Duration
	Metrics        bool
}

func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(log), middleware.Logging(log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if deps.Metrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api", middleware.Timeout(deps.RequestTimeout))

	quotes := handlers.NewQuoteHandler(deps.Pricing, log)
	api.POST("/quotes", quotes.Quote)
	api.POST("/quotes/compare", quotes.Compare)
	api.POST("/route-options", quotes.RouteOptions)

	if deps.Admin != nil {
		admin := handlers.NewAdminHandler(deps.Admin, log)
		api.GET("/rules", admin.ListRules)
		api.POST("/rules/:id/active", admin.SetRuleActive)
		api.GET("/discounts", admin.ListDiscounts)
		api.POST("/discounts/:id/active", admin.SetDiscountActive)
		api.GET("/customers/:id/discounts", admin.CustomerDiscounts)
	}

	if deps.Booking != nil {
		bookings := handlers.NewBookingHandler(deps.Booking, log)
		api.POST("/bookings", bookings.Create)
		api.GET("/bookings/:id", bookings.Get)
		api.GET("/bookings/:id/events", bookings.Events)
		api.POST("/bookings/:id/confirm", bookings.Confirm)
		api.POST("/bookings/:id/dispatch", bookings.Dispatch)
		api.POST("/bookings/:id/deliver", bookings.Deliver)
		api.POST("/bookings/:id/cancel", bookings.Cancel)
		api.GET("/customers/:id/bookings", bookings.ListByCustomer)
	}

	return r
}
