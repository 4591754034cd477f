package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Monkachunkaa/tote-storage-api/internal/adapter/http/middleware"
	"github.com/Monkachunkaa/tote-storage-api/internal/logging"
)

func NewRouter(ph *PaymentHandler, poh *PortalHandler, eh *EmailHandler) *gin.Engine {
	r := gin.New()
	// CORS first so 4xx/5xx and preflight responses carry the headers.
	r.Use(middleware.CORS(), gin.Recovery(), middleware.MetricsMiddleware())

	logging.Init("tote-api", "./logs/app.log")
	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		logging.From(c).Info("health check")
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.POST("/create-payment-intent", ph.CreatePaymentIntent)
		v1.POST("/create-subscription", ph.CreateSubscription)
		v1.POST("/customer-portal", poh.OpenPortal)
		v1.POST("/send-order-email", eh.SendOrderEmail)
		v1.POST("/send-contact-email", eh.SendContactEmail)
	}

	return r
}
