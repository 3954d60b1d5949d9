package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/event-invoicer/config"
	"github.com/yourusername/event-invoicer/middleware"
)

// NewRouter wires every endpoint. The invoice browser routes sit behind the
// password session.
func NewRouter(cfg *config.Config, service InvoiceService, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "event-invoicer",
		})
	})

	invoiceHandler := NewInvoiceHandler(service)
	authHandler := NewAuthHandler(cfg)

	api := router.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/invoices/preview", invoiceHandler.Preview)
		api.POST("/invoices", invoiceHandler.CreateInvoice)

		browser := api.Group("/invoices")
		browser.Use(middleware.JwtAuthMiddleware(cfg), middleware.RequireRole(middleware.RoleBrowser))
		{
			browser.GET("", invoiceHandler.ListInvoices)
			browser.GET("/:id", invoiceHandler.GetInvoice)
			browser.GET("/:id/pdf", invoiceHandler.DownloadDuplicate)
		}
	}

	return router
}
