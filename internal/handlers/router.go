package handlers

import (
	"net/http"
	"time"

	"games-ticketing-platform/internal/middleware"
	"games-ticketing-platform/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig carries the cross-cutting settings the router needs
type RouterConfig struct {
	JWTSecret string
	Env       string
}

// NewRouter builds the HTTP API. Catalog browsing and ticket verification
// are public; the cart, payment and admin surfaces require a bearer token.
func NewRouter(
	cfg RouterConfig,
	offers services.OfferProvider,
	carts services.CartProvider,
	payments services.PaymentProvider,
	checkout services.CheckoutProvider,
	tickets services.TicketProvider,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	offerHandler := NewOfferHandler(offers, logger)
	cartHandler := NewCartHandler(carts, logger)
	paymentHandler := NewPaymentHandler(payments, checkout, logger)
	ticketHandler := NewTicketHandler(tickets, logger)

	scanLimiter := middleware.NewScanRateLimiter(30, time.Minute)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	v1.GET("/offers", offerHandler.ListOffers)
	v1.GET("/offers/:id", offerHandler.GetOffer)
	v1.GET("/tickets/verify/:key", scanLimiter.Middleware(), ticketHandler.VerifyTicket)

	authed := v1.Group("")
	authed.Use(middleware.RequireAuth(cfg.JWTSecret))
	{
		authed.GET("/cart", cartHandler.GetCart)
		authed.DELETE("/cart", cartHandler.ClearCart)
		authed.POST("/cart/lines", cartHandler.AddLine)
		authed.PUT("/cart/lines/:offerID", cartHandler.UpdateLine)
		authed.DELETE("/cart/lines/:offerID", cartHandler.RemoveLine)
		authed.POST("/cart/checkout", cartHandler.Checkout)

		authed.POST("/checkout", paymentHandler.CompleteCheckout)
		authed.POST("/payments", paymentHandler.SubmitPayment)
		authed.GET("/payments/:id", paymentHandler.GetPayment)
		authed.GET("/payments/:id/transaction", paymentHandler.GetTransaction)

		authed.GET("/tickets", ticketHandler.ListMyTickets)
		authed.POST("/tickets/:key/scan", scanLimiter.Middleware(), ticketHandler.ScanTicket)

		admin := authed.Group("/admin")
		{
			admin.POST("/offers", offerHandler.CreateOffer)
			admin.PUT("/offers/:id", offerHandler.UpdateOffer)
			admin.DELETE("/offers/:id", offerHandler.WithdrawOffer)
			admin.POST("/offers/expire", offerHandler.ExpireOffers)
			admin.GET("/offers/sales", offerHandler.GetSales)
		}
	}

	return router
}
