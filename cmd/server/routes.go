package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"campus-market.backend/internal/interfaces/http/handlers"
	"campus-market.backend/internal/interfaces/http/middleware"
)

const (
	serviceName    = "campus-market-backend"
	serviceVersion = "0.1.0"
)

type routeDeps struct {
	listingHandler *handlers.ListingHandler
	orderHandler   *handlers.OrderHandler
	walletHandler  *handlers.WalletHandler
	accountHandler *handlers.AccountHandler
	paymentHandler *handlers.PaymentHandler
	adminHandler   *handlers.AdminHandler
	authMiddleware gin.HandlerFunc
	accessGate     gin.HandlerFunc
	webhookAuth    gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Listing routes (reads are public)
		listings := v1.Group("/listings")
		{
			listings.GET("", d.listingHandler.ListListings)
			listings.GET("/:id", d.listingHandler.GetListing)
			listings.POST("", d.authMiddleware, d.accessGate, d.listingHandler.CreateListing)
			listings.PUT("/:id", d.authMiddleware, d.accessGate, d.listingHandler.UpdateListing)
			listings.DELETE("/:id", d.authMiddleware, d.accessGate, d.listingHandler.DeleteListing)
		}

		// Escrow order routes
		orders := v1.Group("/orders")
		orders.Use(d.authMiddleware)
		{
			orders.GET("", d.orderHandler.ListOrders)
			orders.GET("/:id", d.orderHandler.GetOrder)
			orders.POST("/checkout", d.accessGate, d.orderHandler.Checkout)
			orders.POST("/:id/ship", d.accessGate, d.orderHandler.Ship)
			orders.POST("/:id/confirm-code", d.accessGate, d.orderHandler.ConfirmCode)
			orders.POST("/:id/confirm-receipt", d.accessGate, d.orderHandler.ConfirmReceipt)
			orders.POST("/:id/claim", d.accessGate, d.orderHandler.Claim)
			orders.POST("/:id/dispute", d.accessGate, d.orderHandler.Dispute)
		}

		wallet := v1.Group("/wallet")
		wallet.Use(d.authMiddleware, d.accessGate)
		{
			wallet.POST("/topup", d.walletHandler.TopUp)
			wallet.POST("/withdraw", d.walletHandler.Withdraw)
		}

		// A banned user must still reach the appeal route
		account := v1.Group("/account")
		account.Use(d.authMiddleware)
		{
			account.GET("", d.accountHandler.GetProfile)
			account.PUT("/bank", d.accessGate, d.accountHandler.UpdateBankDetails)
			account.POST("/appeal", d.accountHandler.SubmitAppeal)
		}

		// Gateway callbacks (no user session; the webhook is HMAC signed)
		payments := v1.Group("/payments")
		{
			payments.POST("/callback", d.webhookAuth, d.paymentHandler.Callback)
			payments.GET("/verify/:reference", d.paymentHandler.Verify)
		}

		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.GET("/users/flagged", d.adminHandler.ListFlagged)
			admin.GET("/appeals", d.adminHandler.ListAppeals)
			admin.POST("/users/:id/ban", d.adminHandler.BanUser)
			admin.POST("/users/:id/unban", d.adminHandler.UnbanUser)
			admin.POST("/orders/:id/resolve-dispute", d.adminHandler.ResolveDispute)
			admin.GET("/market-prices", d.adminHandler.ListMarketPrices)
			admin.POST("/market-prices/seed", d.adminHandler.SeedMarketPrices)
		}
	}
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			origin = "*"
		}
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", strings.Join([]string{
			"Content-Type", "Authorization", middleware.RequestIDHeader,
		}, ", "))
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}
