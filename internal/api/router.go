package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/collectiva/settlement-engine/internal/api/handler"
	"github.com/collectiva/settlement-engine/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	settlementHandler *handler.SettlementHandler,
	ledgerHandler *handler.LedgerHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Settlement operations
		settlements := v1.Group("/settlements")
		{
			settlements.POST("/scan/:kind", settlementHandler.Scan)
			settlements.GET("/pending/:kind", settlementHandler.ListPending)
		}

		// Ledger queries
		loans := v1.Group("/loans")
		{
			loans.GET("/:id", ledgerHandler.GetLoanByID)
			loans.GET("/:id/repayments", ledgerHandler.GetRepaymentsByLoanID)
		}

		groups := v1.Group("/groups")
		{
			groups.GET("/:id/treasury", ledgerHandler.GetTreasuryTotal)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
