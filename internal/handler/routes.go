package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/pocketplan/pocketplan-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, budgetHandler *BudgetHandler, wsHandler *WebSocketHandler) {
	// WebSocket endpoint authenticates via query-param token
	e.GET("/ws", wsHandler.HandleWS)

	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Budget routes
	budgets := api.Group("/budgets")
	budgets.GET("/:year/:month", budgetHandler.GetBudgets)
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.PATCH("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
}
