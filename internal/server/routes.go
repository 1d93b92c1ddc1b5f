package server

import (
	"beleidsgraaf/internal/server/middleware"
	"beleidsgraaf/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Pipeline routes
	apiRoutes.POST("/import", routes.RunImportHandler, middleware.RequirePermission("import.run"))
	apiRoutes.POST("/import/queue", routes.QueueImportHandler, middleware.RequirePermission("import.run"))
	apiRoutes.POST("/reprocess", routes.ReprocessHandler, middleware.RequirePermission("import.reprocess"))

	// Imported item routes
	apiRoutes.GET("/items", routes.GetItemsHandler, middleware.RequirePermission("item.view"))
	apiRoutes.GET("/items/:id", routes.GetItemHandler, middleware.RequirePermission("item.view"))
	apiRoutes.POST("/items/:id/reopen", routes.ReopenItemHandler, middleware.RequirePermission("item.reopen"))

	// Suggested edge routes
	apiRoutes.POST("/edges/:id/approve", routes.ApproveEdgeHandler, middleware.RequirePermission("edge.review"))
	apiRoutes.POST("/edges/:id/reject", routes.RejectEdgeHandler, middleware.RequirePermission("edge.review"))
	apiRoutes.POST("/edges/:id/reset", routes.ResetEdgeHandler, middleware.RequirePermission("edge.review"))
	apiRoutes.PATCH("/edges/:id", routes.EditEdgeHandler, middleware.RequirePermission("edge.update"))
}
