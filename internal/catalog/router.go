package catalog

import (
	"bookmyticket/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCatalogRoutes(router *gin.RouterGroup, controller Controller) {
	// Public browsing routes
	events := router.Group("/events")
	{
		events.GET("/:id/items", controller.ListEventItems) // GET /api/v1/events/:id/items - Catalog with live availability
	}

	items := router.Group("/items")
	{
		items.GET("/:itemID", controller.GetItem) // GET /api/v1/items/:itemID - Item details
	}

	// Organizer routes
	organizerEvents := router.Group("/events")
	organizerEvents.Use(middleware.JWTAuth(), middleware.RequireRoles(middleware.RoleOrganizer, middleware.RoleAdmin))
	{
		organizerEvents.POST("/:id/items", controller.CreateItems) // POST /api/v1/events/:id/items - Add sellable items
	}

	organizerItems := router.Group("/items")
	organizerItems.Use(middleware.JWTAuth(), middleware.RequireRoles(middleware.RoleOrganizer, middleware.RoleAdmin))
	{
		organizerItems.PATCH("/:itemID/status", controller.SetItemStatus) // PATCH /api/v1/items/:itemID/status - Take item on/off sale
	}
}
