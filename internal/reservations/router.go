package reservations

import (
	"bookmyticket/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupReservationRoutes(router *gin.RouterGroup, controller Controller) {
	reservations := router.Group("/reservations")
	reservations.Use(middleware.JWTAuth())
	{
		reservations.POST("", controller.Start)                           // POST /api/v1/reservations - Start a reservation
		reservations.GET("/:id", controller.Get)                          // GET /api/v1/reservations/:id - State, countdown, breakdown
		reservations.POST("/:id/items", controller.SelectItem)            // POST /api/v1/reservations/:id/items - Select item
		reservations.DELETE("/:id/items/:itemID", controller.DeselectItem) // DELETE /api/v1/reservations/:id/items/:itemID - Deselect item
		reservations.POST("/:id/renew", controller.Renew)                 // POST /api/v1/reservations/:id/renew - Extend hold TTL
		reservations.POST("/:id/confirm", controller.Confirm)             // POST /api/v1/reservations/:id/confirm - Freeze snapshot
		reservations.POST("/:id/cancel", controller.Cancel)               // POST /api/v1/reservations/:id/cancel - Release hold
	}
}
