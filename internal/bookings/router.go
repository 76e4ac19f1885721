package bookings

import (
	"bookmyticket/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupBookingRoutes(router *gin.RouterGroup, controller Controller) {
	bookings := router.Group("/bookings")
	bookings.Use(middleware.JWTAuth())
	{
		bookings.POST("/finalize", controller.Finalize)     // POST /api/v1/bookings/finalize - Settle a confirmed reservation
		bookings.GET("", controller.ListBookings)           // GET /api/v1/bookings - Caller's bookings
		bookings.GET("/:id", controller.GetBooking)         // GET /api/v1/bookings/:id - Booking details
		bookings.POST("/:id/cancel", controller.CancelBooking) // POST /api/v1/bookings/:id/cancel - Refund
	}
}
