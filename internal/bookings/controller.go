package bookings

import (
	"errors"
	"net/http"

	"bookmyticket/internal/holds"
	"bookmyticket/internal/reservations"
	"bookmyticket/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	Finalize(c *gin.Context)
	GetBooking(c *gin.Context)
	ListBookings(c *gin.Context)
	CancelBooking(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) Finalize(c *gin.Context) {
	var req FinalizeBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	booking, err := ctrl.service.Finalize(c.Request.Context(), userID.(string), req.ReservationID, req.PaymentMethod)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Booking finalized successfully", booking, nil)
}

func (ctrl *controller) GetBooking(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	booking, err := ctrl.service.GetBooking(c.Request.Context(), userID.(string), c.Param("id"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

func (ctrl *controller) ListBookings(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	bookings, err := ctrl.service.ListUserBookings(c.Request.Context(), userID.(string))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Bookings retrieved successfully", bookings, nil)
}

func (ctrl *controller) CancelBooking(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	booking, err := ctrl.service.CancelBooking(c.Request.Context(), userID.(string), c.Param("id"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking refunded successfully", booking, nil)
}

// respondError maps the settlement error taxonomy onto HTTP statuses
func (ctrl *controller) respondError(c *gin.Context, err error) {
	if conflict, ok := holds.AsConflict(err); ok {
		response.RespondJSON(c, "error", http.StatusConflict, "Some items are unavailable", nil, map[string]interface{}{
			"blocked_item_ids": conflict.BlockedItemIDs,
		})
		return
	}

	switch {
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, reservations.ErrReservationNotFound):
		response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
	case errors.Is(err, reservations.ErrNotOwner):
		response.RespondJSON(c, "error", http.StatusForbidden, err.Error(), nil, nil)
	case errors.Is(err, holds.ErrHoldExpired):
		response.RespondJSON(c, "error", http.StatusGone, "Reservation hold has expired", nil, nil)
	case errors.Is(err, ErrPaymentFailed):
		response.RespondJSON(c, "error", http.StatusPaymentRequired, err.Error(), nil, nil)
	case errors.Is(err, ErrNotRefundable), errors.Is(err, holds.ErrInvalidTransition):
		response.RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
	default:
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
	}
}
