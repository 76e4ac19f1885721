package reservations

import (
	"errors"
	"net/http"

	"bookmyticket/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	Start(c *gin.Context)
	SelectItem(c *gin.Context)
	DeselectItem(c *gin.Context)
	Get(c *gin.Context)
	Renew(c *gin.Context)
	Confirm(c *gin.Context)
	Cancel(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) Start(c *gin.Context) {
	var req StartReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	reservation, err := ctrl.service.Start(c.Request.Context(), userID.(string), req.EventID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Reservation started successfully", reservation, nil)
}

func (ctrl *controller) SelectItem(c *gin.Context) {
	var req SelectItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	reservation, err := ctrl.service.SelectItem(c.Request.Context(), c.Param("id"), userID.(string), req.ItemID)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Item selected successfully", reservation, nil)
}

func (ctrl *controller) DeselectItem(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	reservation, err := ctrl.service.DeselectItem(c.Request.Context(), c.Param("id"), userID.(string), c.Param("itemID"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Item deselected successfully", reservation, nil)
}

func (ctrl *controller) Get(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	reservation, err := ctrl.service.Get(c.Request.Context(), c.Param("id"), userID.(string))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation retrieved successfully", reservation, nil)
}

func (ctrl *controller) Renew(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	reservation, err := ctrl.service.Renew(c.Request.Context(), c.Param("id"), userID.(string))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation renewed successfully", reservation, nil)
}

func (ctrl *controller) Confirm(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	snapshot, err := ctrl.service.Confirm(c.Request.Context(), c.Param("id"), userID.(string))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation confirmed successfully", snapshot, nil)
}

func (ctrl *controller) Cancel(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	if err := ctrl.service.Cancel(c.Request.Context(), c.Param("id"), userID.(string)); err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation cancelled successfully", nil, nil)
}

// respondError maps the error taxonomy onto HTTP statuses
func (ctrl *controller) respondError(c *gin.Context, err error) {
	if conflict, ok := AsConflict(err); ok {
		response.RespondJSON(c, "error", http.StatusConflict, "Some items are unavailable", nil, map[string]interface{}{
			"blocked_item_ids": conflict.BlockedItemIDs,
		})
		return
	}

	switch {
	case errors.Is(err, ErrReservationNotFound):
		response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
	case errors.Is(err, ErrNotOwner):
		response.RespondJSON(c, "error", http.StatusForbidden, err.Error(), nil, nil)
	case errors.Is(err, ErrHoldExpired):
		response.RespondJSON(c, "error", http.StatusGone, "Reservation hold has expired", nil, nil)
	case errors.Is(err, ErrInvalidTransition):
		response.RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
	default:
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
	}
}
