package wallet

import (
	"net/http"

	"bookmyticket/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	GetWallet(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetWallet(c *gin.Context) {
	organizerID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Organizer not authenticated", nil, nil)
		return
	}

	organizerUUID, err := uuid.Parse(organizerID.(string))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Invalid organizer ID format", nil, nil)
		return
	}

	wallet, err := ctrl.service.GetWallet(organizerUUID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Wallet retrieved successfully", wallet, nil)
}
