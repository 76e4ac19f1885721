package catalog

import (
	"net/http"

	"bookmyticket/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	ListEventItems(c *gin.Context)
	GetItem(c *gin.Context)
	CreateItems(c *gin.Context)
	SetItemStatus(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) ListEventItems(c *gin.Context) {
	eventID := c.Param("id")
	if eventID == "" {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Event ID is required", nil, nil)
		return
	}

	items, err := ctrl.service.ListEventItems(c.Request.Context(), eventID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Event items retrieved successfully", items, nil)
}

func (ctrl *controller) GetItem(c *gin.Context) {
	item, err := ctrl.service.GetItem(c.Request.Context(), c.Param("itemID"))
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err == ErrItemNotFound {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Item retrieved successfully", item, nil)
}

func (ctrl *controller) CreateItems(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, nil)
		return
	}

	var req CreateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}
	organizerID, err := uuid.Parse(userID.(string))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Invalid user identity", nil, nil)
		return
	}

	items := make([]Item, len(req.Items))
	for i, item := range req.Items {
		items[i] = Item{
			EventID:     eventID,
			OrganizerID: organizerID,
			Kind:        ItemKind(item.Kind),
			Label:       item.Label,
			UnitPrice:   item.UnitPrice,
			Status:      ItemStatusOnSale,
		}
	}

	if err := ctrl.service.CreateItems(c.Request.Context(), items); err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Items created successfully", items, nil)
}

func (ctrl *controller) SetItemStatus(c *gin.Context) {
	var req UpdateItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	err := ctrl.service.SetItemStatus(c.Request.Context(), c.Param("itemID"), ItemStatus(req.Status))
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err == ErrItemNotFound {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Item status updated successfully", nil, nil)
}
