package wallet

import (
	"bookmyticket/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupWalletRoutes(router *gin.RouterGroup, controller Controller) {
	organizers := router.Group("/organizers")
	organizers.Use(middleware.JWTAuth(), middleware.RequireRoles(middleware.RoleOrganizer, middleware.RoleAdmin))
	{
		organizers.GET("/wallet", controller.GetWallet) // GET /api/v1/organizers/wallet - Balance + recent transactions
	}
}
