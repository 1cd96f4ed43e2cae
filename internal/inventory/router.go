package inventory

import (
	"github.com/gin-gonic/gin"
)

// SetupInventoryRoutes mounts seat listing and hold placement under /schedules.
func SetupInventoryRoutes(rg *gin.RouterGroup, controller *Controller, criticalLimiter gin.HandlerFunc) {
	schedules := rg.Group("/schedules")
	{
		schedules.GET("/:id/seats", controller.ListSeats)
		if criticalLimiter != nil {
			schedules.POST("/:id/holds", criticalLimiter, controller.PlaceHold)
		} else {
			schedules.POST("/:id/holds", controller.PlaceHold)
		}
	}
}
