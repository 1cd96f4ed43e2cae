package catalog

import (
	"github.com/gin-gonic/gin"
)

// SetupCatalogRoutes mounts the public, read-only catalog endpoints.
func SetupCatalogRoutes(rg *gin.RouterGroup, controller *Controller) {
	events := rg.Group("/events")
	{
		events.GET("", controller.ListEvents)
		events.GET("/:id", controller.GetEvent)
		events.GET("/:id/schedules", controller.ListSchedules)
	}
}
