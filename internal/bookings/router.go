package bookings

import (
	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes mounts booking creation, lookup, payment and the
// per-user history endpoint. All routes require authentication; the
// booking-critical rate limiter guards the mutating ones.
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc, criticalLimiter gin.HandlerFunc) {
	group := rg.Group("/bookings")
	group.Use(auth)
	{
		if criticalLimiter != nil {
			group.POST("", criticalLimiter, controller.CreateBooking)
			group.POST("/:id/payment", criticalLimiter, controller.ProcessPayment)
		} else {
			group.POST("", controller.CreateBooking)
			group.POST("/:id/payment", controller.ProcessPayment)
		}
		group.GET("/:id", controller.GetBooking)
	}

	userGroup := rg.Group("/users")
	userGroup.Use(auth)
	{
		userGroup.GET("/bookings", controller.GetUserBookings)
	}
}
