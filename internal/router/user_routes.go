package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-booking/internal/handler"
	"github.com/iliyamo/ride-booking/internal/middleware"
	"github.com/iliyamo/ride-booking/internal/model"
)

// RegisterBooking registers the endpoints any signed-in account uses to
// book seats and read its bookings.  limiter guards the reservation
// endpoint.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleDriver, model.RoleUser),
	)
	g.POST("/rides/:id/bookings", h.Reserve, limiter)
	g.GET("/my-bookings", h.Mine)
	g.GET("/bookings/:id", h.Get)
}
