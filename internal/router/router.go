// Package router mounts the HTTP API on an echo instance.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-booking/internal/handler"
	"github.com/iliyamo/ride-booking/internal/middleware"
)

// RegisterRoutes registers the unauthenticated probes.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers the session endpoints under /v1/auth and the
// profile endpoint /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, o *handler.OTPHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)
	g.POST("/otp/request", o.Request)
	g.POST("/otp/verify", o.Verify)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the catalog reads.  They sit behind the Redis
// response cache; the seat inventory of a ride does not.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, rides *handler.RideHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.GET("/routes", cat.ListRoutes, cache)
	g.GET("/routes/:id", cat.GetRoute, cache)
	g.GET("/vehicles", cat.ListVehicles, cache)
	g.GET("/vehicles/:id", cat.GetVehicle, cache)
	g.GET("/rides", rides.List, cache)
	g.GET("/rides/:id", rides.Get, cache)

	g.GET("/rides/:id/seats", rides.ListSeats)
}
