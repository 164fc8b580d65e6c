package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-booking/internal/handler"
	"github.com/iliyamo/ride-booking/internal/middleware"
	"github.com/iliyamo/ride-booking/internal/model"
)

// AdminHandlers groups the handlers mounted for administrators.
type AdminHandlers struct {
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Rides    *handler.RideHandler
	Bookings *handler.BookingHandler
	Admin    *handler.AdminHandler
	Office   *handler.OfficeHandler
	Staff    *handler.StaffHandler
}

// RegisterAdmin registers the back-office endpoints.  All require a valid
// JWT and the ADMIN role, except the ride manifest which drivers may read.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin))

	g.POST("/users", h.Auth.CreateUser)

	g.POST("/routes", h.Catalog.CreateRoute)
	g.DELETE("/routes/:id", h.Catalog.DeleteRoute)
	g.POST("/vehicles", h.Catalog.CreateVehicle)

	g.POST("/rides", h.Rides.Create)
	g.PATCH("/rides/:id", h.Rides.Update)
	g.DELETE("/rides/:id", h.Rides.Delete)

	g.GET("/bookings", h.Bookings.List)
	g.PATCH("/bookings/:id/payment-status", h.Bookings.UpdatePaymentStatus)

	g.GET("/activity-logs", h.Admin.ListActivity)
	g.POST("/messages", h.Admin.CreateMessage)
	g.GET("/messages", h.Admin.ListMessages)
	g.GET("/messages/:id", h.Admin.GetMessage)

	g.POST("/addresses", h.Office.CreateAddress)
	g.GET("/addresses", h.Office.ListAddresses)
	g.GET("/addresses/:id", h.Office.GetAddress)
	g.PUT("/addresses/:id", h.Office.UpdateAddress)
	g.DELETE("/addresses/:id", h.Office.DeleteAddress)
	g.POST("/hotels", h.Office.CreateHotel)
	g.GET("/hotels", h.Office.ListHotels)
	g.GET("/hotels/:id", h.Office.GetHotel)
	g.PUT("/hotels/:id", h.Office.UpdateHotel)
	g.DELETE("/hotels/:id", h.Office.DeleteHotel)

	g.POST("/employees", h.Staff.CreateEmployees)
	g.GET("/employees", h.Staff.ListEmployees)
	g.GET("/employees/:id", h.Staff.GetEmployee)
	g.PUT("/employees/:id", h.Staff.UpdateEmployee)
	g.DELETE("/employees/:id", h.Staff.DeleteEmployee)
	g.GET("/employees/:id/payrolls", h.Staff.PayrollHistory)
	g.POST("/payrolls", h.Staff.GeneratePayroll)
	g.PATCH("/payrolls/:id", h.Staff.SettlePayroll)

	e.GET("/v1/rides/:id/bookings", h.Bookings.ListByRide,
		middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin, model.RoleDriver))
}
