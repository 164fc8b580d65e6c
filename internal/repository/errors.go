// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as deleting a route
// that still has scheduled rides. Handlers should translate this
// into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrDuplicate signals a unique-key violation (MySQL error 1062).
var ErrDuplicate = errors.New("duplicate")

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrRouteNotFound   = errors.New("route not found")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrRideNotFound    = errors.New("scheduled ride not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrMessageNotFound = errors.New("message not found")

	ErrAddressNotFound  = errors.New("address not found")
	ErrHotelNotFound    = errors.New("hotel not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrPayrollNotFound  = errors.New("payroll not found")
)
