package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-booking/internal/middleware"
	"github.com/iliyamo/ride-booking/internal/model"
	"github.com/iliyamo/ride-booking/internal/service"
)

// BookingHandler exposes the reservation coordinator and the ledger.
type BookingHandler struct {
	Coordinator *service.Coordinator
	Ledger      *service.Ledger
}

func NewBookingHandler(c *service.Coordinator, l *service.Ledger) *BookingHandler {
	if c == nil || l == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Coordinator: c, Ledger: l}
}

type reserveReq struct {
	SeatIDs []uint64 `json:"seat_ids"`
	service.BookingDetails
}

// Reserve handles POST /v1/rides/:id/bookings.
func (h *BookingHandler) Reserve(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rideID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	b, err := h.Coordinator.Reserve(c.Request().Context(), uid, rideID, req.SeatIDs, req.BookingDetails)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// List returns every booking (admin).
func (h *BookingHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	res, err := h.Ledger.List(ctx, pageFrom(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Get returns one booking.  Non-admin callers only see their own.
func (h *BookingHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	d, err := h.Ledger.Get(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	if middleware.Role(c) != model.RoleAdmin && d.UserID != uid {
		return writeServiceError(c, &service.NotFoundError{Resource: "booking", ID: id})
	}
	return c.JSON(http.StatusOK, d)
}

// ListByRide returns the bookings of one ride (admin, driver).
func (h *BookingHandler) ListByRide(c echo.Context) error {
	rideID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	res, err := h.Ledger.ListByRide(ctx, rideID, pageFrom(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Mine returns the caller's bookings.
func (h *BookingHandler) Mine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	res, err := h.Ledger.ListByUser(ctx, uid, pageFrom(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type paymentStatusReq struct {
	PaymentStatus string `json:"payment_status"`
}

// UpdatePaymentStatus handles PATCH /v1/bookings/:id/payment-status.
func (h *BookingHandler) UpdatePaymentStatus(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req paymentStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Ledger.UpdatePaymentStatus(ctx, uid, id, req.PaymentStatus); err != nil {
		return writeServiceError(c, err)
	}
	d, err := h.Ledger.Get(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}
