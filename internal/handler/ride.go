package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-booking/internal/model"
	"github.com/iliyamo/ride-booking/internal/repository"
	"github.com/iliyamo/ride-booking/internal/service"
)

// RideHandler serves scheduled rides and their seat inventory.
type RideHandler struct {
	Service *service.RideService
	Rides   *repository.RideRepo
	Seats   *repository.SeatRepo
}

func NewRideHandler(svc *service.RideService, rides *repository.RideRepo, seats *repository.SeatRepo) *RideHandler {
	return &RideHandler{Service: svc, Rides: rides, Seats: seats}
}

func (h *RideHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in service.CreateRideInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	ride, err := h.Service.Create(ctx, uid, in)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, ride)
}

// Update edits fare and time only.
func (h *RideHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	var in service.UpdateRideInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	ride, err := h.Service.UpdateFareAndTime(ctx, id, in)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ride)
}

// List returns rides, optionally filtered by ?route_id=1,2 and
// ?date=YYYY-MM-DD.
func (h *RideHandler) List(c echo.Context) error {
	p := pageFrom(c)
	var day *time.Time
	if s := strings.TrimSpace(c.QueryParam("date")); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		day = &d
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	var (
		items []model.ScheduledRide
		total int64
		err   error
	)
	if raw := c.QueryParam("route_id"); raw != "" {
		ids, perr := parseIDList(raw)
		if perr != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": perr.Error()})
		}
		items, total, err = h.Rides.ListByRoutes(ctx, ids, day, p)
	} else if day != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date filter requires route_id"})
	} else {
		items, total, err = h.Rides.List(ctx, p)
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, service.PageResult[model.ScheduledRide]{Data: items, Pagination: p.Meta(total)})
}

func (h *RideHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	ride, err := h.Rides.GetByID(ctx, id)
	if errors.Is(err, repository.ErrRideNotFound) {
		return writeServiceError(c, &service.NotFoundError{Resource: "ride", ID: id})
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ride)
}

func (h *RideHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	switch err := h.Rides.Delete(ctx, id); {
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "ride has bookings"})
	case errors.Is(err, repository.ErrRideNotFound):
		return writeServiceError(c, &service.NotFoundError{Resource: "ride", ID: id})
	case err != nil:
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type seatsResp struct {
	RideID uint64       `json:"ride_id"`
	Total  int          `json:"total"`
	Free   int          `json:"free"`
	Booked int          `json:"booked"`
	Seats  []model.Seat `json:"seats"`
}

// ListSeats lists the ride's seats by number.  Always read from the
// database, never cached.
func (h *RideHandler) ListSeats(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if _, err := h.Rides.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRideNotFound) {
			return writeServiceError(c, &service.NotFoundError{Resource: "ride", ID: id})
		}
		return writeServiceError(c, err)
	}
	seats, err := h.Seats.ListByRide(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := seatsResp{RideID: id, Total: len(seats), Seats: seats}
	for _, s := range seats {
		if s.IsBooked {
			resp.Booked++
		}
	}
	resp.Free = resp.Total - resp.Booked
	return c.JSON(http.StatusOK, resp)
}
