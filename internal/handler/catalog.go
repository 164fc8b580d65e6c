package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-booking/internal/model"
	"github.com/iliyamo/ride-booking/internal/repository"
	"github.com/iliyamo/ride-booking/internal/service"
	"github.com/iliyamo/ride-booking/internal/validation"
)

// CatalogHandler manages routes and vehicles.
type CatalogHandler struct {
	Routes    *repository.RouteRepo
	Vehicles  *repository.VehicleRepo
	Users     *repository.UserRepo
	Validator *validation.Validator
}

func NewCatalogHandler(routes *repository.RouteRepo, vehicles *repository.VehicleRepo, users *repository.UserRepo, v *validation.Validator) *CatalogHandler {
	if routes == nil || vehicles == nil || users == nil || v == nil {
		panic("nil dependency passed to NewCatalogHandler")
	}
	return &CatalogHandler{Routes: routes, Vehicles: vehicles, Users: users, Validator: v}
}

type createRouteReq struct {
	From string `json:"from" validate:"required,max=120"`
	End  string `json:"end" validate:"required,max=120"`
}

func (h *CatalogHandler) CreateRoute(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createRouteReq
	if err := bindAndValidate(c, h.Validator, &req); err != nil {
		return writeServiceError(c, err)
	}
	rt := &model.Route{CreatedBy: uid, From: strings.TrimSpace(req.From), End: strings.TrimSpace(req.End)}
	if strings.EqualFold(rt.From, rt.End) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from and end must differ"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Routes.Create(ctx, rt); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, rt)
}

func (h *CatalogHandler) ListRoutes(c echo.Context) error {
	p := pageFrom(c)
	ctx, cancel := requestCtx(c)
	defer cancel()
	items, total, err := h.Routes.List(ctx, p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, service.PageResult[model.Route]{Data: items, Pagination: p.Meta(total)})
}

func (h *CatalogHandler) GetRoute(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	rt, err := h.Routes.GetByID(ctx, id)
	if errors.Is(err, repository.ErrRouteNotFound) {
		return writeServiceError(c, &service.NotFoundError{Resource: "route", ID: id})
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, rt)
}

func (h *CatalogHandler) DeleteRoute(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	switch err := h.Routes.Delete(ctx, id); {
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "route has scheduled rides"})
	case errors.Is(err, repository.ErrRouteNotFound):
		return writeServiceError(c, &service.NotFoundError{Resource: "route", ID: id})
	case err != nil:
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type createVehicleReq struct {
	VehicleNo string `json:"vehicle_no" validate:"required,max=32"`
	Type      string `json:"type" validate:"required"`
	DriverID  uint64 `json:"driver_id" validate:"required"`
}

// CreateVehicle registers a vehicle; its capacity follows from the type.
func (h *CatalogHandler) CreateVehicle(c echo.Context) error {
	var req createVehicleReq
	if err := bindAndValidate(c, h.Validator, &req); err != nil {
		return writeServiceError(c, err)
	}
	typ, capacity, ok := model.CapacityFor(req.Type)
	if !ok {
		return writeServiceError(c, &service.ValidationError{
			Message: "unknown vehicle type",
			Fields:  map[string]string{"type": "type must be one of: Hiace Bus Taxi Noah"},
		})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	isDriver, err := h.Users.Exists(ctx, req.DriverID, model.RoleDriver)
	if err != nil {
		return writeServiceError(c, err)
	}
	if !isDriver {
		return writeServiceError(c, &service.InvalidReferenceError{Kind: "driver", IDs: []uint64{req.DriverID}})
	}
	v := &model.Vehicle{VehicleNo: strings.ToUpper(strings.TrimSpace(req.VehicleNo)), Type: typ, Capacity: capacity, DriverID: req.DriverID}
	if err := h.Vehicles.Create(ctx, v); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle number already registered"})
		}
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *CatalogHandler) ListVehicles(c echo.Context) error {
	p := pageFrom(c)
	ctx, cancel := requestCtx(c)
	defer cancel()
	items, total, err := h.Vehicles.List(ctx, p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, service.PageResult[model.Vehicle]{Data: items, Pagination: p.Meta(total)})
}

func (h *CatalogHandler) GetVehicle(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	v, err := h.Vehicles.GetByID(ctx, id)
	if errors.Is(err, repository.ErrVehicleNotFound) {
		return writeServiceError(c, &service.NotFoundError{Resource: "vehicle", ID: id})
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}
