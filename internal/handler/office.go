package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-booking/internal/logging"
	"github.com/iliyamo/ride-booking/internal/model"
	"github.com/iliyamo/ride-booking/internal/repository"
	"github.com/iliyamo/ride-booking/internal/service"
	"github.com/iliyamo/ride-booking/internal/validation"
)

// OfficeHandler manages office addresses and the partner hotels at them.
type OfficeHandler struct {
	Addresses *repository.AddressRepo
	Hotels    *repository.HotelRepo
	Users     *repository.UserRepo
	Activity  service.ActivityRecorder
	Validator *validation.Validator
}

func NewOfficeHandler(addresses *repository.AddressRepo, hotels *repository.HotelRepo, users *repository.UserRepo,
	activity service.ActivityRecorder, v *validation.Validator) *OfficeHandler {
	if addresses == nil || hotels == nil || users == nil || v == nil {
		panic("nil dependency passed to NewOfficeHandler")
	}
	return &OfficeHandler{Addresses: addresses, Hotels: hotels, Users: users, Activity: activity, Validator: v}
}

type addressReq struct {
	Address   string `json:"address" validate:"required,max=255"`
	OfficerID uint64 `json:"officer_id" validate:"required"`
}

func (h *OfficeHandler) checkUser(c echo.Context, id uint64, kind string) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	ok, err := h.Users.Exists(ctx, id, "")
	if err != nil {
		return err
	}
	if !ok {
		return &service.InvalidReferenceError{Kind: kind, IDs: []uint64{id}}
	}
	return nil
}

func (h *OfficeHandler) CreateAddress(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req addressReq
	if err := bindAndValidate(c, h.Validator, &req); err != nil {
		return writeServiceError(c, err)
	}
	if err := h.checkUser(c, req.OfficerID, "officer"); err != nil {
		return writeServiceError(c, err)
	}
	a := &model.Address{Address: strings.TrimSpace(req.Address), CreatedBy: uid, OfficerID: req.OfficerID}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Addresses.Create(ctx, a); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *OfficeHandler) ListAddresses(c echo.Context) error {
	p := pageFrom(c)
	ctx, cancel := requestCtx(c)
	defer cancel()
	items, total, err := h.Addresses.List(ctx, p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, service.PageResult[model.Address]{Data: items, Pagination: p.Meta(total)})
}

func (h *OfficeHandler) GetAddress(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	a, err := h.Addresses.GetByID(ctx, id)
	if errors.Is(err, repository.ErrAddressNotFound) {
		return writeServiceError(c, &service.NotFoundError{Resource: "address", ID: id})
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *OfficeHandler) UpdateAddress(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address id"})
	}
	var req addressReq
	if err := bindAndValidate(c, h.Validator, &req); err != nil {
		return writeServiceError(c, err)
	}
	if err := h.checkUser(c, req.OfficerID, "officer"); err != nil {
		return writeServiceError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	err := h.Addresses.Update(ctx, id, strings.TrimSpace(req.Address), req.OfficerID)
	if errors.Is(err, repository.ErrAddressNotFound) {
		return writeServiceError(c, &service.NotFoundError{Resource: "address", ID: id})
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	a, err := h.Addresses.GetByID(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *OfficeHandler) DeleteAddress(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	switch err := h.Addresses.Delete(ctx, id); {
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "address has hotels"})
	case errors.Is(err, repository.ErrAddressNotFound):
		return writeServiceError(c, &service.NotFoundError{Resource: "address", ID: id})
	case err != nil:
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type hotelReq struct {
	Name      string  `json:"name" validate:"required,max=160"`
	AddressID uint64  `json:"address_id" validate:"required"`
	BookerID  *uint64 `json:"booker_id"`
}

// hotelFrom validates the references of a hotel request.
func (h *OfficeHandler) hotelFrom(c echo.Context, req hotelReq) (*model.Hotel, error) {
	ctx, cancel := requestCtx(c)
	defer cancel()
	if _, err := h.Addresses.GetByID(ctx, req.AddressID); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return nil, &service.InvalidReferenceError{Kind: "address", IDs: []uint64{req.AddressID}}
		}
		return nil, err
	}
	if req.BookerID != nil {
		if err := h.checkUser(c, *req.BookerID, "booker"); err != nil {
			return nil, err
		}
	}
	return &model.Hotel{Name: strings.TrimSpace(req.Name), AddressID: req.AddressID, BookerID: req.BookerID}, nil
}

func (h *OfficeHandler) CreateHotel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req hotelReq
	if err := bindAndValidate(c, h.Validator, &req); err != nil {
		return writeServiceError(c, err)
	}
	hotel, err := h.hotelFrom(c, req)
	if err != nil {
		return writeServiceError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Hotels.Create(ctx, hotel); err != nil {
		return writeServiceError(c, err)
	}
	if h.Activity != nil {
		details, _ := json.Marshal(map[string]any{"name": hotel.Name, "address_id": hotel.AddressID})
		entry := &model.ActivityLog{UserID: uid, Action: model.ActionHotelCreated, TargetType: "hotel", TargetID: hotel.ID, Details: details}
		if err := h.Activity.Create(ctx, entry); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Uint64("hotel_id", hotel.ID).Msg("activity log write failed")
		}
	}
	return c.JSON(http.StatusCreated, hotel)
}

// ListHotels accepts an optional address_id filter.
func (h *OfficeHandler) ListHotels(c echo.Context) error {
	var addressID uint64
	if raw := c.QueryParam("address_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address_id"})
		}
		addressID = id
	}
	p := pageFrom(c)
	ctx, cancel := requestCtx(c)
	defer cancel()
	items, total, err := h.Hotels.List(ctx, addressID, p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, service.PageResult[model.Hotel]{Data: items, Pagination: p.Meta(total)})
}

func (h *OfficeHandler) GetHotel(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	hotel, err := h.Hotels.GetByID(ctx, id)
	if errors.Is(err, repository.ErrHotelNotFound) {
		return writeServiceError(c, &service.NotFoundError{Resource: "hotel", ID: id})
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, hotel)
}

func (h *OfficeHandler) UpdateHotel(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	var req hotelReq
	if err := bindAndValidate(c, h.Validator, &req); err != nil {
		return writeServiceError(c, err)
	}
	hotel, err := h.hotelFrom(c, req)
	if err != nil {
		return writeServiceError(c, err)
	}
	hotel.ID = id
	ctx, cancel := requestCtx(c)
	defer cancel()
	err = h.Hotels.Update(ctx, hotel)
	if errors.Is(err, repository.ErrHotelNotFound) {
		return writeServiceError(c, &service.NotFoundError{Resource: "hotel", ID: id})
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	updated, err := h.Hotels.GetByID(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *OfficeHandler) DeleteHotel(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	err := h.Hotels.Delete(ctx, id)
	if errors.Is(err, repository.ErrHotelNotFound) {
		return writeServiceError(c, &service.NotFoundError{Resource: "hotel", ID: id})
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
