package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-booking/internal/model"
	"github.com/iliyamo/ride-booking/internal/repository"
	"github.com/iliyamo/ride-booking/internal/service"
)

// AdminHandler serves the activity log and outbound messages.
type AdminHandler struct {
	Activity *repository.ActivityLogRepo
	Messages *repository.MessageRepo
	Sender   *service.MessageService
}

func NewAdminHandler(activity *repository.ActivityLogRepo, messages *repository.MessageRepo, sender *service.MessageService) *AdminHandler {
	return &AdminHandler{Activity: activity, Messages: messages, Sender: sender}
}

func (h *AdminHandler) ListActivity(c echo.Context) error {
	p := pageFrom(c)
	ctx, cancel := requestCtx(c)
	defer cancel()
	items, total, err := h.Activity.List(ctx, p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, service.PageResult[model.ActivityLog]{Data: items, Pagination: p.Meta(total)})
}

type createMessageReq struct {
	Body        string     `json:"body"`
	Phones      []string   `json:"phones"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// CreateMessage stores a message; unscheduled ones are sent right away.
func (h *AdminHandler) CreateMessage(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	m, err := h.Sender.Create(c.Request().Context(), uid, req.Body, req.Phones, req.ScheduledAt)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *AdminHandler) ListMessages(c echo.Context) error {
	p := pageFrom(c)
	ctx, cancel := requestCtx(c)
	defer cancel()
	items, total, err := h.Messages.List(ctx, p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, service.PageResult[model.Message]{Data: items, Pagination: p.Meta(total)})
}

func (h *AdminHandler) GetMessage(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	m, err := h.Messages.GetByID(ctx, id)
	if errors.Is(err, repository.ErrMessageNotFound) {
		return writeServiceError(c, &service.NotFoundError{Resource: "message", ID: id})
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}
