package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-booking/internal/logging"
	"github.com/iliyamo/ride-booking/internal/middleware"
	"github.com/iliyamo/ride-booking/internal/repository"
	"github.com/iliyamo/ride-booking/internal/service"
	"github.com/iliyamo/ride-booking/internal/validation"
)

// dbTimeout bounds the database work of a single request.
const dbTimeout = 5 * time.Second

var errNoUser = errors.New("invalid user_id in context")

// getUserID returns the caller id stored by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	if id := middleware.UserID(c); id != 0 {
		return id, nil
	}
	return 0, errNoUser
}

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// pageFrom reads page and page_size (limit is accepted as an alias).
func pageFrom(c echo.Context) repository.Page {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	if size == 0 {
		size, _ = strconv.Atoi(c.QueryParam("limit"))
	}
	return repository.NewPage(page, size)
}

// parseIDList parses "1,2,3".
func parseIDList(s string) ([]uint64, error) {
	var out []uint64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil || id == 0 {
			return nil, errors.New("invalid id " + strconv.Quote(p))
		}
		out = append(out, id)
	}
	return out, nil
}

// bindAndValidate decodes the body into dst and checks its validate tags.
// Failures come back as *service.ValidationError.
func bindAndValidate(c echo.Context, v *validation.Validator, dst any) error {
	if err := c.Bind(dst); err != nil {
		return &service.ValidationError{Message: "invalid body", Err: err}
	}
	return validateStruct(v, dst)
}

// validateStruct checks an already decoded value.
func validateStruct(v *validation.Validator, dst any) error {
	if err := v.Struct(dst); err != nil {
		var fe validation.FieldErrors
		if errors.As(err, &fe) {
			return &service.ValidationError{Message: fe.Error(), Fields: fe.Map(), Err: err}
		}
		return &service.ValidationError{Err: err}
	}
	return nil
}

// writeServiceError maps the service error taxonomy onto HTTP responses.
func writeServiceError(c echo.Context, err error) error {
	var (
		ve  *service.ValidationError
		ire *service.InvalidReferenceError
		sce *service.SeatConflictError
		nfe *service.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		body := echo.Map{"error": ve.Error()}
		if len(ve.Fields) > 0 {
			body["fields"] = ve.Fields
		}
		return c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &ire):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ire.Error(), "ids": ire.IDs})
	case errors.As(err, &sce):
		return c.JSON(http.StatusConflict, echo.Map{"error": sce.Error(), "seats": sce.SeatNumbers})
	case errors.As(err, &nfe):
		return c.JSON(http.StatusNotFound, echo.Map{"error": nfe.Error()})
	}
	logging.Ctx(c.Request().Context()).Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
