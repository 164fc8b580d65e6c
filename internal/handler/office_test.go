package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-booking/internal/middleware"
	"github.com/iliyamo/ride-booking/internal/repository"
	"github.com/iliyamo/ride-booking/internal/validation"
)

func newOffice(t *testing.T) (*OfficeHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	h := NewOfficeHandler(repository.NewAddressRepo(db), repository.NewHotelRepo(db), repository.NewUserRepo(db), nil, validation.New())
	return h, mock
}

func officeCtx(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set(middleware.CtxUserID, uint64(1))
	return c, rec
}

func TestCreateHotelUnknownAddress(t *testing.T) {
	h, mock := newOffice(t)
	mock.ExpectQuery(`FROM addresses WHERE id = \?`).WithArgs(7).WillReturnError(sql.ErrNoRows)

	c, rec := officeCtx(http.MethodPost, "/v1/hotels", `{"name":"Maansoor","address_id":7}`)
	if err := h.CreateHotel(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	ids, ok := decode(t, rec)["ids"].([]any)
	if !ok || len(ids) != 1 || ids[0].(float64) != 7 {
		t.Fatalf("body %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteAddressInUse(t *testing.T) {
	h, mock := newOffice(t)
	mock.ExpectExec(`DELETE FROM addresses`).WithArgs(3).
		WillReturnError(&mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})

	c, rec := officeCtx(http.MethodDelete, "/v1/addresses/3", "")
	c.SetParamNames("id")
	c.SetParamValues("3")
	if err := h.DeleteAddress(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
