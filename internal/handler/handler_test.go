package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-booking/internal/middleware"
	"github.com/iliyamo/ride-booking/internal/repository"
	"github.com/iliyamo/ride-booking/internal/service"
	"github.com/iliyamo/ride-booking/internal/utils"
	"github.com/iliyamo/ride-booking/internal/validation"
)

const secret = "test-secret"

func bearer(t *testing.T, uid uint64, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, uid, role, 5)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + tok.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		err  error
		code int
		key  string
	}{
		{&service.ValidationError{Message: "bad", Fields: map[string]string{"name": "name is required"}}, http.StatusBadRequest, "fields"},
		{&service.InvalidReferenceError{Kind: "seat", IDs: []uint64{9}}, http.StatusBadRequest, "ids"},
		{&service.SeatConflictError{SeatNumbers: []int{3, 4}}, http.StatusConflict, "seats"},
		{&service.NotFoundError{Resource: "ride", ID: 1}, http.StatusNotFound, "error"},
		{&service.InternalError{Op: "x", Err: errors.New("boom")}, http.StatusInternalServerError, "error"},
	}
	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		if err := writeServiceError(c, tc.err); err != nil {
			t.Fatalf("write: %v", err)
		}
		if rec.Code != tc.code {
			t.Fatalf("%T: got %d want %d", tc.err, rec.Code, tc.code)
		}
		if _, ok := decode(t, rec)[tc.key]; !ok {
			t.Fatalf("%T: missing %q in %s", tc.err, tc.key, rec.Body.String())
		}
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = writeServiceError(c, &service.InternalError{Op: "x", Err: errors.New("dsn secret")})
	if strings.Contains(rec.Body.String(), "dsn secret") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
}

func TestPageFromAndIDList(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?page=3&limit=500", nil), httptest.NewRecorder())
	p := pageFrom(c)
	if p.Page != 3 || p.PageSize != 100 {
		t.Fatalf("unexpected page %+v", p)
	}
	ids, err := parseIDList("1, 2,,3")
	if err != nil || len(ids) != 3 || ids[2] != 3 {
		t.Fatalf("ids %v %v", ids, err)
	}
	if _, err := parseIDList("1,x"); err == nil {
		t.Fatalf("expected error for non numeric id")
	}
}

type bookingServer struct {
	e    *echo.Echo
	mock sqlmock.Sqlmock
}

func newBookingServer(t *testing.T) *bookingServer {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	rides := repository.NewRideRepo(db)
	bookings := repository.NewBookingRepo(db)
	coord := service.NewCoordinator(db, repository.NewUserRepo(db), rides, repository.NewSeatRepo(db), bookings,
		validation.New(), nil, nil)
	h := NewBookingHandler(coord, service.NewLedger(bookings, rides, nil))
	rh := NewRideHandler(nil, rides, repository.NewSeatRepo(db))

	e := echo.New()
	g := e.Group("/v1", middleware.JWTAuth(secret))
	g.POST("/rides/:id/bookings", h.Reserve)
	g.GET("/bookings/:id", h.Get)
	e.GET("/v1/rides/:id/seats", rh.ListSeats)
	return &bookingServer{e: e, mock: mock}
}

func (s *bookingServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *bookingServer) expectRideAndSeats(rideID uint64, booked map[int]bool) {
	start := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	s.mock.ExpectQuery(`FROM schedule_rides WHERE id = \?`).WithArgs(rideID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "route_id", "vehicle_id", "driver_id", "created_by", "fare_usd",
			"fare_slsh", "day", "start_time", "end_time", "total_seats", "created_at", "updated_at"}).
			AddRow(rideID, 1, 1, 2, 1, 500, 50000, "MONDAY", start, start.Add(time.Hour), 3, start, start))
	rows := sqlmock.NewRows([]string{"id", "schedule_ride_id", "seat_number", "is_booked"})
	for n := 1; n <= 3; n++ {
		rows.AddRow(n, rideID, n, booked[n])
	}
	s.mock.ExpectQuery(`FROM seats`).WithArgs(rideID).WillReturnRows(rows)
}

const reserveBody = `{"seat_ids":[1,2],"name":"Hodan","phone_number":"+252634111111","amount":500,"currency":"USD","payment_type":"CASH"}`

func TestReserveRequiresToken(t *testing.T) {
	s := newBookingServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/rides/7/bookings", strings.NewReader(reserveBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if rec := s.do(req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d", rec.Code)
	}
}

func TestReserveCreated(t *testing.T) {
	s := newBookingServer(t)
	s.mock.ExpectQuery(`SELECT 1 FROM users`).WithArgs(4).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	s.expectRideAndSeats(7, nil)
	s.mock.ExpectBegin()
	s.mock.ExpectExec(`UPDATE seats SET is_booked = 1`).WithArgs(7, 1, 2).WillReturnResult(sqlmock.NewResult(0, 2))
	s.mock.ExpectExec(`INSERT INTO bookings`).WillReturnResult(sqlmock.NewResult(31, 1))
	s.mock.ExpectExec(`INSERT INTO booking_seats`).WillReturnResult(sqlmock.NewResult(0, 2))
	s.mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodPost, "/v1/rides/7/bookings", strings.NewReader(reserveBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", bearer(t, 4, "USER"))
	rec := s.do(req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["id"].(float64) != 31 || body["total_amount"].(float64) != 1000 || body["qty"].(float64) != 2 {
		t.Fatalf("unexpected body %v", body)
	}
	if err := s.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveConflictListsSeats(t *testing.T) {
	s := newBookingServer(t)
	s.mock.ExpectQuery(`SELECT 1 FROM users`).WithArgs(4).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	s.expectRideAndSeats(7, map[int]bool{2: true})

	req := httptest.NewRequest(http.MethodPost, "/v1/rides/7/bookings", strings.NewReader(reserveBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", bearer(t, 4, "USER"))
	rec := s.do(req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	seats, _ := decode(t, rec)["seats"].([]any)
	if len(seats) != 1 || seats[0].(float64) != 2 {
		t.Fatalf("unexpected seats %v", seats)
	}
}

func TestListSeatsCounts(t *testing.T) {
	s := newBookingServer(t)
	s.expectRideAndSeats(7, map[int]bool{1: true, 3: true})
	rec := s.do(httptest.NewRequest(http.MethodGet, "/v1/rides/7/seats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["total"].(float64) != 3 || body["booked"].(float64) != 2 || body["free"].(float64) != 1 {
		t.Fatalf("unexpected counts %v", body)
	}
}

func TestGetBookingHidesOtherUsers(t *testing.T) {
	s := newBookingServer(t)
	now := time.Now()
	s.mock.ExpectQuery(`WHERE b.id = \?`).WithArgs(5).WillReturnRows(sqlmock.NewRows([]string{
		"id", "user_id", "schedule_ride_id", "seat_ids", "name", "phone_number", "amount", "qty", "total_amount",
		"currency", "payment_type", "payment_status", "created_at", "updated_at",
		"ride_id", "day", "start_time", "end_time", "route_id", "origin", "destination",
	}).AddRow(5, 99, 7, "[1]", "Other", "+252634000000", 500, 1, 500, "USD", "CASH", "PENDING", now, now,
		7, "MONDAY", now, now, 1, "Hargeisa", "Berbera"))
	s.mock.ExpectQuery(`FROM booking_seats`).WillReturnRows(sqlmock.NewRows([]string{"booking_id", "id", "seat_number"}).AddRow(5, 1, 1))

	req := httptest.NewRequest(http.MethodGet, "/v1/bookings/5", nil)
	req.Header.Set("Authorization", bearer(t, 4, "USER"))
	if rec := s.do(req); rec.Code != http.StatusNotFound {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}
