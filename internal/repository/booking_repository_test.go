package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

var bookingDetailCols = []string{
	"id", "user_id", "schedule_ride_id", "seat_ids", "name", "phone_number",
	"amount", "qty", "total_amount", "currency", "payment_type", "payment_status", "created_at", "updated_at",
	"sr.id", "day", "start_time", "end_time", "rt.id", "origin", "destination",
}

func TestListByRidePaginates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings b WHERE b.schedule_ride_id = \?`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`FROM bookings b\s+JOIN schedule_rides sr .* WHERE b.schedule_ride_id = \? ORDER BY .* LIMIT \? OFFSET \?`).
		WithArgs(4, 2, 2).
		WillReturnRows(sqlmock.NewRows(bookingDetailCols).
			AddRow(9, 1, 4, "[21,22]", "Hodan", "+252634111111", 500, 2, 1000, "USD", "CASH", "PENDING", now, now,
				4, "MONDAY", now, now.Add(2*time.Hour), 1, "Hargeisa", "Berbera"))
	mock.ExpectQuery(`SELECT bs.booking_id, s.id, s.seat_number FROM booking_seats bs`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "id", "seat_number"}).
			AddRow(9, 21, 1).
			AddRow(9, 22, 2))

	p := NewPage(2, 2)
	list, total, err := NewBookingRepo(db).ListByRide(context.Background(), 4, p)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || p.Meta(total).TotalPages != 2 {
		t.Fatalf("unexpected total %d", total)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 item on last page, got %d", len(list))
	}
	b := list[0]
	if len(b.SeatIDs) != 2 || b.SeatIDs[1] != 22 || len(b.Seats) != 2 || b.Seats[1].SeatNumber != 2 {
		t.Fatalf("seats not attached: %+v", b)
	}
	if b.Route.From != "Hargeisa" || b.Ride.Day != "MONDAY" {
		t.Fatalf("joins not scanned: %+v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`WHERE b.id = \?`).WithArgs(77).WillReturnRows(sqlmock.NewRows(bookingDetailCols))

	if _, err := NewBookingRepo(db).GetByID(context.Background(), 77); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestCreateSeatsBulkTxDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO booking_seats \(booking_id, seat_id\) VALUES \(\?, \?\),\(\?, \?\)`).
		WithArgs(1, 10, 1, 11).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '10' for key 'uq_booking_seat'"})
	mock.ExpectRollback()

	ctx := context.Background()
	tx, _ := db.BeginTx(ctx, nil)
	err = NewBookingRepo(db).CreateSeatsBulkTx(ctx, tx, 1, []uint64{10, 11})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdatePaymentStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT payment_status FROM bookings WHERE id = \? FOR UPDATE`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"payment_status"}).AddRow("PENDING"))
	mock.ExpectExec(`UPDATE bookings SET payment_status = \? WHERE id = \?`).
		WithArgs("PAID", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	prev, err := NewBookingRepo(db).UpdatePaymentStatus(context.Background(), 3, "PAID")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if prev != "PENDING" {
		t.Fatalf("expected previous PENDING, got %s", prev)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdatePaymentStatusUnknownBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT payment_status FROM bookings`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"payment_status"}))
	mock.ExpectRollback()

	if _, err := NewBookingRepo(db).UpdatePaymentStatus(context.Background(), 3, "PAID"); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
