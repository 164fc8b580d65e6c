package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func newRideMock(t *testing.T) (*RideRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRideRepo(db), mock
}

func expectRideLocked(mock sqlmock.Sqlmock, id uint64, bookings int) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM schedule_rides WHERE id = \? FOR UPDATE`).WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE schedule_ride_id = \?`).WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(bookings))
}

func TestRideDeleteCommits(t *testing.T) {
	repo, mock := newRideMock(t)
	expectRideLocked(mock, 4, 0)
	mock.ExpectExec(`DELETE FROM schedule_rides WHERE id = \?`).WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Delete(context.Background(), 4); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRideDeleteWithBookingsIsConflict(t *testing.T) {
	repo, mock := newRideMock(t)
	expectRideLocked(mock, 4, 2)
	mock.ExpectRollback()

	if err := repo.Delete(context.Background(), 4); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRideDeleteReferencedRowIsConflict(t *testing.T) {
	repo, mock := newRideMock(t)
	expectRideLocked(mock, 4, 0)
	mock.ExpectExec(`DELETE FROM schedule_rides`).
		WillReturnError(&mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})
	mock.ExpectRollback()

	if err := repo.Delete(context.Background(), 4); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRideDeleteUnknown(t *testing.T) {
	repo, mock := newRideMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(9).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	if err := repo.Delete(context.Background(), 9); !errors.Is(err, ErrRideNotFound) {
		t.Fatalf("expected ErrRideNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
