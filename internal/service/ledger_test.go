package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/ride-booking/internal/model"
	"github.com/iliyamo/ride-booking/internal/repository"
)

func TestUpdatePaymentStatusRejectsUnknownStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	l := NewLedger(repository.NewBookingRepo(db), repository.NewRideRepo(db), nil)
	if err := l.UpdatePaymentStatus(context.Background(), 1, 5, "SHIPPED"); !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdatePaymentStatusRecordsActivity(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT payment_status FROM bookings`).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"payment_status"}).AddRow("PENDING"))
	mock.ExpectExec(`UPDATE bookings SET payment_status = \?`).WithArgs("PAID", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	act := &fakeActivity{}
	l := NewLedger(repository.NewBookingRepo(db), repository.NewRideRepo(db), act)
	if err := l.UpdatePaymentStatus(context.Background(), 1, 5, "paid"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(act.entries) != 1 || act.entries[0].Action != model.ActionPaymentStatusUpdated || act.entries[0].TargetID != 5 {
		t.Fatalf("activity %+v", act.entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLedgerGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	mock.ExpectQuery(`WHERE b.id = \?`).WithArgs(3).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewLedger(repository.NewBookingRepo(db), repository.NewRideRepo(db), nil).Get(context.Background(), 3)
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Resource != "booking" {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestLedgerListByUserPagination(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings b WHERE b.user_id = \?`).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	res, err := NewLedger(repository.NewBookingRepo(db), repository.NewRideRepo(db), nil).
		ListByUser(context.Background(), 4, repository.NewPage(0, 0))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Data) != 0 || res.Pagination.Page != 1 || res.Pagination.PageSize != 10 || res.Pagination.TotalPages != 0 {
		t.Fatalf("unexpected page %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
