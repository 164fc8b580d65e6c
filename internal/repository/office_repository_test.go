package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/ride-booking/internal/model"
)

func TestAddressDeleteWithHotelsIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	mock.ExpectExec(`DELETE FROM addresses WHERE id = \?`).WithArgs(3).
		WillReturnError(&mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})
	mock.ExpectExec(`DELETE FROM addresses WHERE id = \?`).WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewAddressRepo(db)
	if err := repo.Delete(context.Background(), 3); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := repo.Delete(context.Background(), 4); !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("expected ErrAddressNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestHotelListFiltersByAddress(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM hotels h WHERE h.address_id = \?`).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`FROM hotels h JOIN addresses a ON a.id = h.address_id WHERE h.address_id = \? ORDER BY`).
		WithArgs(7, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address_id", "address", "booker_id", "created_at", "updated_at"}).
			AddRow(1, "Maansoor", 7, "Airport Road", nil, now, now).
			AddRow(2, "Ambassador", 7, "Airport Road", 5, now, now))

	items, total, err := NewHotelRepo(db).List(context.Background(), 7, Page{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("got %d items, total %d", len(items), total)
	}
	if items[0].BookerID != nil || items[1].BookerID == nil || *items[1].BookerID != 5 {
		t.Fatalf("booker ids %+v %+v", items[0].BookerID, items[1].BookerID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeCreateManyDuplicateRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO employees`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO employees`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'uq_employees_phone'"})
	mock.ExpectRollback()

	emps := []model.Employee{
		{Name: "A", Phone: "+252630000001", Sex: model.SexMale, Status: model.EmployeeActive},
		{Name: "B", Phone: "+252630000002", Sex: model.SexFemale, Status: model.EmployeeActive},
	}
	if err := NewEmployeeRepo(db).CreateMany(context.Background(), emps); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
