package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/ride-booking/internal/model"
	"github.com/iliyamo/ride-booking/internal/repository"
	"github.com/iliyamo/ride-booking/internal/validation"
)

func newStaff(t *testing.T) (*StaffService, sqlmock.Sqlmock, *fakeActivity) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	act := &fakeActivity{}
	svc := NewStaffService(repository.NewEmployeeRepo(db), repository.NewPayrollRepo(db), validation.New(), act)
	return svc, mock, act
}

func TestCreateEmployeesKeepsValidItems(t *testing.T) {
	svc, mock, act := newStaff(t)
	mock.ExpectQuery(`SELECT phone FROM employees WHERE phone IN \(\?,\?\)`).
		WithArgs("+252630000001", "+252630000002").
		WillReturnRows(sqlmock.NewRows([]string{"phone"}).AddRow("+252630000002"))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO employees`).
		WithArgs(1, "Ayaan Warsame", "+252630000001", "FEMALE", "Cashier", "", "ACTIVE", "", 45000).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	items := []EmployeeInput{
		{Name: " Ayaan Warsame ", Phone: "+252630000001", Sex: "female", Position: "Cashier", Status: "active", Salary: 45000},
		{Name: "No Sex", Phone: "+252630000003", Sex: "X", Status: "ACTIVE"},
		{Name: "Repeat", Phone: "+252630000001", Sex: "MALE", Status: "ACTIVE"},
		{Name: "Taken", Phone: "+252630000002", Sex: "MALE", Status: "ACTIVE"},
	}
	batch, err := svc.CreateEmployees(context.Background(), 1, items)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(batch.Created) != 1 || batch.Created[0].ID != 11 || batch.Created[0].Name != "Ayaan Warsame" {
		t.Fatalf("created %+v", batch.Created)
	}
	if len(batch.Rejected) != 3 {
		t.Fatalf("rejected %+v", batch.Rejected)
	}
	for i, want := range []int{1, 2, 3} {
		if batch.Rejected[i].Index != want {
			t.Fatalf("rejected order %+v", batch.Rejected)
		}
	}
	if len(act.entries) != 1 || act.entries[0].Action != model.ActionEmployeeCreated {
		t.Fatalf("activity %+v", act.entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateEmployeesNothingValid(t *testing.T) {
	svc, mock, _ := newStaff(t)
	mock.ExpectQuery(`SELECT phone FROM employees`).WithArgs("+252630000002").
		WillReturnRows(sqlmock.NewRows([]string{"phone"}).AddRow("+252630000002"))

	_, err := svc.CreateEmployees(context.Background(), 1, []EmployeeInput{
		{Name: "Taken", Phone: "+252630000002", Sex: "MALE", Status: "ACTIVE"},
	})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Fields["employees[0]"] != "phone already exists" {
		t.Fatalf("expected ValidationError for employees[0], got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGeneratePayrollNetPay(t *testing.T) {
	svc, mock, act := newStaff(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, salary FROM employees WHERE status = \?`).WithArgs("ACTIVE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "salary"}).AddRow(1, 50000).AddRow(2, 80000))
	mock.ExpectExec(`INSERT INTO payrolls`).WithArgs(1, 50000, 1000, 500, 50500, "CASH", "PENDING").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec(`INSERT INTO payrolls`).WithArgs(2, 80000, 1000, 500, 80500, "CASH", "PENDING").
		WillReturnResult(sqlmock.NewResult(22, 1))
	mock.ExpectCommit()

	out, err := svc.GeneratePayroll(context.Background(), 1, PayrollInput{Allowances: 1000, Deductions: 500, PaymentType: "cash"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(out) != 2 || out[0].ID != 21 || out[1].NetPay != 80500 || out[1].Status != model.PayrollPending {
		t.Fatalf("payrolls %+v", out)
	}
	if len(act.entries) != 1 || act.entries[0].Action != model.ActionPayrollGenerated {
		t.Fatalf("activity %+v", act.entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGeneratePayrollValidation(t *testing.T) {
	svc, mock, _ := newStaff(t)
	_, err := svc.GeneratePayroll(context.Background(), 1, PayrollInput{Deductions: -1, PaymentType: "CHEQUE"})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Fields["deductions"] == "" || ve.Fields["payment_type"] == "" {
		t.Fatalf("expected field errors, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSettlePayrollOnlyFromPending(t *testing.T) {
	svc, mock, _ := newStaff(t)
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	mock.ExpectExec(`UPDATE payrolls SET status = \?, reference_id = \?, paid_at = \? WHERE id = \? AND status = \?`).
		WithArgs("PAID", "TX-9", now, 21, "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM payrolls WHERE id = \?`).WithArgs(21).
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "base_salary", "allowances", "deductions", "net_pay",
			"payment_type", "status", "reference_id", "paid_at", "created_at"}).
			AddRow(21, 1, 50000, 1000, 500, 50500, "CASH", "PAID", "TX-1", now, now))

	_, err := svc.SettlePayroll(context.Background(), 21, "paid", "TX-9")
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError for settled payroll, got %v", err)
	}
	if _, err := svc.SettlePayroll(context.Background(), 21, "REFUNDED", ""); !IsValidation(err) {
		t.Fatalf("expected ValidationError for bad status, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
