package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/ride-booking/internal/model"
)

type PayrollRepo struct {
	db *sql.DB
}

func NewPayrollRepo(db *sql.DB) *PayrollRepo { return &PayrollRepo{db: db} }

const payrollCols = `id, employee_id, base_salary, allowances, deductions, net_pay, payment_type, status,
	COALESCE(reference_id, ''), paid_at, created_at`

func scanPayroll(s rowScanner) (model.Payroll, error) {
	var p model.Payroll
	var paid sql.NullTime
	if err := s.Scan(&p.ID, &p.EmployeeID, &p.BaseSalary, &p.Allowances, &p.Deductions, &p.NetPay,
		&p.PaymentType, &p.Status, &p.ReferenceID, &paid, &p.CreatedAt); err != nil {
		return p, err
	}
	if paid.Valid {
		t := paid.Time
		p.PaidAt = &t
	}
	return p, nil
}

// PayrollRun is the shared part of one payroll generation.
type PayrollRun struct {
	Allowances  int64
	Deductions  int64
	PaymentType string
}

// GenerateForActive creates one PENDING payroll per ACTIVE employee with
// NetPay = salary + allowances - deductions, all in one transaction.
func (r *PayrollRepo) GenerateForActive(ctx context.Context, run PayrollRun) ([]model.Payroll, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	rows, err := tx.QueryContext(ctx, `SELECT id, salary FROM employees WHERE status = ? ORDER BY id`, model.EmployeeActive)
	if err != nil {
		return nil, err
	}
	out := []model.Payroll{}
	for rows.Next() {
		p := model.Payroll{Allowances: run.Allowances, Deductions: run.Deductions, PaymentType: run.PaymentType, Status: model.PayrollPending}
		if err := rows.Scan(&p.EmployeeID, &p.BaseSalary); err != nil {
			rows.Close()
			return nil, err
		}
		p.NetPay = p.BaseSalary + p.Allowances - p.Deductions
		out = append(out, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	const q = `INSERT INTO payrolls (employee_id, base_salary, allowances, deductions, net_pay, payment_type, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	for i := range out {
		p := &out[i]
		res, err := tx.ExecContext(ctx, q, p.EmployeeID, p.BaseSalary, p.Allowances, p.Deductions, p.NetPay, p.PaymentType, p.Status)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		p.ID, p.CreatedAt = uint64(id), now
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return out, nil
}

// ListByEmployee returns one page of an employee's payrolls, newest first.
func (r *PayrollRepo) ListByEmployee(ctx context.Context, employeeID uint64, p Page) ([]model.Payroll, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payrolls WHERE employee_id = ?`, employeeID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+payrollCols+` FROM payrolls WHERE employee_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		employeeID, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []model.Payroll{}
	for rows.Next() {
		pr, err := scanPayroll(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, pr)
	}
	return out, total, rows.Err()
}

func (r *PayrollRepo) GetByID(ctx context.Context, id uint64) (*model.Payroll, error) {
	p, err := scanPayroll(r.db.QueryRowContext(ctx, `SELECT `+payrollCols+` FROM payrolls WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPayrollNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SettlePending moves a PENDING payroll to PAID or FAILED.  Payrolls that
// are no longer pending yield ErrConflict.
func (r *PayrollRepo) SettlePending(ctx context.Context, id uint64, status, reference string, at time.Time) error {
	var paidAt any
	if status == model.PayrollPaid {
		paidAt = at.UTC()
	}
	var ref any
	if reference != "" {
		ref = reference
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE payrolls SET status = ?, reference_id = ?, paid_at = ? WHERE id = ? AND status = ?`,
		status, ref, paidAt, id, model.PayrollPending)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}
