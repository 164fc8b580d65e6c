package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/ride-booking/internal/database"
	"github.com/iliyamo/ride-booking/internal/model"
)

type EmployeeRepo struct {
	db *sql.DB
}

func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{db: db} }

const employeeCols = `id, created_by, name, phone, sex, position, address, status, COALESCE(notes, ''), salary, created_at, updated_at`

func scanEmployee(s rowScanner) (model.Employee, error) {
	var e model.Employee
	err := s.Scan(&e.ID, &e.CreatedBy, &e.Name, &e.Phone, &e.Sex, &e.Position, &e.Address, &e.Status,
		&e.Notes, &e.Salary, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// CreateMany inserts all employees in one transaction and fills in their
// ids.  A phone already on file yields ErrDuplicate and nothing is stored.
func (r *EmployeeRepo) CreateMany(ctx context.Context, emps []model.Employee) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `INSERT INTO employees (created_by, name, phone, sex, position, address, status, notes, salary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i := range emps {
		e := &emps[i]
		res, err := tx.ExecContext(ctx, q, e.CreatedBy, e.Name, e.Phone, e.Sex, e.Position, e.Address, e.Status, e.Notes, e.Salary)
		if err != nil {
			if database.IsDuplicateKey(err) {
				return ErrDuplicate
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		e.ID = uint64(id)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ExistingPhones returns which of phones already belong to an employee.
func (r *EmployeeRepo) ExistingPhones(ctx context.Context, phones []string) (map[string]bool, error) {
	found := map[string]bool{}
	if len(phones) == 0 {
		return found, nil
	}
	ph := strings.TrimSuffix(strings.Repeat("?,", len(phones)), ",")
	args := make([]any, len(phones))
	for i, p := range phones {
		args[i] = p
	}
	rows, err := r.db.QueryContext(ctx, `SELECT phone FROM employees WHERE phone IN (`+ph+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		found[p] = true
	}
	return found, rows.Err()
}

func (r *EmployeeRepo) GetByID(ctx context.Context, id uint64) (*model.Employee, error) {
	e, err := scanEmployee(r.db.QueryRowContext(ctx, `SELECT `+employeeCols+` FROM employees WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepo) List(ctx context.Context, p Page) ([]model.Employee, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+employeeCols+` FROM employees ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?`, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []model.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// Update rewrites the editable fields.  A phone taken by another employee
// yields ErrDuplicate.
func (r *EmployeeRepo) Update(ctx context.Context, e *model.Employee) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE employees SET name = ?, phone = ?, sex = ?, position = ?, address = ?, status = ?, notes = ?, salary = ? WHERE id = ?`,
		e.Name, e.Phone, e.Sex, e.Position, e.Address, e.Status, e.Notes, e.Salary, e.ID)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, e.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an employee together with their payroll history.
func (r *EmployeeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}
