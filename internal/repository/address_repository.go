package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/ride-booking/internal/database"
	"github.com/iliyamo/ride-booking/internal/model"
)

type AddressRepo struct {
	db *sql.DB
}

func NewAddressRepo(db *sql.DB) *AddressRepo { return &AddressRepo{db: db} }

const addressCols = `id, address, created_by, officer_id, created_at, updated_at`

func scanAddress(s rowScanner) (model.Address, error) {
	var a model.Address
	err := s.Scan(&a.ID, &a.Address, &a.CreatedBy, &a.OfficerID, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *AddressRepo) Create(ctx context.Context, a *model.Address) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO addresses (address, created_by, officer_id) VALUES (?, ?, ?)`, a.Address, a.CreatedBy, a.OfficerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

func (r *AddressRepo) GetByID(ctx context.Context, id uint64) (*model.Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx, `SELECT `+addressCols+` FROM addresses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns one page of addresses, most recently updated first.
func (r *AddressRepo) List(ctx context.Context, p Page) ([]model.Address, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM addresses`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+addressCols+` FROM addresses ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?`, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []model.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// Update changes the text and the officer of an address.
func (r *AddressRepo) Update(ctx context.Context, id uint64, address string, officerID uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE addresses SET address = ?, officer_id = ? WHERE id = ?`, address, officerID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an address.  Addresses still used by a hotel yield
// ErrConflict.
func (r *AddressRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = ?`, id)
	if err != nil {
		if database.IsRowReferenced(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAddressNotFound
	}
	return nil
}
