package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/ride-booking/internal/model"
)

// HotelRepo stores partner hotels.  Reads join the address text.
type HotelRepo struct {
	db *sql.DB
}

func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{db: db} }

const hotelSelect = `SELECT h.id, h.name, h.address_id, a.address, h.booker_id, h.created_at, h.updated_at
	FROM hotels h JOIN addresses a ON a.id = h.address_id`

func scanHotel(s rowScanner) (model.Hotel, error) {
	var h model.Hotel
	var booker sql.NullInt64
	if err := s.Scan(&h.ID, &h.Name, &h.AddressID, &h.Address, &booker, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return h, err
	}
	if booker.Valid {
		id := uint64(booker.Int64)
		h.BookerID = &id
	}
	return h, nil
}

func nullableID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

func (r *HotelRepo) Create(ctx context.Context, h *model.Hotel) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO hotels (name, address_id, booker_id) VALUES (?, ?, ?)`,
		h.Name, h.AddressID, nullableID(h.BookerID))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

func (r *HotelRepo) GetByID(ctx context.Context, id uint64) (*model.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, hotelSelect+` WHERE h.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHotelNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// List returns one page of hotels, optionally restricted to one address.
func (r *HotelRepo) List(ctx context.Context, addressID uint64, p Page) ([]model.Hotel, int64, error) {
	where, args := "", []any{}
	if addressID != 0 {
		where, args = ` WHERE h.address_id = ?`, append(args, addressID)
	}
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hotels h`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, hotelSelect+where+` ORDER BY h.updated_at DESC, h.id DESC LIMIT ? OFFSET ?`,
		append(args, p.PageSize, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []model.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, h)
	}
	return out, total, rows.Err()
}

func (r *HotelRepo) Update(ctx context.Context, h *model.Hotel) error {
	res, err := r.db.ExecContext(ctx, `UPDATE hotels SET name = ?, address_id = ?, booker_id = ? WHERE id = ?`,
		h.Name, h.AddressID, nullableID(h.BookerID), h.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, h.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *HotelRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM hotels WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHotelNotFound
	}
	return nil
}
