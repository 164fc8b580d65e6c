package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/ride-booking/internal/database"
	"github.com/iliyamo/ride-booking/internal/model"
)

// RouteRepo provides access to the routes catalog.
type RouteRepo struct {
	db *sql.DB
}

func NewRouteRepo(db *sql.DB) *RouteRepo { return &RouteRepo{db: db} }

// Create inserts a route and populates its ID.
func (r *RouteRepo) Create(ctx context.Context, rt *model.Route) error {
	const q = `INSERT INTO routes (created_by, origin, destination) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rt.CreatedBy, rt.From, rt.End)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)
	return nil
}

func (r *RouteRepo) GetByID(ctx context.Context, id uint64) (*model.Route, error) {
	const q = `SELECT id, created_by, origin, destination, created_at FROM routes WHERE id = ?`
	var rt model.Route
	err := r.db.QueryRowContext(ctx, q, id).Scan(&rt.ID, &rt.CreatedBy, &rt.From, &rt.End, &rt.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRouteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// List returns one page of routes ordered by id and the total count.
func (r *RouteRepo) List(ctx context.Context, p Page) ([]model.Route, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM routes`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_by, origin, destination, created_at FROM routes ORDER BY id LIMIT ? OFFSET ?`,
		p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []model.Route{}
	for rows.Next() {
		var rt model.Route
		if err := rows.Scan(&rt.ID, &rt.CreatedBy, &rt.From, &rt.End, &rt.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, rt)
	}
	return out, total, rows.Err()
}

// Delete removes a route.  Routes that still have scheduled rides are
// kept and ErrConflict is returned.
func (r *RouteRepo) Delete(ctx context.Context, id uint64) error {
	var rides int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schedule_rides WHERE route_id = ?`, id).Scan(&rides); err != nil {
		return err
	}
	if rides > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM routes WHERE id = ?`, id)
	if err != nil {
		if database.IsRowReferenced(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRouteNotFound
	}
	return nil
}
