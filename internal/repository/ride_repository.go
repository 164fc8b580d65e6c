package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/ride-booking/internal/database"
	"github.com/iliyamo/ride-booking/internal/model"
)

// RideRepo provides access to scheduled rides.  Seat generation for a new
// ride happens in the same transaction as the ride insert, see
// CreateTx and SeatRepo.CreateForRideTx.
type RideRepo struct {
	db *sql.DB
}

func NewRideRepo(db *sql.DB) *RideRepo { return &RideRepo{db: db} }

// DB exposes the underlying handle so services can open transactions
// spanning several repositories.
func (r *RideRepo) DB() *sql.DB { return r.db }

const rideColumns = `id, route_id, vehicle_id, driver_id, created_by, fare_usd, fare_slsh, day,
	start_time, end_time, total_seats, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(s rowScanner) (model.ScheduledRide, error) {
	var rd model.ScheduledRide
	err := s.Scan(&rd.ID, &rd.RouteID, &rd.VehicleID, &rd.DriverID, &rd.CreatedBy, &rd.FareUSD, &rd.FareSLSH,
		&rd.Day, &rd.StartTime, &rd.EndTime, &rd.TotalSeats, &rd.CreatedAt, &rd.UpdatedAt)
	return rd, err
}

// CreateTx inserts the ride inside tx and populates its ID.
func (r *RideRepo) CreateTx(ctx context.Context, tx *sql.Tx, rd *model.ScheduledRide) error {
	const q = `INSERT INTO schedule_rides
		(route_id, vehicle_id, driver_id, created_by, fare_usd, fare_slsh, day, start_time, end_time, total_seats)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, rd.RouteID, rd.VehicleID, rd.DriverID, rd.CreatedBy, rd.FareUSD, rd.FareSLSH,
		rd.Day, rd.StartTime.UTC(), rd.EndTime.UTC(), rd.TotalSeats)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rd.ID = uint64(id)
	return nil
}

func (r *RideRepo) GetByID(ctx context.Context, id uint64) (*model.ScheduledRide, error) {
	rd, err := scanRide(r.db.QueryRowContext(ctx, `SELECT `+rideColumns+` FROM schedule_rides WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRideNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rd, nil
}

// List returns one page of rides ordered by departure.
func (r *RideRepo) List(ctx context.Context, p Page) ([]model.ScheduledRide, int64, error) {
	return r.list(ctx, "", nil, p)
}

// ListByRoutes returns rides operating any of routeIDs.  When day is
// non-nil only rides departing on that calendar day (UTC) are returned.
func (r *RideRepo) ListByRoutes(ctx context.Context, routeIDs []uint64, day *time.Time, p Page) ([]model.ScheduledRide, int64, error) {
	if len(routeIDs) == 0 {
		return []model.ScheduledRide{}, 0, nil
	}
	where := " WHERE route_id IN (?" + strings.Repeat(",?", len(routeIDs)-1) + ")"
	args := make([]any, 0, len(routeIDs)+2)
	for _, id := range routeIDs {
		args = append(args, id)
	}
	if day != nil {
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		where += " AND start_time >= ? AND start_time < ?"
		args = append(args, start, start.Add(24*time.Hour))
	}
	return r.list(ctx, where, args, p)
}

func (r *RideRepo) list(ctx context.Context, where string, args []any, p Page) ([]model.ScheduledRide, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schedule_rides`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	q := `SELECT ` + rideColumns + ` FROM schedule_rides` + where + ` ORDER BY start_time, id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(append([]any{}, args...), p.PageSize, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []model.ScheduledRide{}
	for rows.Next() {
		rd, err := scanRide(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rd)
	}
	return out, total, rows.Err()
}

// UpdateFareAndTime applies the only edits allowed after creation.  The
// seat set and total_seats are never touched.
func (r *RideRepo) UpdateFareAndTime(ctx context.Context, id uint64, fareUSD, fareSLSH int64, day string, start, end time.Time) error {
	const q = `UPDATE schedule_rides SET fare_usd = ?, fare_slsh = ?, day = ?, start_time = ?, end_time = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, fareUSD, fareSLSH, day, start.UTC(), end.UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 for unchanged rows too; confirm the ride exists.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a ride and its seats.  Rides with bookings are kept and
// ErrConflict is returned.  The ride row is locked for the check so a
// booking cannot slip in between.
func (r *RideRepo) Delete(ctx context.Context, id uint64) error {
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
	var locked uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM schedule_rides WHERE id = ? FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRideNotFound
	}
	if err != nil {
		return err
	}
	var bookings int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE schedule_ride_id = ?`, id).Scan(&bookings); err != nil {
		return err
	}
	if bookings > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_rides WHERE id = ?`, id); err != nil {
		if database.IsRowReferenced(err) {
			return ErrConflict
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
