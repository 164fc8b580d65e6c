package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/ride-booking/internal/model"
)

// SeatRepo is the seat inventory of scheduled rides.  The booked flag of a
// seat is only ever changed through ClaimSeatsTx.
type SeatRepo struct {
	db *sql.DB
}

func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// CreateForRideTx inserts seats numbered 1..capacity, all unbooked, in a
// single statement.
func (r *SeatRepo) CreateForRideTx(ctx context.Context, tx *sql.Tx, rideID uint64, capacity int) error {
	if capacity <= 0 {
		return nil
	}
	query := `INSERT INTO seats (schedule_ride_id, seat_number, is_booked) VALUES `
	args := make([]interface{}, 0, capacity*2)
	for i := 1; i <= capacity; i++ {
		if i > 1 {
			query += ","
		}
		query += "(?, ?, 0)"
		args = append(args, rideID, i)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

const seatsByRideQuery = `SELECT id, schedule_ride_id, seat_number, is_booked FROM seats
	WHERE schedule_ride_id = ? ORDER BY seat_number`

// ListByRide returns every seat of the ride ordered by seat number.  An
// unknown ride yields an empty slice.
func (r *SeatRepo) ListByRide(ctx context.Context, rideID uint64) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx, seatsByRideQuery, rideID)
	if err != nil {
		return nil, err
	}
	return scanSeats(rows)
}

// ListByRideTx is ListByRide inside an open transaction.
func (r *SeatRepo) ListByRideTx(ctx context.Context, tx *sql.Tx, rideID uint64) ([]model.Seat, error) {
	rows, err := tx.QueryContext(ctx, seatsByRideQuery, rideID)
	if err != nil {
		return nil, err
	}
	return scanSeats(rows)
}

func scanSeats(rows *sql.Rows) ([]model.Seat, error) {
	defer rows.Close()
	out := []model.Seat{}
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.ScheduleRideID, &s.SeatNumber, &s.IsBooked); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ClaimSeatsTx flips the listed seats of the ride from unbooked to booked
// in one conditional UPDATE and returns how many rows changed.  A count
// below len(seatIDs) means another booking got at least one seat first;
// the caller must roll back.
func (r *SeatRepo) ClaimSeatsTx(ctx context.Context, tx *sql.Tx, rideID uint64, seatIDs []uint64) (int64, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}
	query := `UPDATE seats SET is_booked = 1 WHERE schedule_ride_id = ? AND is_booked = 0 AND id IN (?` +
		strings.Repeat(",?", len(seatIDs)-1) + `)`
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, rideID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
