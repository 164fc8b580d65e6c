package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/ride-booking/internal/database"
	"github.com/iliyamo/ride-booking/internal/model"
)

// BookingRepo stores bookings and their booking_seats rows.  Writes only
// happen inside the reservation transaction; everything else is reads
// plus the payment status transition.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts the booking row inside tx and populates ID.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	seatIDs, err := json.Marshal(b.SeatIDs)
	if err != nil {
		return err
	}
	const q = `INSERT INTO bookings
		(user_id, schedule_ride_id, seat_ids, name, phone_number, amount, qty, total_amount, currency, payment_type, payment_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.ScheduleRideID, string(seatIDs), b.Name, b.PhoneNumber,
		b.Amount, b.Qty, b.TotalAmount, b.Currency, b.PaymentType, b.PaymentStatus)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// CreateSeatsBulkTx links every seat to the booking in one INSERT.  A
// seat already linked to another booking violates uq_booking_seat and is
// reported as ErrDuplicate.
func (r *BookingRepo) CreateSeatsBulkTx(ctx context.Context, tx *sql.Tx, bookingID uint64, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (booking_id, seat_id) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*2)
	for i, id := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, bookingID, id)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if database.IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// BookedSeat is a seat as shown in booking details.
type BookedSeat struct {
	SeatID     uint64 `json:"seat_id"`
	SeatNumber int    `json:"seat_number"`
}

// BookingDetail is a booking joined with its ride, route and seats.
type BookingDetail struct {
	model.Booking
	Ride struct {
		ID        uint64    `json:"id"`
		Day       string    `json:"day"`
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
	} `json:"ride"`
	Route struct {
		ID   uint64 `json:"id"`
		From string `json:"from"`
		End  string `json:"end"`
	} `json:"route"`
	Seats []BookedSeat `json:"seats"`
}

const bookingDetailSelect = `SELECT b.id, b.user_id, b.schedule_ride_id, b.seat_ids, b.name, b.phone_number,
	b.amount, b.qty, b.total_amount, b.currency, b.payment_type, b.payment_status, b.created_at, b.updated_at,
	sr.id, sr.day, sr.start_time, sr.end_time, rt.id, rt.origin, rt.destination
	FROM bookings b
	JOIN schedule_rides sr ON sr.id = b.schedule_ride_id
	JOIN routes rt ON rt.id = sr.route_id`

func scanBookingDetail(s rowScanner) (BookingDetail, error) {
	var d BookingDetail
	var seatIDs []byte
	err := s.Scan(&d.ID, &d.UserID, &d.ScheduleRideID, &seatIDs, &d.Name, &d.PhoneNumber,
		&d.Amount, &d.Qty, &d.TotalAmount, &d.Currency, &d.PaymentType, &d.PaymentStatus, &d.CreatedAt, &d.UpdatedAt,
		&d.Ride.ID, &d.Ride.Day, &d.Ride.StartTime, &d.Ride.EndTime, &d.Route.ID, &d.Route.From, &d.Route.End)
	if err != nil {
		return d, err
	}
	d.SeatIDs = []uint64{}
	if len(seatIDs) > 0 {
		if err := json.Unmarshal(seatIDs, &d.SeatIDs); err != nil {
			return d, fmt.Errorf("decode seat_ids of booking %d: %w", d.ID, err)
		}
	}
	d.Seats = []BookedSeat{}
	return d, nil
}

// GetByID returns one booking with ride, route and seats.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*BookingDetail, error) {
	d, err := scanBookingDetail(r.db.QueryRowContext(ctx, bookingDetailSelect+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	list := []BookingDetail{d}
	if err := r.attachSeats(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// List returns a page of all bookings, newest first.
func (r *BookingRepo) List(ctx context.Context, p Page) ([]BookingDetail, int64, error) {
	return r.list(ctx, "", nil, p)
}

// ListByRide returns a page of the ride's bookings.
func (r *BookingRepo) ListByRide(ctx context.Context, rideID uint64, p Page) ([]BookingDetail, int64, error) {
	return r.list(ctx, " WHERE b.schedule_ride_id = ?", []any{rideID}, p)
}

// ListByUser returns a page of the bookings made by userID.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64, p Page) ([]BookingDetail, int64, error) {
	return r.list(ctx, " WHERE b.user_id = ?", []any{userID}, p)
}

func (r *BookingRepo) list(ctx context.Context, where string, args []any, p Page) ([]BookingDetail, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings b`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	out := []BookingDetail{}
	if total == 0 {
		return out, 0, nil
	}
	q := bookingDetailSelect + where + ` ORDER BY b.created_at DESC, b.id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(append([]any{}, args...), p.PageSize, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attachSeats(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// attachSeats loads seat numbers for all bookings in one query.
func (r *BookingRepo) attachSeats(ctx context.Context, list []BookingDetail) error {
	if len(list) == 0 {
		return nil
	}
	idx := make(map[uint64]int, len(list))
	args := make([]any, 0, len(list))
	for i, d := range list {
		idx[d.ID] = i
		args = append(args, d.ID)
	}
	q := `SELECT bs.booking_id, s.id, s.seat_number FROM booking_seats bs
		JOIN seats s ON s.id = bs.seat_id
		WHERE bs.booking_id IN (?` + strings.Repeat(",?", len(list)-1) + `)
		ORDER BY bs.booking_id, s.seat_number`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var bookingID uint64
		var s BookedSeat
		if err := rows.Scan(&bookingID, &s.SeatID, &s.SeatNumber); err != nil {
			return err
		}
		if i, ok := idx[bookingID]; ok {
			list[i].Seats = append(list[i].Seats, s)
		}
	}
	return rows.Err()
}

// UpdatePaymentStatus changes only payment_status and returns the
// previous value.  Seat set and quantity are never modified here.
func (r *BookingRepo) UpdatePaymentStatus(ctx context.Context, id uint64, status string) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var prev string
	err = tx.QueryRowContext(ctx, `SELECT payment_status FROM bookings WHERE id = ? FOR UPDATE`, id).Scan(&prev)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrBookingNotFound
	}
	if err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE bookings SET payment_status = ? WHERE id = ?`, status, id); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	committed = true
	return prev, nil
}
