// Package service holds the business operations that span several
// repositories: the reservation transaction, ride creation, the booking
// ledger reads and the OTP flow.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/ride-booking/internal/logging"
	"github.com/iliyamo/ride-booking/internal/model"
	"github.com/iliyamo/ride-booking/internal/queue"
	"github.com/iliyamo/ride-booking/internal/repository"
	"github.com/iliyamo/ride-booking/internal/validation"
)

// Dispatcher receives booking events after commit.  queue.Publisher is the
// production implementation.
type Dispatcher interface {
	Publish(ctx context.Context, ev queue.BookingCreatedEvent) error
}

// ActivityRecorder stores audit entries.  repository.ActivityLogRepo
// satisfies it.
type ActivityRecorder interface {
	Create(ctx context.Context, e *model.ActivityLog) error
}

// BookingDetails are the passenger and payment fields of a reservation.
// Amount is the unit price in minor units as supplied by the client.
type BookingDetails struct {
	Name        string `json:"name" validate:"required,max=120"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	Amount      int64  `json:"amount" validate:"gt=0"`
	Currency    string `json:"currency" validate:"required,oneof=USD SLSH"`
	PaymentType string `json:"payment_type" validate:"required,oneof=CASH MOBILE_MONEY CARD"`
}

// Coordinator is the only writer of bookings and of the seats' booked flag.
type Coordinator struct {
	db         *sql.DB
	users      *repository.UserRepo
	rides      *repository.RideRepo
	seats      *repository.SeatRepo
	bookings   *repository.BookingRepo
	validator  *validation.Validator
	dispatcher Dispatcher
	activity   ActivityRecorder
}

// NewCoordinator wires the coordinator to an already opened handle.
// dispatcher and activity may be nil.
func NewCoordinator(db *sql.DB, users *repository.UserRepo, rides *repository.RideRepo, seats *repository.SeatRepo,
	bookings *repository.BookingRepo, v *validation.Validator, dispatcher Dispatcher, activity ActivityRecorder) *Coordinator {
	if db == nil || users == nil || rides == nil || seats == nil || bookings == nil || v == nil {
		panic("nil dependency passed to NewCoordinator")
	}
	return &Coordinator{db: db, users: users, rides: rides, seats: seats, bookings: bookings,
		validator: v, dispatcher: dispatcher, activity: activity}
}

var errClaimShort = errors.New("claimed fewer seats than requested")

// Reserve books seatIDs of ride rideID for userID.  Either the booking,
// its booking_seats rows and the booked flags are all committed, or none
// of them are.
func (c *Coordinator) Reserve(ctx context.Context, userID, rideID uint64, seatIDs []uint64, d BookingDetails) (*model.Booking, error) {
	ids := uniqueIDs(seatIDs)
	if len(ids) == 0 {
		return nil, &ValidationError{Message: "seat_ids must contain at least one seat", Fields: map[string]string{"seat_ids": "seat_ids is required"}}
	}
	d.Name = strings.TrimSpace(d.Name)
	d.PhoneNumber = strings.TrimSpace(d.PhoneNumber)
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
	d.PaymentType = strings.ToUpper(strings.TrimSpace(d.PaymentType))
	if err := c.validator.Struct(d); err != nil {
		return nil, validationFrom(err)
	}
	if d.Amount > math.MaxInt64/int64(len(ids)) {
		return nil, &ValidationError{Message: "amount is too large", Fields: map[string]string{"amount": "amount times seat count exceeds the allowed total"}}
	}
	ok, err := c.users.Exists(ctx, userID, "")
	if err != nil {
		return nil, internal("load user", err)
	}
	if !ok {
		return nil, &ValidationError{Message: "user does not exist", Fields: map[string]string{"user_id": "user does not exist"}}
	}
	ride, err := c.rides.GetByID(ctx, rideID)
	if errors.Is(err, repository.ErrRideNotFound) {
		return nil, &NotFoundError{Resource: "ride", ID: rideID}
	}
	if err != nil {
		return nil, internal("load ride", err)
	}

	seats, err := c.seats.ListByRide(ctx, rideID)
	if err != nil {
		return nil, internal("load seats", err)
	}
	byID := make(map[uint64]model.Seat, len(seats))
	for _, s := range seats {
		byID[s.ID] = s
	}
	var unknown []uint64
	var booked []int
	numbers := make([]int, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		if s.IsBooked {
			booked = append(booked, s.SeatNumber)
		}
		numbers = append(numbers, s.SeatNumber)
	}
	if len(unknown) > 0 {
		return nil, &InvalidReferenceError{Kind: "seat", IDs: unknown}
	}
	// Optimistic pre-check; ClaimSeatsTx below is authoritative.
	if len(booked) > 0 {
		sort.Ints(booked)
		return nil, &SeatConflictError{SeatNumbers: booked}
	}

	b := &model.Booking{
		UserID:         userID,
		ScheduleRideID: rideID,
		SeatIDs:        ids,
		Name:           d.Name,
		PhoneNumber:    d.PhoneNumber,
		Amount:         d.Amount,
		Qty:            len(ids),
		TotalAmount:    d.Amount * int64(len(ids)),
		Currency:       d.Currency,
		PaymentType:    d.PaymentType,
		PaymentStatus:  model.PaymentPending,
	}
	err = c.commitReservation(ctx, b)
	switch {
	case errors.Is(err, errClaimShort), errors.Is(err, repository.ErrDuplicate):
		return nil, &SeatConflictError{SeatNumbers: c.lostSeats(ctx, rideID, ids)}
	case err != nil:
		return nil, internal("reserve seats", err)
	}

	sort.Ints(numbers)
	c.afterCommit(ctx, b, ride, numbers)
	return b, nil
}

// commitReservation runs the claim and the ledger inserts in one
// transaction.
func (c *Coordinator) commitReservation(ctx context.Context, b *model.Booking) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	n, err := c.seats.ClaimSeatsTx(ctx, tx, b.ScheduleRideID, b.SeatIDs)
	if err != nil {
		return err
	}
	if n != int64(len(b.SeatIDs)) {
		return errClaimShort
	}
	if err := c.bookings.CreateTx(ctx, tx, b); err != nil {
		return err
	}
	if err := c.bookings.CreateSeatsBulkTx(ctx, tx, b.ID, b.SeatIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	return nil
}

// lostSeats re-reads the inventory after a failed claim and reports which
// requested seats are now booked.  Errors are logged and yield nil.
func (c *Coordinator) lostSeats(ctx context.Context, rideID uint64, ids []uint64) []int {
	seats, err := c.seats.ListByRide(ctx, rideID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Uint64("ride_id", rideID).Msg("reserve: reload seats after conflict failed")
		return nil
	}
	want := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var lost []int
	for _, s := range seats {
		if _, ok := want[s.ID]; ok && s.IsBooked {
			lost = append(lost, s.SeatNumber)
		}
	}
	return lost
}

// afterCommit records the activity and hands the event to the dispatcher.
// Neither can fail the reservation.
func (c *Coordinator) afterCommit(ctx context.Context, b *model.Booking, ride *model.ScheduledRide, numbers []int) {
	log := logging.Ctx(ctx)
	if c.activity != nil {
		details, _ := json.Marshal(map[string]any{"ride_id": b.ScheduleRideID, "seat_numbers": numbers, "total_amount": b.TotalAmount})
		entry := &model.ActivityLog{UserID: b.UserID, Action: model.ActionBookingCreated, TargetType: "booking", TargetID: b.ID, Details: details}
		if err := c.activity.Create(ctx, entry); err != nil {
			log.Warn().Err(err).Uint64("booking_id", b.ID).Msg("activity log write failed")
		}
	}
	if c.dispatcher == nil {
		return
	}
	ev := queue.BookingCreatedEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		RideID:      b.ScheduleRideID,
		Name:        b.Name,
		Phone:       b.PhoneNumber,
		SeatNumbers: numbers,
		Qty:         b.Qty,
		TotalAmount: b.TotalAmount,
		Currency:    b.Currency,
		PaymentType: b.PaymentType,
		Day:         ride.Day,
		StartsAt:    ride.StartTime.UTC().Format(time.RFC3339),
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
	}
	if err := c.dispatcher.Publish(ctx, ev); err != nil {
		log.Error().Err(err).Uint64("booking_id", b.ID).Msg("booking notification dispatch failed")
	}
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func validationFrom(err error) error {
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		return &ValidationError{Message: fe.Error(), Fields: fe.Map(), Err: err}
	}
	return &ValidationError{Err: err}
}
