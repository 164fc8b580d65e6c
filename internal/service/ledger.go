package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/iliyamo/ride-booking/internal/logging"
	"github.com/iliyamo/ride-booking/internal/model"
	"github.com/iliyamo/ride-booking/internal/repository"
)

// PageResult is the envelope of every paginated list.
type PageResult[T any] struct {
	Data       []T                 `json:"data"`
	Pagination repository.PageMeta `json:"pagination"`
}

// Ledger is the read side of bookings plus the payment status transition.
type Ledger struct {
	bookings *repository.BookingRepo
	rides    *repository.RideRepo
	activity ActivityRecorder
}

func NewLedger(bookings *repository.BookingRepo, rides *repository.RideRepo, activity ActivityRecorder) *Ledger {
	return &Ledger{bookings: bookings, rides: rides, activity: activity}
}

func (l *Ledger) Get(ctx context.Context, id uint64) (*repository.BookingDetail, error) {
	d, err := l.bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, &NotFoundError{Resource: "booking", ID: id}
	}
	if err != nil {
		return nil, internal("load booking", err)
	}
	return d, nil
}

func (l *Ledger) List(ctx context.Context, p repository.Page) (PageResult[repository.BookingDetail], error) {
	items, total, err := l.bookings.List(ctx, p)
	if err != nil {
		return PageResult[repository.BookingDetail]{}, internal("list bookings", err)
	}
	return PageResult[repository.BookingDetail]{Data: items, Pagination: p.Meta(total)}, nil
}

// ListByRide lists a ride's bookings; an unknown ride is NotFound.
func (l *Ledger) ListByRide(ctx context.Context, rideID uint64, p repository.Page) (PageResult[repository.BookingDetail], error) {
	if _, err := l.rides.GetByID(ctx, rideID); err != nil {
		if errors.Is(err, repository.ErrRideNotFound) {
			return PageResult[repository.BookingDetail]{}, &NotFoundError{Resource: "ride", ID: rideID}
		}
		return PageResult[repository.BookingDetail]{}, internal("load ride", err)
	}
	items, total, err := l.bookings.ListByRide(ctx, rideID, p)
	if err != nil {
		return PageResult[repository.BookingDetail]{}, internal("list ride bookings", err)
	}
	return PageResult[repository.BookingDetail]{Data: items, Pagination: p.Meta(total)}, nil
}

func (l *Ledger) ListByUser(ctx context.Context, userID uint64, p repository.Page) (PageResult[repository.BookingDetail], error) {
	items, total, err := l.bookings.ListByUser(ctx, userID, p)
	if err != nil {
		return PageResult[repository.BookingDetail]{}, internal("list user bookings", err)
	}
	return PageResult[repository.BookingDetail]{Data: items, Pagination: p.Meta(total)}, nil
}

var paymentStatuses = []string{model.PaymentPending, model.PaymentPaid, model.PaymentFailed, model.PaymentRefunded}

// UpdatePaymentStatus moves a booking to a new payment status.  The seat
// set and quantity of the booking are left untouched.
func (l *Ledger) UpdatePaymentStatus(ctx context.Context, actorID, bookingID uint64, status string) error {
	status = strings.ToUpper(strings.TrimSpace(status))
	valid := false
	for _, s := range paymentStatuses {
		if s == status {
			valid = true
		}
	}
	if !valid {
		return &ValidationError{
			Message: "payment_status must be one of: " + strings.Join(paymentStatuses, " "),
			Fields:  map[string]string{"payment_status": "payment_status must be one of: " + strings.Join(paymentStatuses, " ")},
		}
	}
	prev, err := l.bookings.UpdatePaymentStatus(ctx, bookingID, status)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return &NotFoundError{Resource: "booking", ID: bookingID}
	}
	if err != nil {
		return internal("update payment status", err)
	}
	if l.activity != nil {
		details, _ := json.Marshal(map[string]string{"from": prev, "to": status})
		entry := &model.ActivityLog{UserID: actorID, Action: model.ActionPaymentStatusUpdated, TargetType: "booking", TargetID: bookingID, Details: details}
		if err := l.activity.Create(ctx, entry); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Uint64("booking_id", bookingID).Msg("activity log write failed")
		}
	}
	return nil
}
