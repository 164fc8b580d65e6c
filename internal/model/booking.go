package model

import "time"

// Accepted values of the enumerated booking fields.
const (
    CurrencyUSD  = "USD"
    CurrencySLSH = "SLSH"

    PaymentCash        = "CASH"
    PaymentMobileMoney = "MOBILE_MONEY"
    PaymentCard        = "CARD"

    PaymentPending  = "PENDING"
    PaymentPaid     = "PAID"
    PaymentFailed   = "FAILED"
    PaymentRefunded = "REFUNDED"
)

// Booking records one committed reservation of one or more seats on a
// scheduled ride.  The seat set is stored twice: as SeatIDs on the row
// and as booking_seats join rows.  After creation only PaymentStatus may
// change.
//
// Fields:
//  ID             – primary key identifier.
//  UserID         – user who made the booking.
//  ScheduleRideID – ride being booked.
//  SeatIDs        – seats claimed (stored as JSON).
//  Name           – passenger name.
//  PhoneNumber    – passenger phone used for notifications.
//  Amount         – unit amount in minor units.
//  Qty            – number of seats (= len(SeatIDs)).
//  TotalAmount    – Amount × Qty.
//  Currency       – USD or SLSH.
//  PaymentType    – CASH, MOBILE_MONEY or CARD.
//  PaymentStatus  – PENDING, PAID, FAILED or REFUNDED.
type Booking struct {
    ID             uint64    `json:"id"`               // bookings.id
    UserID         uint64    `json:"user_id"`          // bookings.user_id
    ScheduleRideID uint64    `json:"schedule_ride_id"` // bookings.schedule_ride_id
    SeatIDs        []uint64  `json:"seat_ids"`         // bookings.seat_ids (JSON)
    Name           string    `json:"name"`             // bookings.name
    PhoneNumber    string    `json:"phone_number"`     // bookings.phone_number
    Amount         int64     `json:"amount"`           // bookings.amount
    Qty            int       `json:"qty"`              // bookings.qty
    TotalAmount    int64     `json:"total_amount"`     // bookings.total_amount
    Currency       string    `json:"currency"`         // bookings.currency
    PaymentType    string    `json:"payment_type"`     // bookings.payment_type
    PaymentStatus  string    `json:"payment_status"`   // bookings.payment_status
    CreatedAt      time.Time `json:"created_at"`       // bookings.created_at
    UpdatedAt      time.Time `json:"updated_at"`       // bookings.updated_at
}

// BookingSeat links a booking to one seat.  seat_id is unique across the
// table, so a seat can be held by at most one booking.
type BookingSeat struct {
    ID        uint64 // booking_seats.id
    BookingID uint64 // booking_seats.booking_id
    SeatID    uint64 // booking_seats.seat_id
}
