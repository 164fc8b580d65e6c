// Package queue carries domain events over RabbitMQ.
package queue

// BookingCreatedQueue is the durable queue booking events are published to.
const BookingCreatedQueue = "booking.created"

// BookingCreatedEvent is published after a reservation commits.  It holds
// everything the notification consumer needs without reading the
// database.
type BookingCreatedEvent struct {
	BookingID   uint64 `json:"booking_id"`
	UserID      uint64 `json:"user_id"`
	RideID      uint64 `json:"ride_id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	SeatNumbers []int  `json:"seat_numbers"`
	Qty         int    `json:"qty"`
	TotalAmount int64  `json:"total_amount"`
	Currency    string `json:"currency"`
	PaymentType string `json:"payment_type"`
	Day         string `json:"day"`
	StartsAt    string `json:"starts_at"`
	CreatedAt   string `json:"created_at"`
}
