package model

// Seat is one bookable unit of capacity on a scheduled ride.  Seat numbers
// run from 1 to the ride's capacity and are unique within the ride.
// IsBooked flips from false to true exactly once, when a reservation that
// claims the seat commits.
//
// Fields:
//  ID             – primary key identifier.
//  ScheduleRideID – ride the seat belongs to.
//  SeatNumber     – ordinal position 1..capacity.
//  IsBooked       – true once claimed by a committed booking.
type Seat struct {
    ID             uint64 `json:"id"`               // seats.id
    ScheduleRideID uint64 `json:"schedule_ride_id"` // seats.schedule_ride_id
    SeatNumber     int    `json:"seat_number"`      // seats.seat_number
    IsBooked       bool   `json:"is_booked"`        // seats.is_booked
}
