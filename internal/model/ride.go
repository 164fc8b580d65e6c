package model

import "time"

// Days a scheduled ride can run on.
var Days = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// ScheduledRide is one timed departure of a route by a vehicle.  Its seats
// are generated together with the ride (one per unit of vehicle capacity)
// and TotalSeats never changes afterwards.  Only fares and times may be
// edited by an administrator.
//
// Fields:
//  ID         – primary key identifier.
//  RouteID    – route being operated.
//  VehicleID  – vehicle used for the ride.
//  DriverID   – driver operating the ride.
//  FareUSD    – unit fare in USD minor units.
//  FareSLSH   – unit fare in SLSH minor units.
//  Day        – day of week (MONDAY..SUNDAY).
//  StartTime  – departure time (UTC).
//  EndTime    – arrival time (UTC).
//  TotalSeats – seat count fixed at creation.
type ScheduledRide struct {
    ID         uint64    `json:"id"`          // schedule_rides.id
    RouteID    uint64    `json:"route_id"`    // schedule_rides.route_id
    VehicleID  uint64    `json:"vehicle_id"`  // schedule_rides.vehicle_id
    DriverID   uint64    `json:"driver_id"`   // schedule_rides.driver_id
    CreatedBy  uint64    `json:"created_by"`  // schedule_rides.created_by
    FareUSD    int64     `json:"fare_usd"`    // schedule_rides.fare_usd
    FareSLSH   int64     `json:"fare_slsh"`   // schedule_rides.fare_slsh
    Day        string    `json:"day"`         // schedule_rides.day
    StartTime  time.Time `json:"start_time"`  // schedule_rides.start_time
    EndTime    time.Time `json:"end_time"`    // schedule_rides.end_time
    TotalSeats int       `json:"total_seats"` // schedule_rides.total_seats
    CreatedAt  time.Time `json:"created_at"`  // schedule_rides.created_at
    UpdatedAt  time.Time `json:"updated_at"`  // schedule_rides.updated_at
}

// IsValidDay reports whether d is one of Days.
func IsValidDay(d string) bool {
    for _, x := range Days {
        if x == d {
            return true
        }
    }
    return false
}
