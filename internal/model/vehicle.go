package model

import (
    "strings"
    "time"
)

// Vehicle is a physical vehicle assigned to a driver.  Its capacity is
// derived from the vehicle type when the vehicle is registered and
// determines how many seats each scheduled ride on it receives.
//
// Fields:
//  ID        – primary key identifier.
//  VehicleNo – unique registration/plate number.
//  Type      – one of the VehicleCapacity keys.
//  Capacity  – seat count derived from Type.
//  DriverID  – user (DRIVER) operating the vehicle.
type Vehicle struct {
    ID        uint64    `json:"id"`         // vehicles.id
    VehicleNo string    `json:"vehicle_no"` // vehicles.vehicle_no
    Type      string    `json:"type"`       // vehicles.type
    Capacity  int       `json:"capacity"`   // vehicles.capacity
    DriverID  uint64    `json:"driver_id"`  // vehicles.driver_id
    CreatedAt time.Time `json:"created_at"` // vehicles.created_at
}

// VehicleCapacity maps a vehicle type to its number of passenger seats.
var VehicleCapacity = map[string]int{
    "Hiace": 14,
    "Bus":   40,
    "Taxi":  4,
    "Noah":  20,
}

// CapacityFor resolves a vehicle type case-insensitively.  It returns the
// canonical type name and its capacity, or ok=false for unknown types.
func CapacityFor(vehicleType string) (name string, capacity int, ok bool) {
    t := strings.TrimSpace(vehicleType)
    for k, v := range VehicleCapacity {
        if strings.EqualFold(k, t) {
            return k, v, true
        }
    }
    return "", 0, false
}
