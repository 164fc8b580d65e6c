package model

import "time"

// Address is an office or pickup location.  OfficerID is the user in
// charge of it; hotels reference addresses by id.
type Address struct {
    ID        uint64    `json:"id"`         // addresses.id
    Address   string    `json:"address"`    // addresses.address
    CreatedBy uint64    `json:"created_by"` // addresses.created_by
    OfficerID uint64    `json:"officer_id"` // addresses.officer_id
    CreatedAt time.Time `json:"created_at"` // addresses.created_at
    UpdatedAt time.Time `json:"updated_at"` // addresses.updated_at
}
