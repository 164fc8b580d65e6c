package model

import "time"

// Hotel is a partner hotel at an address.  BookerID optionally names the
// user who books rooms there.
type Hotel struct {
    ID        uint64    `json:"id"`                  // hotels.id
    Name      string    `json:"name"`                // hotels.name
    AddressID uint64    `json:"address_id"`          // hotels.address_id
    Address   string    `json:"address,omitempty"`   // addresses.address (joined)
    BookerID  *uint64   `json:"booker_id,omitempty"` // hotels.booker_id
    CreatedAt time.Time `json:"created_at"`          // hotels.created_at
    UpdatedAt time.Time `json:"updated_at"`          // hotels.updated_at
}
