package model

import "time"

// Route is an origin/destination pair that scheduled rides operate on.
type Route struct {
    ID        uint64    `json:"id"`         // routes.id
    CreatedBy uint64    `json:"created_by"` // routes.created_by (admin user)
    From      string    `json:"from"`       // routes.origin
    End       string    `json:"end"`        // routes.destination
    CreatedAt time.Time `json:"created_at"` // routes.created_at
}
