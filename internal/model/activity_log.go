package model

import (
    "encoding/json"
    "time"
)

// Activity log actions.
const (
    ActionBookingCreated       = "BOOKING_CREATED"
    ActionRideCreated          = "RIDE_CREATED"
    ActionPaymentStatusUpdated = "PAYMENT_STATUS_UPDATED"
    ActionHotelCreated         = "HOTEL_CREATED"
    ActionEmployeeCreated      = "EMPLOYEE_CREATED"
    ActionPayrollGenerated     = "PAYROLL_GENERATED"
)

// ActivityLog is an audit entry describing who did what to which record.
type ActivityLog struct {
    ID         uint64          `json:"id"`          // activity_logs.id
    UserID     uint64          `json:"user_id"`     // activity_logs.user_id
    Action     string          `json:"action"`      // activity_logs.action
    TargetType string          `json:"target_type"` // activity_logs.target_type
    TargetID   uint64          `json:"target_id"`   // activity_logs.target_id
    Details    json.RawMessage `json:"details"`     // activity_logs.details (JSON)
    CreatedAt  time.Time       `json:"created_at"`  // activity_logs.created_at
}
