package model

import "time"

const (
    SexMale   = "MALE"
    SexFemale = "FEMALE"

    EmployeeActive   = "ACTIVE"
    EmployeeInactive = "INACTIVE"
)

// Employee is a staff member.  Salary is the monthly base pay in minor
// units; only ACTIVE employees are included when payroll is generated.
type Employee struct {
    ID        uint64    `json:"id"`         // employees.id
    CreatedBy uint64    `json:"created_by"` // employees.created_by
    Name      string    `json:"name"`       // employees.name
    Phone     string    `json:"phone"`      // employees.phone (unique)
    Sex       string    `json:"sex"`        // employees.sex
    Position  string    `json:"position"`   // employees.position
    Address   string    `json:"address"`    // employees.address
    Status    string    `json:"status"`     // employees.status
    Notes     string    `json:"notes"`      // employees.notes
    Salary    int64     `json:"salary"`     // employees.salary
    CreatedAt time.Time `json:"created_at"` // employees.created_at
    UpdatedAt time.Time `json:"updated_at"` // employees.updated_at
}
