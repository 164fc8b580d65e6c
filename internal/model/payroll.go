package model

import "time"

// Payroll statuses.  Payout itself happens outside this service; PAID and
// FAILED are recorded by an admin.
const (
    PayrollPending = "PENDING"
    PayrollPaid    = "PAID"
    PayrollFailed  = "FAILED"
)

// Payroll is one salary entry for one employee.
// NetPay = BaseSalary + Allowances - Deductions.
type Payroll struct {
    ID          uint64     `json:"id"`                     // payrolls.id
    EmployeeID  uint64     `json:"employee_id"`            // payrolls.employee_id
    BaseSalary  int64      `json:"base_salary"`            // payrolls.base_salary
    Allowances  int64      `json:"allowances"`             // payrolls.allowances
    Deductions  int64      `json:"deductions"`             // payrolls.deductions
    NetPay      int64      `json:"net_pay"`                // payrolls.net_pay
    PaymentType string     `json:"payment_type"`           // payrolls.payment_type
    Status      string     `json:"status"`                 // payrolls.status
    ReferenceID string     `json:"reference_id,omitempty"` // payrolls.reference_id
    PaidAt      *time.Time `json:"paid_at,omitempty"`      // payrolls.paid_at
    CreatedAt   time.Time  `json:"created_at"`             // payrolls.created_at
}
