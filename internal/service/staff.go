package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/ride-booking/internal/logging"
	"github.com/iliyamo/ride-booking/internal/model"
	"github.com/iliyamo/ride-booking/internal/repository"
	"github.com/iliyamo/ride-booking/internal/validation"
)

// EmployeeInput is one employee in a create or update request.  Money is
// in minor units; the caps keep NetPay far from int64 limits.
type EmployeeInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"required,phone"`
	Sex      string `json:"sex" validate:"required,oneof=MALE FEMALE"`
	Position string `json:"position" validate:"max=120"`
	Address  string `json:"address" validate:"max=255"`
	Status   string `json:"status" validate:"required,oneof=ACTIVE INACTIVE"`
	Notes    string `json:"notes" validate:"max=2000"`
	Salary   int64  `json:"salary" validate:"gte=0,lte=100000000000"`
}

// Normalize trims the text fields and upper-cases the enumerations.
func (in *EmployeeInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Sex = strings.ToUpper(strings.TrimSpace(in.Sex))
	in.Status = strings.ToUpper(strings.TrimSpace(in.Status))
	in.Position = strings.TrimSpace(in.Position)
	in.Address = strings.TrimSpace(in.Address)
}

func (in EmployeeInput) toModel(actorID uint64) model.Employee {
	return model.Employee{CreatedBy: actorID, Name: in.Name, Phone: in.Phone, Sex: in.Sex, Position: in.Position,
		Address: in.Address, Status: in.Status, Notes: in.Notes, Salary: in.Salary}
}

// RejectedEmployee explains why one item of a batch was skipped.
type RejectedEmployee struct {
	Index  int    `json:"index"`
	Phone  string `json:"phone"`
	Reason string `json:"reason"`
}

type EmployeeBatch struct {
	Created  []model.Employee   `json:"created"`
	Rejected []RejectedEmployee `json:"rejected"`
}

// PayrollInput is the shared part of a payroll run.
type PayrollInput struct {
	Allowances  int64  `json:"allowances" validate:"gte=0,lte=100000000000"`
	Deductions  int64  `json:"deductions" validate:"gte=0,lte=100000000000"`
	PaymentType string `json:"payment_type" validate:"required,oneof=CASH MOBILE_MONEY CARD"`
}

// StaffService manages employees in bulk and their payroll.
type StaffService struct {
	employees *repository.EmployeeRepo
	payrolls  *repository.PayrollRepo
	validator *validation.Validator
	activity  ActivityRecorder
	now       func() time.Time
}

func NewStaffService(employees *repository.EmployeeRepo, payrolls *repository.PayrollRepo, v *validation.Validator, activity ActivityRecorder) *StaffService {
	return &StaffService{employees: employees, payrolls: payrolls, validator: v, activity: activity,
		now: func() time.Time { return time.Now().UTC() }}
}

// CreateEmployees stores every valid item and reports the others.  Items
// fail on validation, on a phone repeated in the batch or on a phone
// already on file.  When nothing is valid the whole call is a
// ValidationError.
func (s *StaffService) CreateEmployees(ctx context.Context, actorID uint64, items []EmployeeInput) (*EmployeeBatch, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Message: "at least one employee is required", Fields: map[string]string{"employees": "employees is required"}}
	}
	batch := &EmployeeBatch{Created: []model.Employee{}, Rejected: []RejectedEmployee{}}
	reject := func(i int, phone, reason string) {
		batch.Rejected = append(batch.Rejected, RejectedEmployee{Index: i, Phone: phone, Reason: reason})
	}
	valid := make([]int, 0, len(items))
	seen := map[string]bool{}
	for i := range items {
		items[i].Normalize()
		if err := s.validator.Struct(items[i]); err != nil {
			reject(i, items[i].Phone, err.Error())
			continue
		}
		if seen[items[i].Phone] {
			reject(i, items[i].Phone, "phone repeated in request")
			continue
		}
		seen[items[i].Phone] = true
		valid = append(valid, i)
	}

	phones := make([]string, 0, len(valid))
	for _, i := range valid {
		phones = append(phones, items[i].Phone)
	}
	taken, err := s.employees.ExistingPhones(ctx, phones)
	if err != nil {
		return nil, internal("check employee phones", err)
	}
	emps := make([]model.Employee, 0, len(valid))
	for _, i := range valid {
		if taken[items[i].Phone] {
			reject(i, items[i].Phone, "phone already exists")
			continue
		}
		emps = append(emps, items[i].toModel(actorID))
	}
	if len(emps) == 0 {
		fields := make(map[string]string, len(batch.Rejected))
		for _, r := range batch.Rejected {
			fields[fmt.Sprintf("employees[%d]", r.Index)] = r.Reason
		}
		return nil, &ValidationError{Message: "no valid employee data", Fields: fields}
	}

	if err := s.employees.CreateMany(ctx, emps); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ValidationError{Message: "phone already exists", Fields: map[string]string{"phone": "phone already exists"}}
		}
		return nil, internal("create employees", err)
	}
	batch.Created = emps
	for _, e := range emps {
		s.record(ctx, actorID, model.ActionEmployeeCreated, "employee", e.ID, map[string]any{"name": e.Name, "phone": e.Phone})
	}
	return batch, nil
}

// GeneratePayroll creates a PENDING payroll for every active employee.
func (s *StaffService) GeneratePayroll(ctx context.Context, actorID uint64, in PayrollInput) ([]model.Payroll, error) {
	in.PaymentType = strings.ToUpper(strings.TrimSpace(in.PaymentType))
	if err := s.validator.Struct(in); err != nil {
		return nil, validationFrom(err)
	}
	out, err := s.payrolls.GenerateForActive(ctx, repository.PayrollRun{
		Allowances: in.Allowances, Deductions: in.Deductions, PaymentType: in.PaymentType,
	})
	if err != nil {
		return nil, internal("generate payroll", err)
	}
	if len(out) > 0 {
		s.record(ctx, actorID, model.ActionPayrollGenerated, "payroll", out[0].ID,
			map[string]any{"count": len(out), "payment_type": in.PaymentType})
	}
	return out, nil
}

// SettlePayroll records the payout result of a pending payroll.
func (s *StaffService) SettlePayroll(ctx context.Context, id uint64, status, reference string) (*model.Payroll, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != model.PayrollPaid && status != model.PayrollFailed {
		return nil, &ValidationError{Message: "invalid payroll status", Fields: map[string]string{"status": "status must be one of: PAID FAILED"}}
	}
	err := s.payrolls.SettlePending(ctx, id, status, strings.TrimSpace(reference), s.now())
	switch {
	case errors.Is(err, repository.ErrPayrollNotFound):
		return nil, &NotFoundError{Resource: "payroll", ID: id}
	case errors.Is(err, repository.ErrConflict):
		return nil, &ValidationError{Message: "payroll is not pending", Fields: map[string]string{"status": "payroll is not pending"}}
	case err != nil:
		return nil, internal("settle payroll", err)
	}
	p, err := s.payrolls.GetByID(ctx, id)
	if err != nil {
		return nil, internal("load payroll", err)
	}
	return p, nil
}

// PayrollHistory lists an employee's payrolls; an unknown employee is
// NotFound.
func (s *StaffService) PayrollHistory(ctx context.Context, employeeID uint64, p repository.Page) (PageResult[model.Payroll], error) {
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return PageResult[model.Payroll]{}, &NotFoundError{Resource: "employee", ID: employeeID}
		}
		return PageResult[model.Payroll]{}, internal("load employee", err)
	}
	items, total, err := s.payrolls.ListByEmployee(ctx, employeeID, p)
	if err != nil {
		return PageResult[model.Payroll]{}, internal("list payrolls", err)
	}
	return PageResult[model.Payroll]{Data: items, Pagination: p.Meta(total)}, nil
}

func (s *StaffService) record(ctx context.Context, actorID uint64, action, targetType string, targetID uint64, details map[string]any) {
	if s.activity == nil {
		return
	}
	raw, _ := json.Marshal(details)
	entry := &model.ActivityLog{UserID: actorID, Action: action, TargetType: targetType, TargetID: targetID, Details: raw}
	if err := s.activity.Create(ctx, entry); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("action", action).Msg("activity log write failed")
	}
}
