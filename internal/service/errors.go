package service

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports malformed or missing input.  Fields carries
// per-field messages when available.
type ValidationError struct {
	Message string
	Fields  map[string]string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "validation failed"
}

func (e *ValidationError) Unwrap() error { return e.Err }

// InvalidReferenceError reports ids that do not resolve or do not belong
// together, such as seat ids of another ride.
type InvalidReferenceError struct {
	Kind string
	IDs  []uint64
}

func (e *InvalidReferenceError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("invalid %s reference: %s", e.Kind, strings.Join(ids, ","))
}

// SeatConflictError means at least one requested seat is already booked.
// SeatNumbers lists the seats that were lost when they are known.
type SeatConflictError struct {
	SeatNumbers []int
}

func (e *SeatConflictError) Error() string {
	if len(e.SeatNumbers) == 0 {
		return "seats are no longer available"
	}
	nums := make([]string, len(e.SeatNumbers))
	for i, n := range e.SeatNumbers {
		nums[i] = fmt.Sprint(n)
	}
	return "seats already booked: " + strings.Join(nums, ",")
}

// NotFoundError is a read-side miss.
type NotFoundError struct {
	Resource string
	ID       uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// InternalError wraps a persistence or infrastructure failure.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

func internal(op string, err error) error { return &InternalError{Op: op, Err: err} }

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsInvalidReference(err error) bool {
	var e *InvalidReferenceError
	return errors.As(err, &e)
}

func IsSeatConflict(err error) bool {
	var e *SeatConflictError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsInternal(err error) bool {
	var e *InternalError
	return errors.As(err, &e)
}
