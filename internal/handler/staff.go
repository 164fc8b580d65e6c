package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-booking/internal/model"
	"github.com/iliyamo/ride-booking/internal/repository"
	"github.com/iliyamo/ride-booking/internal/service"
	"github.com/iliyamo/ride-booking/internal/validation"
)

// StaffHandler serves employees and their payroll.
type StaffHandler struct {
	Service   *service.StaffService
	Employees *repository.EmployeeRepo
	Validator *validation.Validator
}

func NewStaffHandler(svc *service.StaffService, employees *repository.EmployeeRepo, v *validation.Validator) *StaffHandler {
	if svc == nil || employees == nil || v == nil {
		panic("nil dependency passed to NewStaffHandler")
	}
	return &StaffHandler{Service: svc, Employees: employees, Validator: v}
}

// CreateEmployees takes a JSON array.  Items that cannot be stored are
// listed under "rejected"; the rest are created.
func (h *StaffHandler) CreateEmployees(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var items []service.EmployeeInput
	if err := c.Bind(&items); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body must be an array of employees"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	batch, err := h.Service.CreateEmployees(ctx, uid, items)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, batch)
}

func (h *StaffHandler) ListEmployees(c echo.Context) error {
	p := pageFrom(c)
	ctx, cancel := requestCtx(c)
	defer cancel()
	items, total, err := h.Employees.List(ctx, p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, service.PageResult[model.Employee]{Data: items, Pagination: p.Meta(total)})
}

func (h *StaffHandler) GetEmployee(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	e, err := h.Employees.GetByID(ctx, id)
	if errors.Is(err, repository.ErrEmployeeNotFound) {
		return writeServiceError(c, &service.NotFoundError{Resource: "employee", ID: id})
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *StaffHandler) UpdateEmployee(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
	}
	var req service.EmployeeInput
	if err := c.Bind(&req); err != nil {
		return writeServiceError(c, &service.ValidationError{Message: "invalid body", Err: err})
	}
	req.Normalize()
	if err := validateStruct(h.Validator, &req); err != nil {
		return writeServiceError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	current, err := h.Employees.GetByID(ctx, id)
	if errors.Is(err, repository.ErrEmployeeNotFound) {
		return writeServiceError(c, &service.NotFoundError{Resource: "employee", ID: id})
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	e := &model.Employee{ID: id, CreatedBy: current.CreatedBy, Name: req.Name, Phone: req.Phone, Sex: req.Sex,
		Position: req.Position, Address: req.Address, Status: req.Status, Notes: req.Notes, Salary: req.Salary}
	switch err := h.Employees.Update(ctx, e); {
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": "phone already exists"})
	case errors.Is(err, repository.ErrEmployeeNotFound):
		return writeServiceError(c, &service.NotFoundError{Resource: "employee", ID: id})
	case err != nil:
		return writeServiceError(c, err)
	}
	updated, err := h.Employees.GetByID(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *StaffHandler) DeleteEmployee(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	err := h.Employees.Delete(ctx, id)
	if errors.Is(err, repository.ErrEmployeeNotFound) {
		return writeServiceError(c, &service.NotFoundError{Resource: "employee", ID: id})
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *StaffHandler) GeneratePayroll(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req service.PayrollInput
	if err := c.Bind(&req); err != nil {
		return writeServiceError(c, &service.ValidationError{Message: "invalid body", Err: err})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Service.GeneratePayroll(ctx, uid, req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": out, "count": len(out)})
}

func (h *StaffHandler) PayrollHistory(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	res, err := h.Service.PayrollHistory(ctx, id, pageFrom(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type settlePayrollReq struct {
	Status      string `json:"status"`
	ReferenceID string `json:"reference_id"`
}

func (h *StaffHandler) SettlePayroll(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payroll id"})
	}
	var req settlePayrollReq
	if err := c.Bind(&req); err != nil {
		return writeServiceError(c, &service.ValidationError{Message: "invalid body", Err: err})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	p, err := h.Service.SettlePayroll(ctx, id, req.Status, req.ReferenceID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
