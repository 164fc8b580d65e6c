package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-booking/internal/service"
	"github.com/iliyamo/ride-booking/internal/validation"
)

// OTPHandler issues and checks phone verification codes.
type OTPHandler struct {
	OTP       *service.OTPService
	Validator *validation.Validator
}

func NewOTPHandler(otp *service.OTPService, v *validation.Validator) *OTPHandler {
	return &OTPHandler{OTP: otp, Validator: v}
}

type otpRequestReq struct {
	Phone string `json:"phone" validate:"required,phone"`
}

type otpVerifyReq struct {
	Phone string `json:"phone" validate:"required,phone"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

func (h *OTPHandler) Request(c echo.Context) error {
	var req otpRequestReq
	if err := bindAndValidate(c, h.Validator, &req); err != nil {
		return writeServiceError(c, err)
	}
	res, err := h.OTP.Request(c.Request().Context(), req.Phone)
	if err != nil {
		return h.otpError(c, err)
	}
	return c.JSON(http.StatusAccepted, res)
}

func (h *OTPHandler) Verify(c echo.Context) error {
	var req otpVerifyReq
	if err := bindAndValidate(c, h.Validator, &req); err != nil {
		return writeServiceError(c, err)
	}
	if err := h.OTP.Verify(c.Request().Context(), req.Phone, req.Code); err != nil {
		return h.otpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"verified": true})
}

func (h *OTPHandler) otpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrOTPUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrOTPInvalid):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	}
	return writeServiceError(c, err)
}
