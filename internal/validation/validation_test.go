package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone_number" validate:"required,phone"`
	Currency string `json:"currency" validate:"required,oneof=USD SLSH"`
	Amount   int64  `json:"amount" validate:"gt=0"`
}

func TestStructValid(t *testing.T) {
	v := New()
	err := v.Struct(sample{Name: "Ayaan", Phone: "+252634000000", Currency: "USD", Amount: 500})
	if err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestStructTranslatesMessages(t *testing.T) {
	v := New()
	err := v.Struct(sample{Phone: "abc", Currency: "EUR"})
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %T %v", err, err)
	}
	got := map[string]string{}
	for _, e := range fe {
		got[e.Field] = e.Message
	}
	if got["name"] != "name is required" {
		t.Fatalf("name message: %q", got["name"])
	}
	if got["phone_number"] != "phone_number must be a valid phone number" {
		t.Fatalf("phone message: %q", got["phone_number"])
	}
	if got["currency"] != "currency must be one of: USD SLSH" {
		t.Fatalf("currency message: %q", got["currency"])
	}
	if got["amount"] != "amount must be greater than 0" {
		t.Fatalf("amount message: %q", got["amount"])
	}
	if !strings.HasPrefix(err.Error(), "validation failed:") {
		t.Fatalf("unexpected error text %q", err.Error())
	}
}
