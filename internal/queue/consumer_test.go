package queue

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

type captureNotifier struct {
	phones []string
	body   string
}

func (c *captureNotifier) Send(ctx context.Context, phone, body string) error {
	return c.SendBulk(ctx, []string{phone}, body)
}

func (c *captureNotifier) SendBulk(_ context.Context, phones []string, body string) error {
	c.phones = append(c.phones, phones...)
	c.body = body
	return nil
}

func TestHandleNotifiesPassengerAndAdmins(t *testing.T) {
	n := &captureNotifier{}
	c := NewConsumer("", n, []string{"+252630000001", "+252634111111"})
	body := []byte(`{"booking_id":5,"ride_id":2,"name":"Hodan","phone":"+252634111111",
		"seat_numbers":[1,2],"qty":2,"total_amount":1050,"currency":"USD","payment_type":"CASH",
		"day":"MONDAY","starts_at":"2026-03-02T06:00:00Z"}`)
	if err := c.Handle(context.Background(), body); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !reflect.DeepEqual(n.phones, []string{"+252634111111", "+252630000001"}) {
		t.Fatalf("recipients %v", n.phones)
	}
	for _, want := range []string{"Booking #5", "Seats: 1, 2 (2)", "Total: 10.50 USD", "MONDAY"} {
		if !strings.Contains(n.body, want) {
			t.Fatalf("message %q missing %q", n.body, want)
		}
	}
}

func TestHandleRejectsBadPayload(t *testing.T) {
	c := NewConsumer("", &captureNotifier{}, nil)
	if err := c.Handle(context.Background(), []byte("{")); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(5); got != "0.05" {
		t.Fatalf("got %s", got)
	}
	if got := FormatAmount(-1234); got != "-12.34" {
		t.Fatalf("got %s", got)
	}
}
