// Package notify delivers short text messages (booking confirmations,
// OTP codes, scheduled broadcasts) to phone numbers.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/ride-booking/internal/logging"
)

// Notifier is the contract for a messaging provider.  Implementations
// must be safe for concurrent use.
type Notifier interface {
	Send(ctx context.Context, phone, body string) error
	SendBulk(ctx context.Context, phones []string, body string) error
}

// LogNotifier writes messages to the structured log instead of a
// provider.  It is the default when no provider is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (LogNotifier) Send(ctx context.Context, phone, body string) error {
	if strings.TrimSpace(phone) == "" {
		return errors.New("notify: empty phone")
	}
	logging.Ctx(ctx).Info().Str("phone", phone).Str("body", body).Msg("notify: message sent")
	return nil
}

func (n LogNotifier) SendBulk(ctx context.Context, phones []string, body string) error {
	return SendEach(ctx, n, phones, body)
}

// SendEach sends body to every distinct non-empty phone through n.Send and
// joins the individual failures.
func SendEach(ctx context.Context, n interface {
	Send(ctx context.Context, phone, body string) error
}, phones []string, body string) error {
	var errs []error
	for _, p := range UniquePhones(phones) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := n.Send(ctx, p, body); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// UniquePhones trims, drops empties and removes duplicates keeping order.
func UniquePhones(phones []string) []string {
	seen := make(map[string]struct{}, len(phones))
	out := make([]string, 0, len(phones))
	for _, p := range phones {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
