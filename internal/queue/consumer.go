package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/ride-booking/internal/logging"
	"github.com/iliyamo/ride-booking/internal/notify"
)

// Consumer reads booking.created events and sends the confirmation to the
// passenger and every configured admin phone.
type Consumer struct {
	URL         string
	Notifier    notify.Notifier
	AdminPhones []string
	DialTimeout time.Duration
}

func NewConsumer(url string, n notify.Notifier, adminPhones []string) *Consumer {
	return &Consumer{URL: url, Notifier: n, AdminPhones: adminPhones, DialTimeout: DefaultDialTimeout}
}

// Run connects, consumes and reconnects with exponential backoff until ctx
// is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	log := logging.L()
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := dial(c.URL, c.DialTimeout)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("booking-consumer: dial failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Msg("booking-consumer: consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logging.L().Warn().Err(err).Msg("booking-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(BookingCreatedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, BookingCreatedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	for d := range msgs {
		if err := c.Handle(ctx, d.Body); err != nil {
			logging.L().Error().Err(err).Msg("booking-consumer: handle message failed")
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// Handle decodes one event and notifies its recipients.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var ev BookingCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	phones := Recipients(ev, c.AdminPhones)
	if len(phones) == 0 {
		return nil
	}
	return c.Notifier.SendBulk(ctx, phones, RenderBookingMessage(ev))
}

// Recipients is the passenger phone followed by the admin phones.
func Recipients(ev BookingCreatedEvent, adminPhones []string) []string {
	return notify.UniquePhones(append([]string{ev.Phone}, adminPhones...))
}

// RenderBookingMessage formats the confirmation text.
func RenderBookingMessage(ev BookingCreatedEvent) string {
	seats := make([]string, len(ev.SeatNumbers))
	for i, n := range ev.SeatNumbers {
		seats[i] = fmt.Sprint(n)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Booking #%d confirmed for %s.\n", ev.BookingID, ev.Name)
	fmt.Fprintf(&b, "Ride #%d", ev.RideID)
	if ev.Day != "" || ev.StartsAt != "" {
		fmt.Fprintf(&b, " on %s %s", ev.Day, ev.StartsAt)
	}
	fmt.Fprintf(&b, "\nSeats: %s (%d)\n", strings.Join(seats, ", "), ev.Qty)
	fmt.Fprintf(&b, "Total: %s %s, payment: %s", FormatAmount(ev.TotalAmount), ev.Currency, ev.PaymentType)
	return b.String()
}

// FormatAmount renders minor units with two decimals.
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign, minor = "-", -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
