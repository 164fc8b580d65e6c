package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/ride-booking/internal/logging"
	"github.com/iliyamo/ride-booking/internal/model"
	"github.com/iliyamo/ride-booking/internal/notify"
	"github.com/iliyamo/ride-booking/internal/repository"
)

// dueBatch bounds how many recipients one scheduler tick sends.
const dueBatch = 200

// MessageService stores outbound messages and delivers them now or at
// their scheduled time.
type MessageService struct {
	repo     *repository.MessageRepo
	notifier notify.Notifier
	now      func() time.Time
}

func NewMessageService(repo *repository.MessageRepo, n notify.Notifier) *MessageService {
	return &MessageService{repo: repo, notifier: n, now: func() time.Time { return time.Now().UTC() }}
}

// Create stores the message.  Without a schedule (or with one in the
// past) it is delivered right away.
func (s *MessageService) Create(ctx context.Context, actorID uint64, body string, phones []string, scheduledAt *time.Time) (*model.Message, error) {
	body = strings.TrimSpace(body)
	phones = notify.UniquePhones(phones)
	fields := map[string]string{}
	if body == "" {
		fields["body"] = "body is required"
	}
	if len(phones) == 0 {
		fields["phones"] = "phones is required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Message: "invalid message", Fields: fields}
	}
	m := &model.Message{CreatedBy: actorID, Body: body}
	for _, p := range phones {
		m.Recipients = append(m.Recipients, model.MessageRecipient{Phone: p, ScheduledAt: scheduledAt})
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, internal("store message", err)
	}
	if scheduledAt == nil || !scheduledAt.After(s.now()) {
		for i := range m.Recipients {
			s.deliver(ctx, &m.Recipients[i], m.Body)
		}
	}
	return m, nil
}

// deliver claims the recipient, then sends.  A recipient already claimed
// by the scheduler or a concurrent Create is skipped.
func (s *MessageService) deliver(ctx context.Context, rc *model.MessageRecipient, body string) bool {
	log := logging.Ctx(ctx)
	at := s.now()
	claimed, err := s.repo.ClaimForSend(ctx, rc.ID, at)
	if err != nil {
		log.Error().Err(err).Uint64("recipient_id", rc.ID).Msg("claim message recipient failed")
		return false
	}
	if !claimed {
		return false
	}
	if err := s.notifier.Send(ctx, rc.Phone, body); err != nil {
		log.Warn().Err(err).Uint64("recipient_id", rc.ID).Msg("message delivery failed")
		if err := s.repo.ReleaseClaim(ctx, rc.ID); err != nil {
			log.Error().Err(err).Uint64("recipient_id", rc.ID).Msg("release message recipient failed")
		}
		return false
	}
	rc.Sent, rc.SentAt = true, &at
	return true
}

// DispatchDue sends every due, unsent recipient one by one and returns how
// many were delivered.
func (s *MessageService) DispatchDue(ctx context.Context) (int, error) {
	due, err := s.repo.ListDue(ctx, s.now(), dueBatch)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, d := range due {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		rc := model.MessageRecipient{ID: d.RecipientID, MessageID: d.MessageID, Phone: d.Phone}
		if s.deliver(ctx, &rc, d.Body) {
			sent++
		}
	}
	return sent, nil
}

// RunScheduler calls DispatchDue every interval until ctx is done.
func (s *MessageService) RunScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	log := logging.L()
	t := time.NewTicker(interval)
	defer t.Stop()
	log.Info().Dur("interval", interval).Msg("message scheduler started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("message scheduler stopped")
			return
		case <-t.C:
			n, err := s.DispatchDue(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("scheduled message dispatch failed")
				continue
			}
			if n > 0 {
				log.Info().Int("sent", n).Msg("scheduled messages sent")
			}
		}
	}
}
