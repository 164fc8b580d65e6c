package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/ride-booking/internal/model"
)

// MessageRepo stores outbound messages and their per-phone recipients.
type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// Create inserts the message and all recipients atomically and fills in
// the generated ids.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx, `INSERT INTO messages (created_by, body) VALUES (?, ?)`, m.CreatedBy, m.Body)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	for i := range m.Recipients {
		rc := &m.Recipients[i]
		rc.MessageID = m.ID
		var at any
		if rc.ScheduledAt != nil {
			at = rc.ScheduledAt.UTC()
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO message_recipients (message_id, phone, scheduled_at) VALUES (?, ?, ?)`,
			m.ID, rc.Phone, at)
		if err != nil {
			return err
		}
		rid, err := res.LastInsertId()
		if err != nil {
			return err
		}
		rc.ID = uint64(rid)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns a message with its recipients.
func (r *MessageRepo) GetByID(ctx context.Context, id uint64) (*model.Message, error) {
	var m model.Message
	err := r.db.QueryRowContext(ctx, `SELECT id, created_by, body, created_at FROM messages WHERE id = ?`, id).
		Scan(&m.ID, &m.CreatedBy, &m.Body, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, message_id, phone, scheduled_at, sent, sent_at FROM message_recipients WHERE message_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	m.Recipients = []model.MessageRecipient{}
	for rows.Next() {
		rc, err := scanRecipient(rows)
		if err != nil {
			return nil, err
		}
		m.Recipients = append(m.Recipients, rc)
	}
	return &m, rows.Err()
}

func scanRecipient(s rowScanner) (model.MessageRecipient, error) {
	var rc model.MessageRecipient
	var scheduled, sentAt sql.NullTime
	if err := s.Scan(&rc.ID, &rc.MessageID, &rc.Phone, &scheduled, &rc.Sent, &sentAt); err != nil {
		return rc, err
	}
	if scheduled.Valid {
		t := scheduled.Time
		rc.ScheduledAt = &t
	}
	if sentAt.Valid {
		t := sentAt.Time
		rc.SentAt = &t
	}
	return rc, nil
}

// List returns a page of messages without recipients, newest first.
func (r *MessageRepo) List(ctx context.Context, p Page) ([]model.Message, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_by, body, created_at FROM messages ORDER BY id DESC LIMIT ? OFFSET ?`, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.CreatedBy, &m.Body, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// DueRecipient is an unsent delivery whose time has come.
type DueRecipient struct {
	RecipientID uint64
	MessageID   uint64
	Phone       string
	Body        string
}

// ListDue returns up to limit unsent recipients scheduled at or before
// now, plus unscheduled ones that were never sent.
func (r *MessageRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]DueRecipient, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT mr.id, mr.message_id, mr.phone, m.body FROM message_recipients mr
		 JOIN messages m ON m.id = mr.message_id
		 WHERE mr.sent = 0 AND (mr.scheduled_at IS NULL OR mr.scheduled_at <= ?)
		 ORDER BY mr.scheduled_at, mr.id LIMIT ?`, now.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DueRecipient{}
	for rows.Next() {
		var d DueRecipient
		if err := rows.Scan(&d.RecipientID, &d.MessageID, &d.Phone, &d.Body); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ClaimForSend flags one recipient as sent before delivery.  It reports
// false when the row was already claimed, so each recipient has at most
// one sender.
func (r *MessageRepo) ClaimForSend(ctx context.Context, recipientID uint64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE message_recipients SET sent = 1, sent_at = ? WHERE id = ? AND sent = 0`, at.UTC(), recipientID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseClaim undoes ClaimForSend after a failed delivery so the
// scheduler picks the recipient up again.
func (r *MessageRepo) ReleaseClaim(ctx context.Context, recipientID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE message_recipients SET sent = 0, sent_at = NULL WHERE id = ?`, recipientID)
	return err
}
