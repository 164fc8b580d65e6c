package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/ride-booking/internal/model"
)

type ActivityLogRepo struct {
	db *sql.DB
}

func NewActivityLogRepo(db *sql.DB) *ActivityLogRepo { return &ActivityLogRepo{db: db} }

// Create appends an audit entry.
func (r *ActivityLogRepo) Create(ctx context.Context, e *model.ActivityLog) error {
	var details any
	if len(e.Details) > 0 {
		details = string(e.Details)
	}
	const q = `INSERT INTO activity_logs (user_id, action, target_type, target_id, details) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.UserID, e.Action, e.TargetType, e.TargetID, details)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// List returns a page of entries, newest first.
func (r *ActivityLogRepo) List(ctx context.Context, p Page) ([]model.ActivityLog, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_logs`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, action, target_type, target_id, details, created_at FROM activity_logs
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []model.ActivityLog{}
	for rows.Next() {
		var e model.ActivityLog
		var details []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.TargetType, &e.TargetID, &details, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		if len(details) > 0 {
			e.Details = append([]byte(nil), details...)
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}
