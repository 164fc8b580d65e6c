package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/ride-booking/internal/repository"
)

func TestDispatchDueSendsAndMarks(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM message_recipients mr`).WithArgs(now, dueBatch).
		WillReturnRows(sqlmock.NewRows([]string{"id", "message_id", "phone", "body"}).
			AddRow(1, 9, "+252630000001", "Bus leaves at 6").
			AddRow(2, 9, "+252630000002", "Bus leaves at 6"))
	mock.ExpectExec(`UPDATE message_recipients SET sent = 1`).WithArgs(now, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE message_recipients SET sent = 1`).WithArgs(now, 2).WillReturnResult(sqlmock.NewResult(0, 1))

	n := &lastMessage{}
	svc := NewMessageService(repository.NewMessageRepo(db), n)
	svc.now = func() time.Time { return now }
	sent, err := svc.DispatchDue(context.Background())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if sent != 2 || n.phone != "+252630000002" {
		t.Fatalf("sent=%d last=%+v", sent, n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateMessageScheduledIsNotSentNow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO messages`).WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec(`INSERT INTO message_recipients`).WithArgs(3, "+252630000001", later).
		WillReturnResult(sqlmock.NewResult(30, 1))
	mock.ExpectCommit()

	n := &lastMessage{}
	svc := NewMessageService(repository.NewMessageRepo(db), n)
	svc.now = func() time.Time { return now }
	m, err := svc.Create(context.Background(), 1, "Reminder", []string{"+252630000001"}, &later)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.ID != 3 || m.Recipients[0].ID != 30 || m.Recipients[0].Sent || n.phone != "" {
		t.Fatalf("scheduled message must not be sent yet: %+v", m)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateMessageValidation(t *testing.T) {
	svc := NewMessageService(nil, &lastMessage{})
	if _, err := svc.Create(context.Background(), 1, " ", nil, nil); !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateMessageSkipsRecipientClaimedByScheduler(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO messages`).WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectExec(`INSERT INTO message_recipients`).WithArgs(4, "+252630000001", nil).
		WillReturnResult(sqlmock.NewResult(40, 1))
	mock.ExpectCommit()
	// a scheduler tick flipped the row first
	mock.ExpectExec(`UPDATE message_recipients SET sent = 1`).WithArgs(now, 40).WillReturnResult(sqlmock.NewResult(0, 0))

	n := &lastMessage{}
	svc := NewMessageService(repository.NewMessageRepo(db), n)
	svc.now = func() time.Time { return now }
	m, err := svc.Create(context.Background(), 1, "Bus leaves at 6", []string{"+252630000001"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.phone != "" || m.Recipients[0].Sent {
		t.Fatalf("recipient claimed elsewhere must not be sent again: %+v", m.Recipients[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

type downNotifier struct{}

func (downNotifier) Send(context.Context, string, string) error { return errors.New("gateway down") }
func (downNotifier) SendBulk(context.Context, []string, string) error {
	return errors.New("gateway down")
}

func TestDispatchDueReleasesClaimOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM message_recipients mr`).WithArgs(now, dueBatch).
		WillReturnRows(sqlmock.NewRows([]string{"id", "message_id", "phone", "body"}).
			AddRow(5, 9, "+252630000001", "Reminder"))
	mock.ExpectExec(`UPDATE message_recipients SET sent = 1`).WithArgs(now, 5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE message_recipients SET sent = 0, sent_at = NULL WHERE id = \?`).WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := NewMessageService(repository.NewMessageRepo(db), downNotifier{})
	svc.now = func() time.Time { return now }
	sent, err := svc.DispatchDue(context.Background())
	if err != nil || sent != 0 {
		t.Fatalf("sent=%d err=%v", sent, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
