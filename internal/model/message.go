package model

import "time"

// Message is an outbound text addressed to one or more phone numbers.
type Message struct {
    ID         uint64             `json:"id"`         // messages.id
    CreatedBy  uint64             `json:"created_by"` // messages.created_by
    Body       string             `json:"body"`       // messages.body
    CreatedAt  time.Time          `json:"created_at"` // messages.created_at
    Recipients []MessageRecipient `json:"recipients,omitempty"`
}

// MessageRecipient is one delivery of a Message.  A nil ScheduledAt means
// "send now"; Sent flips to true once the notifier accepted it.
type MessageRecipient struct {
    ID          uint64     `json:"id"`           // message_recipients.id
    MessageID   uint64     `json:"message_id"`   // message_recipients.message_id
    Phone       string     `json:"phone"`        // message_recipients.phone
    ScheduledAt *time.Time `json:"scheduled_at"` // message_recipients.scheduled_at (nullable)
    Sent        bool       `json:"sent"`         // message_recipients.sent
    SentAt      *time.Time `json:"sent_at"`      // message_recipients.sent_at (nullable)
}
