package model

import (
	"context"
	"time"
)

// -------------------- SUBMISSION MODEL --------------------

// Submission is a stored contact-form message. Field values are the
// trimmed form input; IP is the resolved client address, never the
// value the client claimed in the body.
type Submission struct {
	ID        string    `json:"id,omitempty" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Message   string    `json:"message" db:"message"`
	IP        string    `json:"ip" db:"ip"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SubmissionPayload is the raw, untrusted form input before validation.
// Hp is the honeypot field; legitimate clients leave it empty.
type SubmissionPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Hp      string `json:"hp"`
}

// AcceptedEvent is published after a submission has been persisted.
type AcceptedEvent struct {
	SubmissionID string    `json:"submission_id"`
	Email        string    `json:"email"`
	IP           string    `json:"ip"`
	AcceptedAt   time.Time `json:"accepted_at"`
}

// -------------------- COLLABORATOR INTERFACES --------------------

// MessageStore persists submissions. List returns records most recent
// first regardless of the backing format.
type MessageStore interface {
	Append(ctx context.Context, sub *Submission) error
	List(ctx context.Context) ([]Submission, error)
}

// RateLimitLedger tracks the last accepted submission per client
// address. Reserve is atomic per address: it returns true and records
// now when the address is outside the throttle window, false (leaving
// the ledger untouched) when it is inside.
type RateLimitLedger interface {
	Reserve(ctx context.Context, addr string, now time.Time) (bool, error)
}

// Notifier relays an accepted submission by email. Best-effort: the
// pipeline logs and discards any error.
type Notifier interface {
	Notify(ctx context.Context, sub *Submission) error
}

// EventPublisher emits accepted-submission events. Best-effort, same
// contract as Notifier.
type EventPublisher interface {
	PublishAccepted(ctx context.Context, event *AcceptedEvent) error
}
