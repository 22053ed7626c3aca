package notification

import (
	"context"
)

// EmailSender delivers a single email. Template rendering lives with the
// provider; only subject and body text cross this boundary.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers a single SMS.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// Result reports per-channel outcomes of one dispatch. It is informational
// only: a failed send never fails the lifecycle transition that caused it.
type Result struct {
	EmailSent  bool   `json:"email_sent"`
	SMSSent    bool   `json:"sms_sent"`
	EmailError string `json:"email_error,omitempty"`
	SMSError   string `json:"sms_error,omitempty"`
}
