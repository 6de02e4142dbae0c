// Package delivery hands invoice emails to a mail server, either directly or
// through a background queue.
package delivery

import (
	"context"
	"errors"
	"strings"
)

var ErrNoRecipient = errors.New("message has no recipient")

type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type Message struct {
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Sender delivers a message. Implementations must not return before the
// message was either accepted or rejected.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return ErrNoRecipient
	}

	return nil
}
