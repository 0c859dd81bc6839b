// Package messaging delivers engine output (caregiver alerts, nudges) over
// SMS. It contains no decision logic: quiet-hours and routing policy are
// already applied by the engines before anything reaches this layer.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BTreeMap/CarePath/internal/models"
)

// Service defines a pluggable message delivery abstraction.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a
	// recipient identifier. Each implementation applies its own rules.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendMessage sends a message body to a recipient.
	SendMessage(ctx context.Context, to string, body string) error
}

// FormatCaregiverUpdate renders an alert as an SMS body.
func FormatCaregiverUpdate(u models.CaregiverUpdate) string {
	return fmt.Sprintf("%s\n%s", u.Title, u.Message)
}

// FormatNudge renders a nudge as an SMS body.
func FormatNudge(n models.Nudge) string {
	return fmt.Sprintf("%s\n%s", n.Title, n.Message)
}

// LogService is a Service that logs instead of sending. Used when no SMS
// provider is configured so deployments without Twilio credentials still
// run end to end.
type LogService struct{}

// NewLogService creates a LogService.
func NewLogService() *LogService { return &LogService{} }

func (l *LogService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}
	return recipient, nil
}

func (l *LogService) SendMessage(ctx context.Context, to string, body string) error {
	slog.Info("LogService: message suppressed (no SMS provider configured)", "to", to, "bytes", len(body))
	return nil
}

// SentMessage records one delivery made through the MockService.
type SentMessage struct {
	To   string
	Body string
}

// MockService is an in-memory Service for tests. It accepts any non-empty
// recipient and records every send.
type MockService struct {
	mu   sync.Mutex
	sent []SentMessage
	// FailSends makes SendMessage return an error when true.
	FailSends bool
}

// NewMockService creates an empty MockService.
func NewMockService() *MockService {
	return &MockService{}
}

func (m *MockService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}
	return recipient, nil
}

func (m *MockService) SendMessage(ctx context.Context, to string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSends {
		return fmt.Errorf("mock send failure to %s", to)
	}
	m.sent = append(m.sent, SentMessage{To: to, Body: body})
	return nil
}

// Sent returns a copy of everything sent so far.
func (m *MockService) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}
