// Package notify delivers outgoing email on behalf of the domain service.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
	"github.com/a1dsv/NOVA-sub002/internal/outbox"
	"github.com/a1dsv/NOVA-sub002/pkg/events"
)

// ErrNoRecipient is returned when an email has no address.
var ErrNoRecipient = errors.New("email has no recipient")

var (
	_ domain.Mailer = (*KafkaMailer)(nil)
	_ domain.Mailer = (*LogMailer)(nil)
)

// KafkaMailer hands emails to the mail relay through the email topic.
type KafkaMailer struct {
	writer outbox.MessageWriter
	topic  string
	now    func() time.Time
}

// NewKafkaMailer constructs a KafkaMailer. An empty topic selects events.TopicEmail.
func NewKafkaMailer(writer outbox.MessageWriter, topic string) *KafkaMailer {
	if strings.TrimSpace(topic) == "" {
		topic = events.TopicEmail
	}
	return &KafkaMailer{
		writer: writer,
		topic:  topic,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Send publishes an EmailRequested record keyed by recipient.
func (m *KafkaMailer) Send(ctx context.Context, email domain.Email) error {
	to := strings.TrimSpace(email.To)
	if to == "" {
		return ErrNoRecipient
	}
	payload, err := json.Marshal(events.EmailRequested{
		To:          to,
		Subject:     email.Subject,
		Body:        email.Body,
		RequestedAt: m.now(),
	})
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(to),
		Value: payload,
		Headers: []kafka.Header{
			{Key: events.HeaderEventType, Value: []byte(events.TypeEmailRequested)},
		},
	}
	if err := m.writer.WriteMessages(ctx, m.topic, msg); err != nil {
		return fmt.Errorf("publish email to %s: %w", m.topic, err)
	}
	return nil
}

// LogMailer only logs emails. It is the default when no broker is configured.
type LogMailer struct{}

// Send logs the email and never fails for a valid recipient.
func (LogMailer) Send(_ context.Context, email domain.Email) error {
	if strings.TrimSpace(email.To) == "" {
		return ErrNoRecipient
	}
	log.WithFields(log.Fields{
		"to":      email.To,
		"subject": email.Subject,
	}).Info("email not sent, log mailer in use")
	return nil
}
