package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"hny-greeting-service/internal/models"
	"hny-greeting-service/internal/store"
)

var ErrInvalidMessage = errors.New("invalid message")

const (
	defaultMessageType = "Message"
	maxMessageRunes    = 2000
)

// Forwarder relays a submission to the remote collector.
type Forwarder interface {
	Configured() bool
	Submit(ctx context.Context, s models.Submission) error
}

type MessageService struct {
	store   store.Store
	forward Forwarder
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewMessageService(st store.Store, fwd Forwarder, timeout time.Duration) *MessageService {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &MessageService{store: st, forward: fwd, timeout: timeout}
}

// Submit stores the message, then forwards it in the background. Forwarding
// failures are only logged.
func (m *MessageService) Submit(ctx context.Context, visitorID string, sub models.Submission) (models.Message, error) {
	sub.Content = strings.TrimSpace(sub.Content)
	sub.Type = strings.TrimSpace(sub.Type)
	if sub.Type == "" {
		sub.Type = defaultMessageType
	}
	if sub.Content == "" || utf8.RuneCountInString(sub.Content) > maxMessageRunes {
		return models.Message{}, ErrInvalidMessage
	}

	msg, err := m.store.SaveMessage(ctx, visitorID, sub)
	if err != nil {
		return models.Message{}, err
	}

	if m.forward != nil && m.forward.Configured() {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			fctx, cancel := context.WithTimeout(context.Background(), m.timeout)
			defer cancel()
			if err := m.forward.Submit(fctx, models.Submission{Type: msg.Type, Content: msg.Content}); err != nil {
				log.Printf("messages: forward %s failed: %v", msg.ID, err)
				return
			}
			debugLogf("messages: forwarded %s", msg.ID)
		}()
	}
	return msg, nil
}

func (m *MessageService) List(ctx context.Context, limit int) ([]models.Message, error) {
	return m.store.ListMessages(ctx, limit)
}

// Wait blocks until in-flight forwards finish.
func (m *MessageService) Wait() {
	m.wg.Wait()
}
