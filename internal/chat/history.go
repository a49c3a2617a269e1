package chat

import (
	"context"
	"sync"

	"github.com/skanerxe/nutrition-helper/internal/domain"
)

// History stores per-user conversation transcripts. Reply generation lives
// outside this layer; only the messages themselves are kept.
type History interface {
	Append(ctx context.Context, userEmail string, msg domain.ChatMessage) error
	Messages(ctx context.Context, userEmail string) ([]domain.ChatMessage, error)
	Clear(ctx context.Context, userEmail string) error
}

// Manager keeps conversation history in process memory
type Manager struct {
	conversations map[string][]domain.ChatMessage
	mu            sync.RWMutex
}

// NewManager creates an in-memory history manager
func NewManager() *Manager {
	return &Manager{
		conversations: make(map[string][]domain.ChatMessage),
	}
}

// Append adds a message to the user's conversation
func (m *Manager) Append(ctx context.Context, userEmail string, msg domain.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[userEmail] = append(m.conversations[userEmail], msg)
	return nil
}

// Messages returns a copy of the user's conversation
func (m *Manager) Messages(ctx context.Context, userEmail string) ([]domain.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conversation := m.conversations[userEmail]
	result := make([]domain.ChatMessage, len(conversation))
	copy(result, conversation)
	return result, nil
}

// Clear drops the user's conversation
func (m *Manager) Clear(ctx context.Context, userEmail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conversations, userEmail)
	return nil
}
