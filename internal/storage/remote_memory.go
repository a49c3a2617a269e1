package storage

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	apperrors "github.com/skanerxe/nutrition-helper/internal/errors"
)

type memoryDoc struct {
	body  []byte
	token string
}

// MemoryRemote is an in-memory RemoteStore for tests and local development
// where no remote repository is available. It issues monotonically increasing
// version tokens and enforces the same precondition rules as the real store:
// a write must carry the current token, and a create must carry none.
type MemoryRemote struct {
	mu      sync.Mutex
	docs    map[string]memoryDoc
	seq     int
	offline bool
}

// NewMemoryRemote creates an empty in-memory remote store
func NewMemoryRemote() *MemoryRemote {
	return &MemoryRemote{docs: make(map[string]memoryDoc)}
}

// SetOffline makes every call fail with a transport error, simulating an
// unreachable remote API.
func (m *MemoryRemote) SetOffline(offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline = offline
}

// Seed installs a document as an external writer would, bypassing the
// precondition check, and returns the new version token.
func (m *MemoryRemote) Seed(name string, body []byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	token := "v" + strconv.Itoa(m.seq)
	m.docs[name] = memoryDoc{body: body, token: token}
	return token
}

func (m *MemoryRemote) Fetch(ctx context.Context, name string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.offline {
		return nil, "", apperrors.NewTransportError(fmt.Errorf("remote store offline"), "fetch")
	}

	doc, exists := m.docs[name]
	if !exists {
		return nil, "", apperrors.ErrRemoteNotFound
	}
	return doc.body, doc.token, nil
}

func (m *MemoryRemote) Store(ctx context.Context, name string, body []byte, expectedToken string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.offline {
		return "", apperrors.NewTransportError(fmt.Errorf("remote store offline"), "store")
	}

	doc, exists := m.docs[name]
	if exists && doc.token != expectedToken {
		return "", apperrors.ErrVersionConflict
	}
	if !exists && expectedToken != "" {
		return "", apperrors.ErrVersionConflict
	}

	m.seq++
	token := "v" + strconv.Itoa(m.seq)
	m.docs[name] = memoryDoc{body: body, token: token}
	return token, nil
}
