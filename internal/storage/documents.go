package storage

import (
	"context"
	"sync"

	apperrors "github.com/skanerxe/nutrition-helper/internal/errors"
	"github.com/skanerxe/nutrition-helper/internal/logger"
)

// WriteOutcome tells the caller how durable a completed write is
type WriteOutcome int

const (
	// WriteConfirmed means the remote store accepted the write and issued a
	// new version token.
	WriteConfirmed WriteOutcome = iota
	// WriteDegraded means the remote store was unreachable; the bytes are
	// durable in the local fallback store only and not yet confirmed remotely.
	WriteDegraded
)

// DocumentStore composes the TTL cache, the remote store and the local
// fallback store into one read/write interface. Repositories never touch the
// remote or the cache directly, so version-token state stays consistent.
//
// Writes are whole-document overwrites guarded by an optimistic version
// token. Write is last-writer-wins and fails hard on conflict; Update retries
// a conflicting read-modify-write exactly once with the cache bypassed.
type DocumentStore struct {
	remote   RemoteStore
	fallback *FallbackStore
	cache    *TTLCache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDocumentStore creates the facade over the three stores
func NewDocumentStore(remote RemoteStore, fallback *FallbackStore, cache *TTLCache) *DocumentStore {
	return &DocumentStore{
		remote:   remote,
		fallback: fallback,
		cache:    cache,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockFor serializes operations per document name, so two callers cannot
// interleave read-modify-write cycles on the same document within a process.
func (s *DocumentStore) lockFor(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, exists := s.locks[name]
	if !exists {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	return lock
}

// Read returns the current bytes of a document: from the cache while fresh,
// otherwise from the remote store, falling back to the local mirror and
// finally to the document's defined default content. Transport failures on
// read are never surfaced.
func (s *DocumentStore) Read(ctx context.Context, name string) ([]byte, error) {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()
	return s.read(ctx, name)
}

func (s *DocumentStore) read(ctx context.Context, name string) ([]byte, error) {
	if body, _, ok := s.cache.Get(name); ok {
		return body, nil
	}

	body, token, err := s.remote.Fetch(ctx, name)
	if err == nil {
		s.cache.Put(name, body, token)
		return body, nil
	}

	switch {
	case apperrors.IsType(err, apperrors.ErrorTypeNotFound):
		return s.establishDefault(ctx, name)
	case apperrors.IsType(err, apperrors.ErrorTypeTransport):
		logger.Warn("Remote fetch failed, consulting local fallback", "document", name, "error", err.Error())
		local, ferr := s.fallback.Read(ctx, name)
		if ferr != nil {
			logger.Error("Fallback read failed", "document", name, "error", ferr.Error())
		}
		if local != nil {
			// The fallback copy has no version token, so it must not enter
			// the cache: a later write could claim a token the remote never
			// issued.
			return local, nil
		}
		return defaultDocument(name)
	default:
		return nil, err
	}
}

// establishDefault creates a missing document remotely with its default
// content and returns that content.
func (s *DocumentStore) establishDefault(ctx context.Context, name string) ([]byte, error) {
	body, err := defaultDocument(name)
	if err != nil {
		return nil, err
	}

	if _, werr := s.writeBytes(ctx, name, body); werr != nil {
		if apperrors.IsType(werr, apperrors.ErrorTypeVersionConflict) {
			// Another writer created the document first; take their copy.
			remote, token, ferr := s.remote.Fetch(ctx, name)
			if ferr == nil {
				s.cache.Put(name, remote, token)
				return remote, nil
			}
		}
		logger.Warn("Could not establish default document remotely", "document", name, "error", werr.Error())
	}

	return body, nil
}

// Write encodes value and overwrites the document, preconditioned on the last
// known version token. On conflict the caller gets a version_conflict error;
// on remote transport failure the bytes are still mirrored locally and the
// outcome is WriteDegraded with a nil error.
func (s *DocumentStore) Write(ctx context.Context, name string, value interface{}) (WriteOutcome, error) {
	body, err := MarshalDocument(value)
	if err != nil {
		return 0, err
	}

	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()
	return s.writeBytes(ctx, name, body)
}

func (s *DocumentStore) writeBytes(ctx context.Context, name string, body []byte) (WriteOutcome, error) {
	token, _ := s.cache.Token(name)

	newToken, err := s.remote.Store(ctx, name, body, token)
	if err == nil {
		s.cache.Put(name, body, newToken)
		if ferr := s.fallback.Write(ctx, name, body); ferr != nil {
			logger.Error("Failed to mirror document locally", "document", name, "error", ferr.Error())
		}
		return WriteConfirmed, nil
	}

	switch {
	case apperrors.IsType(err, apperrors.ErrorTypeVersionConflict):
		// Our token is stale, so the cached body is too.
		s.cache.Invalidate(name)
		return 0, err
	case apperrors.IsType(err, apperrors.ErrorTypeTransport):
		if ferr := s.fallback.Write(ctx, name, body); ferr != nil {
			logger.Error("Failed to persist document to fallback after remote failure",
				"document", name, "error", ferr.Error())
			return 0, err
		}
		logger.Warn("Remote write failed, document mirrored locally only", "document", name)
		// Keep the in-memory state on the written value. The old token stays:
		// it is still the newest remote revision we know of, so a later write
		// either lands cleanly or correctly conflicts.
		s.cache.Put(name, body, token)
		return WriteDegraded, nil
	default:
		return 0, err
	}
}

// Update runs a read-modify-write cycle: it reads the document, applies the
// pure transform and writes the result back. If the write conflicts, the
// document is re-read from the remote store (cache bypassed) and the
// transform is reapplied once; a second conflict fails.
func (s *DocumentStore) Update(ctx context.Context, name string, transform func([]byte) ([]byte, error)) (WriteOutcome, error) {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.read(ctx, name)
	if err != nil {
		return 0, err
	}

	next, err := transform(current)
	if err != nil {
		return 0, err
	}

	outcome, err := s.writeBytes(ctx, name, next)
	if err == nil {
		return outcome, nil
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeVersionConflict) {
		return 0, err
	}

	logger.Warn("Document changed concurrently, retrying once", "document", name)

	current, token, ferr := s.remote.Fetch(ctx, name)
	if ferr != nil {
		return 0, err
	}
	s.cache.Put(name, current, token)

	next, terr := transform(current)
	if terr != nil {
		return 0, terr
	}

	return s.writeBytes(ctx, name, next)
}
