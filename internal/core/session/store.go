package session

import (
	"context"
	"log"
	"sync"
	"time"

	"deepread/internal/models"
)

// Store keeps bounded chat transcripts keyed by opaque session id. Sessions
// come into existence on first append; unknown ids read as empty. A session
// holds at most 2*maxTurns messages and the oldest are evicted first.
//
// Expiry is measured from the last write. It is enforced lazily on access,
// with an optional background sweep to bound memory.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry

	maxTurns int
	timeout  time.Duration
	now      func() time.Time
}

type entry struct {
	messages    []models.ChatMessage
	lastTouched time.Time
}

func NewStore(maxTurns int, timeout time.Duration) *Store {
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &Store{
		sessions: make(map[string]*entry),
		maxTurns: maxTurns,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Append records a message with the current timestamp and returns the
// resulting transcript. A session past its idle timeout restarts empty.
func (s *Store) Append(sessionID, role, content string) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := s.sessions[sessionID]
	if e == nil || s.expired(e, now) {
		e = &entry{}
		s.sessions[sessionID] = e
	}

	e.messages = append(e.messages, models.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	if limit := 2 * s.maxTurns; len(e.messages) > limit {
		e.messages = e.messages[len(e.messages)-limit:]
	}
	e.lastTouched = now

	return copyMessages(e.messages)
}

// Read returns the transcript in chronological order, or an empty slice for
// unknown or expired sessions. Reads never refresh the expiry clock.
func (s *Store) Read(sessionID string) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.sessions[sessionID]
	if e == nil {
		return nil
	}
	if s.expired(e, s.now()) {
		delete(s.sessions, sessionID)
		return nil
	}
	return copyMessages(e.messages)
}

// Clear removes all messages for the session. Clearing a session that does
// not exist is a no-op.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Sweep drops every expired session and reports how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps on the given interval until the context is cancelled.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("session store: swept %d expired sessions", n)
			}
		}
	}
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.timeout > 0 && now.Sub(e.lastTouched) > s.timeout
}

func copyMessages(msgs []models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}
