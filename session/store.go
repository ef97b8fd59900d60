// Package session implements the in-memory session manager: a process-wide
// mapping from a session key (the lead's phone number) to the ordered
// conversation transcript for that lead. The store is explicitly owned and
// injected into the orchestrator, so it can be swapped for a persistent
// implementation without touching orchestration logic.
package session

import (
	"sync"
)

// Roles used in conversation turns. They match the chat format of
// OpenAI-compatible completion APIs.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one conversation turn: a role paired with text content.
// Immutable once created.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store owns the session-keyed transcript mapping. All methods are safe for
// concurrent use. Sessions live for the process lifetime; there is no
// eviction.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]Turn

	// lockMu guards locks; each session key gets its own mutex so that
	// concurrent continuations for one lead serialize across the remote
	// completion call while different leads proceed in parallel.
	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string][]Turn),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Start creates a session for key seeded with one assistant turn holding
// the greeting. Starting a key that already has a session resets it: the
// old transcript is discarded. The overwrite is intentional, matching the
// start-chat contract (a lead re-submitting the entry form begins a fresh
// conversation).
func (s *Store) Start(key, greeting string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[key] = []Turn{{Role: RoleAssistant, Content: greeting}}
	return copyTranscript(s.sessions[key])
}

// AppendUser appends a user turn to an existing session and returns the
// session's full transcript after the append. It returns ErrSessionNotFound
// when no session was ever started for key.
func (s *Store) AppendUser(key, text string) ([]Turn, error) {
	return s.append(key, Turn{Role: RoleUser, Content: text})
}

// AppendAssistant appends an assistant turn to an existing session. The
// caller is responsible for the session existing; in the continuation flow
// it is only invoked right after a successful AppendUser.
func (s *Store) AppendAssistant(key, text string) ([]Turn, error) {
	return s.append(key, Turn{Role: RoleAssistant, Content: text})
}

func (s *Store) append(key string, turn Turn) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transcript, ok := s.sessions[key]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.sessions[key] = append(transcript, turn)
	return copyTranscript(s.sessions[key]), nil
}

// Transcript returns an ordered copy of the session's turns for read-only
// use, or ErrSessionNotFound when no session exists for key.
func (s *Store) Transcript(key string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transcript, ok := s.sessions[key]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copyTranscript(transcript), nil
}

// Len returns the number of live sessions, for metrics.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Acquire takes the per-key mutex for a session and returns its release
// function. Continuation requests hold it across the completion call so two
// racing continuations for one lead cannot interleave their appends.
// Keys are never removed from the lock map; the key space (phone numbers
// with live sessions) is as unbounded as the session map itself.
func (s *Store) Acquire(key string) func() {
	s.lockMu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.lockMu.Unlock()

	l.Lock()
	return l.Unlock
}

func copyTranscript(turns []Turn) []Turn {
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
