// Package dialog keeps per-conversation state for multi-turn voice
// dialogues, keyed by the assistant's session id.
package dialog

import (
	"context"
	"errors"
	"sync"
)

// Mode is the dialogue mode of one conversation
type Mode string

const (
	// ModeCollecting means raw utterances are dictated measurement
	// data, not commands
	ModeCollecting Mode = "collecting_measurements"
)

// State is the in-progress state of one conversation. It is ephemeral:
// never persisted to the record store, and discarded when the session
// ends or a new session starts with the same id.
type State struct {
	Mode        Mode   `json:"mode"`
	ClientName  string `json:"client_name"`
	ProductName string `json:"product_name"`
	// Text accumulates dictated fragments, comma-joined; it is parsed
	// only at end of recording
	Text string `json:"text"`
}

// Append adds one dictated fragment to the accumulated text
func (s *State) Append(fragment string) {
	if s.Text == "" {
		s.Text = fragment
	} else {
		s.Text = s.Text + ", " + fragment
	}
}

// ErrNoState is returned by Get when the session has no stored state.
// Callers should use errors.Is to distinguish this expected case from
// backend failures.
var ErrNoState = errors.New("no dialog state for session")

// Store holds conversation state per session id. Implementations must
// make each single-key operation atomic. Note that when several
// instances run without a shared backend (i.e. with MemoryStore), turns
// for the same session landing on different instances will not see each
// other's state; use the Redis backend for that deployment shape.
type Store interface {
	Get(ctx context.Context, sessionID string) (*State, error)
	Set(ctx context.Context, sessionID string, state *State) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore is the in-process Store implementation. State survives
// for the life of the process and is lost on restart.
type MemoryStore struct {
	states map[string]State
	mu     sync.RWMutex
}

// NewMemoryStore creates an in-process dialog state store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

func (m *MemoryStore) Get(ctx context.Context, sessionID string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, exists := m.states[sessionID]
	if !exists {
		return nil, ErrNoState
	}
	out := state
	return &out, nil
}

func (m *MemoryStore) Set(ctx context.Context, sessionID string, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.states[sessionID] = *state
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, sessionID)
	return nil
}
