// Package numpad carries a numeric entry between the screen that asks for a
// value and the keypad screen that collects it.
package numpad

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrCancelled is returned by Wait when the session was cancelled.
	ErrCancelled = errors.New("numpad session cancelled")
	// ErrOutOfRange is returned by Commit for a value outside the allowed range.
	ErrOutOfRange = errors.New("numpad value out of range")
	// ErrSessionClosed is returned when a finished session is used again.
	ErrSessionClosed = errors.New("numpad session closed")
)

// Validator reports whether a digit string is acceptable.
type Validator func(digits string) bool

// Formatter renders typed digits for display.
type Formatter func(digits string) string

// Config describes a numeric entry.
type Config struct {
	Kind      string
	MaxDigits int
	Validate  Validator
	Format    Formatter
	// SkipRangeCheck accepts any value, e.g. for partially typed frequencies.
	SkipRangeCheck bool
}

// Result is the committed entry.
type Result struct {
	Digits string
	Swap   bool
}

// Session is a single numeric entry. Exactly one of Commit or Cancel
// completes it; the result can be read once.
type Session struct {
	id  uuid.UUID
	cfg Config

	mu     sync.Mutex
	digits []byte
	closed bool

	result chan Result
	done   chan struct{}
	once   sync.Once
}

// NewSession starts an empty entry.
func NewSession(cfg Config) *Session {
	return &Session{
		id:     uuid.New(),
		cfg:    cfg,
		result: make(chan Result, 1),
		done:   make(chan struct{}),
	}
}

// ID identifies the session.
func (s *Session) ID() uuid.UUID { return s.id }

// Kind returns the entry kind, e.g. the radio type.
func (s *Session) Kind() string { return s.cfg.Kind }

// Press appends a digit. Non-digits and input beyond MaxDigits are ignored.
func (s *Session) Press(d byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if d < '0' || d > '9' {
		return nil
	}
	if s.cfg.MaxDigits > 0 && len(s.digits) >= s.cfg.MaxDigits {
		return nil
	}
	s.digits = append(s.digits, d)
	return nil
}

// Backspace removes the last digit.
func (s *Session) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.digits); n > 0 && !s.closed {
		s.digits = s.digits[:n-1]
	}
}

// Digits returns what has been typed so far.
func (s *Session) Digits() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.digits)
}

// Display renders the typed digits with the configured formatter.
func (s *Session) Display() string {
	digits := s.Digits()
	if s.cfg.Format == nil {
		return digits
	}
	return s.cfg.Format(digits)
}

// Commit validates the entry and delivers it to the waiting reader.
func (s *Session) Commit(swap bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	digits := string(s.digits)
	if !s.cfg.SkipRangeCheck && s.cfg.Validate != nil && !s.cfg.Validate(digits) {
		s.mu.Unlock()
		return ErrOutOfRange
	}
	s.closed = true
	s.mu.Unlock()

	s.once.Do(func() {
		s.result <- Result{Digits: digits, Swap: swap}
		close(s.done)
	})
	return nil
}

// Cancel abandons the entry; a pending Wait returns ErrCancelled.
func (s *Session) Cancel() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.once.Do(func() {
		close(s.done)
	})
}

// Done is closed once the session is committed or cancelled.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the entry is committed or cancelled, or ctx ends.
func (s *Session) Wait(ctx context.Context) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-s.done:
	}
	select {
	case r := <-s.result:
		return r, nil
	default:
		return Result{}, ErrCancelled
	}
}
