package services

import (
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const codeTTL = 5 * time.Minute

var (
	ErrSessionNotFound = errors.New("Invalid session or code expired")
	ErrCodeExpired     = errors.New("Verification code has expired")
	ErrCodeMismatch    = errors.New("Invalid verification code")
)

type verification struct {
	email   string
	code    string
	expires time.Time
}

// OTPStore holds pending email-verification codes, keyed by an opaque
// session token. State lives only in this process: a restart drops every
// pending session, which is fine for codes that die in five minutes anyway.
type OTPStore struct {
	mu       sync.Mutex
	sessions map[string]verification
	now      func() time.Time
}

func NewOTPStore() *OTPStore {
	return &OTPStore{
		sessions: make(map[string]verification),
		now:      time.Now,
	}
}

// NewOTPStoreWithClock lets tests control expiry without real timers.
func NewOTPStoreWithClock(now func() time.Time) *OTPStore {
	s := NewOTPStore()
	s.now = now
	return s
}

// Issue creates a session for email and returns its token and six-digit
// code. The session stays valid even if delivering the code later fails.
func (s *OTPStore) Issue(email string) (sessionID, code string) {
	sessionID = uuid.NewString()
	code = strconv.Itoa(100000 + rand.Intn(900000))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = verification{
		email:   email,
		code:    code,
		expires: s.now().Add(codeTTL),
	}
	return sessionID, code
}

// Redeem consumes a session on success and returns the verified email.
// An expired session is deleted even though the redeem fails; a code
// mismatch leaves the session in place so the user may retry until expiry.
func (s *OTPStore) Redeem(sessionID, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.sessions[sessionID]
	if !ok {
		return "", ErrSessionNotFound
	}
	if s.now().After(v.expires) {
		delete(s.sessions, sessionID)
		return "", ErrCodeExpired
	}
	if v.code != code {
		return "", ErrCodeMismatch
	}
	delete(s.sessions, sessionID)
	return v.email, nil
}

// SweepExpired drops sessions past their expiry. Redeem checks expiry on
// its own; this only bounds memory growth.
func (s *OTPStore) SweepExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, v := range s.sessions {
		if now.After(v.expires) {
			delete(s.sessions, id)
		}
	}
}

// Len reports how many sessions are pending.
func (s *OTPStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
