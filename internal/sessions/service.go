package sessions

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrStateMismatch is returned when the callback state is absent, expired or
// different from the one issued for the attempt.
var ErrStateMismatch = errors.New("oauth state mismatch")

// Service wraps repository operations with attempt lifecycle rules
type Service struct {
	repo Repository
	ttl  time.Duration
}

func NewService(r Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{repo: r, ttl: ttl}
}

// TTL is the lifetime of a new attempt.
func (s *Service) TTL() time.Duration { return s.ttl }

// Begin stores a new attempt with a fresh random state.
func (s *Service) Begin(ctx context.Context, redirectURI string) (*Attempt, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	a := &Attempt{
		ID:          uuid.NewString(),
		State:       hex.EncodeToString(b),
		RedirectURI: redirectURI,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Consume removes the attempt and checks state against it. The attempt is
// removed whether or not the state matches, so a state is usable once even
// when two callbacks race for it.
func (s *Service) Consume(ctx context.Context, id, state string) (*Attempt, error) {
	if id == "" {
		return nil, ErrStateMismatch
	}
	a, err := s.repo.Take(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil || state == "" {
		return nil, ErrStateMismatch
	}
	if time.Now().UTC().After(a.ExpiresAt) {
		return nil, ErrStateMismatch
	}
	if subtle.ConstantTimeCompare([]byte(a.State), []byte(state)) != 1 {
		return nil, ErrStateMismatch
	}
	return a, nil
}
