package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNoSession means the token is missing, invalid, or its marker is gone.
var ErrNoSession = errors.New("no active session")

// Manager issues and verifies teacher sessions. Tokens are signed JWTs whose
// ID points at a marker in the Store; sign-out deletes the marker so a
// stale token can never pass verification again.
type Manager struct {
	issuer string
	key    string
	ttl    time.Duration
	store  Store
}

// NewManager creates a session manager.
func NewManager(issuer, signingKey string, ttl time.Duration, store Store) *Manager {
	return &Manager{issuer: issuer, key: signingKey, ttl: ttl, store: store}
}

// Start opens a session for an authenticated teacher and returns the token.
func (m *Manager) Start(ctx context.Context, teacherID, teacherName string) (string, time.Time, error) {
	id := uuid.NewString()
	token, exp, err := sign(id, teacherID, teacherName, m.issuer, m.key, m.ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	if err := m.store.Put(ctx, id, m.ttl); err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Verify checks the token signature and that the server-side marker is still
// alive, returning the claims on success.
func (m *Manager) Verify(ctx context.Context, token string) (Claims, error) {
	claims, err := parse(token, m.key, m.issuer)
	if err != nil {
		return Claims{}, ErrNoSession
	}
	active, err := m.store.Active(ctx, claims.ID)
	if err != nil {
		return Claims{}, err
	}
	if !active {
		return Claims{}, ErrNoSession
	}
	return claims, nil
}

// End revokes the session behind the token. Ending an already-dead session
// is not an error.
func (m *Manager) End(ctx context.Context, token string) error {
	claims, err := parse(token, m.key, m.issuer)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, claims.ID)
}
