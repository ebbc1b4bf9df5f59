package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tallyworks/shiftclock/internal/identity/domain"
	"github.com/tallyworks/shiftclock/internal/identity/store"
	"github.com/tallyworks/shiftclock/pkg/cryptox"
	"github.com/tallyworks/shiftclock/pkg/idx"
	"github.com/tallyworks/shiftclock/pkg/slogx"
)

// DefaultSessionTTL is the fixed lifetime of a session from creation.
const DefaultSessionTTL = 7 * 24 * time.Hour

// ErrSessionInvalid covers every ordinary resolution failure: token unknown,
// session expired, or session destroyed. Callers must not be able to tell
// which; infrastructure failures are returned as distinct errors.
var ErrSessionInvalid = errors.New("session invalid or expired")

type SessionService struct {
	Store store.Store
	TTL   time.Duration
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultSessionTTL
}

// Create issues a new opaque session token for the user and persists its
// fingerprint. The raw token is returned exactly once; it is never stored.
func (s *SessionService) Create(ctx context.Context, userID string) (string, error) {
	log := slogx.FromContext(ctx)

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate session token", slog.Any("error", err))
		return "", err
	}

	session := domain.Session{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: time.Now().UTC().Add(s.ttl()),
	}

	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		log.Error("failed to persist session",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return "", err
	}

	log.Debug("session created",
		slog.String("session_id", session.ID),
		slog.String("user_id", userID),
		slog.Time("expires_at", session.ExpiresAt),
	)
	return token, nil
}

// Resolve is the single source of truth for "who is the caller". It looks up
// the session by token fingerprint and returns the owning user. An absent
// token and an expired one are indistinguishable to the caller; an expired
// row is deleted on the spot (lazy expiry, no background sweep required).
// Storage failures propagate untouched and must never be read as
// "unauthenticated".
func (s *SessionService) Resolve(ctx context.Context, token string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if token == "" {
		return domain.User{}, ErrSessionInvalid
	}

	hash := cryptox.FingerprintToken(token)
	session, err := s.Store.Sessions().GetSessionByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrSessionInvalid
		}
		log.Error("failed to fetch session", slog.Any("error", err))
		return domain.User{}, err
	}

	if session.Expired(time.Now().UTC()) {
		if err := s.Store.Sessions().DeleteSessionByTokenHash(ctx, hash); err != nil {
			log.Error("failed to delete expired session",
				slog.String("session_id", session.ID),
				slog.Any("error", err),
			)
			return domain.User{}, err
		}
		log.Debug("expired session deleted", slog.String("session_id", session.ID))
		return domain.User{}, ErrSessionInvalid
	}

	user, err := s.Store.Users().GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Owner deleted out from under the session; treat like any
			// other invalid session and drop the orphan row.
			_ = s.Store.Sessions().DeleteSessionByTokenHash(ctx, hash)
			return domain.User{}, ErrSessionInvalid
		}
		log.Error("failed to load session owner", slog.Any("error", err))
		return domain.User{}, err
	}

	return user, nil
}

// Destroy removes the session unconditionally. Destroying an absent token is
// not an error, so logout is idempotent.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.Store.Sessions().DeleteSessionByTokenHash(ctx, cryptox.FingerprintToken(token))
}
