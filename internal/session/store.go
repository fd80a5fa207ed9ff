// Package session manages login sessions and the revoked-token blacklist in
// the shared Redis instance backing all serving nodes.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"

	"github.com/meminc/powsysmon/internal/domain"
)

const (
	sessionKeyPrefix   = "session:"
	blacklistKeyPrefix = "blacklist:"
)

// ErrNotFound is returned when a session id resolves to nothing.
var ErrNotFound = errors.New("session: not found")

// Store persists sessions and blacklist markers. All mutations are idempotent,
// so duplicate deliveries are safe without client-side locking.
type Store struct {
	client     redis.UniversalClient
	node       *snowflake.Node
	sessionTTL time.Duration
}

// NewStore constructs a Redis-backed session store.
func NewStore(client redis.UniversalClient, node *snowflake.Node, sessionTTL time.Duration) *Store {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &Store{client: client, node: node, sessionTTL: sessionTTL}
}

// Create registers a new session for the user.
func (s *Store) Create(ctx context.Context, userID int64) (domain.Session, error) {
	now := time.Now().UTC()
	sess := domain.Session{
		ID:         s.node.Generate().String(),
		UserID:     userID,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.write(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// Get loads a session by id.
func (s *Store) Get(ctx context.Context, sessionID string) (domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Session{}, ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

// Touch extends the session's sliding window and records activity. A missing
// session is not an error; the token alone still authenticates the request.
func (s *Store) Touch(ctx context.Context, sessionID string) error {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	sess.LastSeenAt = time.Now().UTC()
	return s.write(ctx, sess)
}

// Drop removes the session. Absence is not an error.
func (s *Store) Drop(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("drop session: %w", err)
	}
	return nil
}

// Revoke inserts a blacklist marker for the token with exactly the given TTL.
// The marker self-expires, so blacklist storage stays bounded by the number of
// revoked-but-not-yet-expired tokens.
func (s *Store) Revoke(ctx context.Context, tok string, ttl time.Duration) error {
	if tok == "" || ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, blacklistKeyPrefix+tok, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsBlacklisted reports whether the token was revoked. A single cache lookup;
// absence after the marker's TTL elapsed is equivalent to "not revoked".
func (s *Store) IsBlacklisted(ctx context.Context, tok string) (bool, error) {
	n, err := s.client.Exists(ctx, blacklistKeyPrefix+tok).Result()
	if err != nil {
		return false, fmt.Errorf("blacklist lookup: %w", err)
	}
	return n > 0, nil
}

func (s *Store) write(ctx context.Context, sess domain.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+sess.ID, payload, s.sessionTTL).Err(); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
