package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/sentiscope/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "sentiscope:session:"

	// maxTxRetries bounds optimistic retries when concurrent writers touch the same session.
	maxTxRetries = 10
)

var _ domain.SessionRepository = (*SessionStore)(nil)

// SessionStore keeps one JSON document per session under a TTL. Update uses
// WATCH/MULTI so concurrent read-modify-write cycles never lose a write.
type SessionStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *goredis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return keyPrefix + id.String()
}

func (s *SessionStore) Get(ctx context.Context, sessionID uuid.UUID) (domain.SessionState, error) {
	state, err := load(ctx, s.rdb, sessionKey(sessionID))
	if err != nil {
		return domain.SessionState{}, unavailable("get session", err)
	}
	return state, nil
}

func (s *SessionStore) Update(ctx context.Context, sessionID uuid.UUID, fn domain.UpdateFunc) (domain.SessionState, error) {
	key := sessionKey(sessionID)

	var (
		next      domain.SessionState
		updateErr error
	)
	txf := func(tx *goredis.Tx) error {
		updateErr = nil
		current, err := load(ctx, tx, key)
		if err != nil {
			return err
		}

		next, updateErr = fn(current)
		if updateErr != nil {
			return updateErr
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}

	for range maxTxRetries {
		err := s.rdb.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return next, nil
		case updateErr != nil:
			return domain.SessionState{}, updateErr
		case errors.Is(err, goredis.TxFailedErr):
			continue
		default:
			return domain.SessionState{}, unavailable("update session", err)
		}
	}
	return domain.SessionState{}, unavailable("update session", fmt.Errorf("gave up after %d conflicting writes", maxTxRetries))
}

func (s *SessionStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.rdb.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return unavailable("delete session", err)
	}
	return nil
}

type getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

func load(ctx context.Context, r getter, key string) (domain.SessionState, error) {
	data, err := r.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.SessionState{}, nil
	}
	if err != nil {
		return domain.SessionState{}, err
	}

	var state domain.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.SessionState{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return state, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
