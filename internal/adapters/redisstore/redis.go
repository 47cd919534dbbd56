package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
	"github.com/larriantoniy/tg_group_joiner/internal/ports"
)

// CredentialStore держит аккаунты в Redis:
// <prefix>:creds:<session>: JSON, <prefix>:sessions, множество имён.
type CredentialStore struct {
	rdb    *redis.Client
	prefix string
}

var _ ports.CredentialStore = (*CredentialStore)(nil)

func New(rdb *redis.Client, prefix string) *CredentialStore {
	return &CredentialStore{rdb: rdb, prefix: prefix}
}

// Dial подключается и сразу пингует, чтобы упасть до начала прогона.
func Dial(ctx context.Context, addr, password string, db int, prefix string) (*CredentialStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return New(rdb, prefix), nil
}

func (s *CredentialStore) Close() error {
	return s.rdb.Close()
}

func (s *CredentialStore) credsKey(session string) string {
	return s.prefix + ":creds:" + session
}

func (s *CredentialStore) sessionsKey() string {
	return s.prefix + ":sessions"
}

func (s *CredentialStore) Load(ctx context.Context, sessionName string) (*domain.Credentials, error) {
	data, err := s.rdb.Get(ctx, s.credsKey(sessionName)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrCredentialsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", sessionName, err)
	}

	var creds domain.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("unmarshal credentials %s: %w", sessionName, err)
	}
	return &creds, nil
}

func (s *CredentialStore) Save(ctx context.Context, creds domain.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.credsKey(creds.SessionName), data, 0)
		pipe.SAdd(ctx, s.sessionsKey(), creds.SessionName)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save %s: %w", creds.SessionName, err)
	}
	return nil
}

func (s *CredentialStore) List(ctx context.Context) ([]domain.Credentials, error) {
	names, err := s.rdb.SMembers(ctx, s.sessionsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	if len(names) == 0 {
		return nil, nil
	}

	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = s.credsKey(n)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	out := make([]domain.Credentials, 0, len(vals))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			// ключ пропал между SMEMBERS и MGET
			continue
		}
		var creds domain.Credentials
		if err := json.Unmarshal([]byte(str), &creds); err != nil {
			return nil, fmt.Errorf("unmarshal credentials %s: %w", names[i], err)
		}
		out = append(out, creds)
	}

	domain.SortByLastUsed(out)
	return out, nil
}

func (s *CredentialStore) Delete(ctx context.Context, sessionName string) error {
	var del *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.credsKey(sessionName))
		pipe.SRem(ctx, s.sessionsKey(), sessionName)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", sessionName, err)
	}
	if del.Val() == 0 {
		return ports.ErrCredentialsNotFound
	}
	return nil
}
