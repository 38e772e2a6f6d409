// Package redisrepo keeps authorization codes in Redis with a TTL matching
// their expiration.
package redisrepo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-oauth2-core/authcode"
	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyType = "authcode"

var _ authcode.Repo = (*RedisCodeRepo)(nil)

// Config is the connection configuration.
type Config interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
}

type RedisCodeRepo struct {
	client    redis.UniversalClient
	keyPrefix string
	nowTime   func() time.Time
}

// New connects to Redis and checks the connection.
func New(ctx context.Context, cfg Config) (*RedisCodeRepo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.GetRedisPassword(),
		DB:       cfg.GetRedisDB(),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "[redisrepo.New] failed to connect to redis")
	}
	return NewWithClient(client, cfg.GetRedisKeyPrefix()), nil
}

// NewWithClient wraps an existing client, such as one pointed at miniredis.
func NewWithClient(client redis.UniversalClient, keyPrefix string) *RedisCodeRepo {
	return &RedisCodeRepo{
		client:    client,
		keyPrefix: keyPrefix,
		nowTime:   time.Now,
	}
}

func (r *RedisCodeRepo) Close() error {
	return r.client.Close()
}

func (r *RedisCodeRepo) key(code oauth2.AuthorizationCode) string {
	return r.keyPrefix + keyType + ":" + string(code)
}

// Save stores the code until its expiration. SetNX refuses to overwrite a
// live code with the same value.
func (r *RedisCodeRepo) Save(ctx context.Context, code *authcode.AuthorizationCode) error {
	ttl := code.Expiration.Sub(r.nowTime())
	if ttl <= 0 {
		return errors.Errorf("[RedisCodeRepo.Save] code already expired at %s", code.Expiration.Format(time.RFC3339))
	}

	data, err := json.Marshal(code)
	if err != nil {
		return errors.Wrap(err, "[RedisCodeRepo.Save] marshal code")
	}

	ok, err := r.client.SetNX(ctx, r.key(code.Code), data, ttl).Result()
	if err != nil {
		return errors.Wrap(err, "[RedisCodeRepo.Save] set")
	}
	if !ok {
		return ierrors.ErrAlreadyExists
	}
	return nil
}

// Consume reads and deletes the code with a single GETDEL.
func (r *RedisCodeRepo) Consume(ctx context.Context, code oauth2.AuthorizationCode) (*authcode.AuthorizationCode, error) {
	data, err := r.client.GetDel(ctx, r.key(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ierrors.ErrNotFound
		}
		return nil, errors.Wrap(err, "[RedisCodeRepo.Consume] getdel")
	}

	var ac authcode.AuthorizationCode
	if err := json.Unmarshal(data, &ac); err != nil {
		return nil, errors.Wrap(err, "[RedisCodeRepo.Consume] unmarshal code")
	}
	return &ac, nil
}
