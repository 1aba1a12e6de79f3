package store

import (
	"context"

	"github.com/go-redis/redis/v9"

	"github.com/Shiva-129/OmniTrade-system/decimal"
)

// casSetScript is a compare-and-swap SET: it reads the string stored at
// KEYS[1] (defaulting to "0"), and if it equals ARGV[1] stores ARGV[2]
// and returns it; otherwise it returns a "cas_mismatch" error and leaves
// the key untouched. Redis has no native fixed-precision decimal type, so
// the script does no arithmetic: IncrDecimal computes the new value in Go
// under the apd context and uses this script to persist it only if the
// value it read is still current.
const casSetScript = `
local prev = redis.call("GET", KEYS[1])
if prev == false then prev = "0" end
if prev ~= ARGV[1] then
  return {err = "cas_mismatch"}
end
redis.call("SET", KEYS[1], ARGV[2])
return ARGV[2]
`

// RedisStore is a Store backed by a shared Redis instance, letting the
// Observer and Gatekeeper run as independent processes (or replicas)
// against one source of truth, per SPEC_FULL.md's domain stack section.
type RedisStore struct {
	client *redis.Client
	cas    *redis.Script
}

// NewRedisStore wraps an existing redis.Client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, cas: redis.NewScript(casSetScript)}
}

func (s *RedisStore) GetString(ctx context.Context, key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	v, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) SetString(ctx context.Context, key string, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *RedisStore) IncrInt(ctx context.Context, key string, delta int64) (int64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}
	return s.client.IncrBy(ctx, key, delta).Result()
}

// IncrDecimal retries a GET, exact apd-context add, compare-and-swap SET
// loop until it wins the race, so two concurrent incrementers never
// clobber each other's write the way a bare GET-then-SET would.
func (s *RedisStore) IncrDecimal(ctx context.Context, key string, delta *decimal.Decimal) (*decimal.Decimal, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	for {
		cur, err := s.GetDecimal(ctx, key)
		if err != nil {
			return nil, err
		}
		next, err := decimal.Add(cur, delta)
		if err != nil {
			return nil, err
		}
		_, err = s.cas.Run(ctx, s.client, []string{key}, decimal.String(cur), decimal.String(next)).Result()
		if err == nil {
			return next, nil
		}
		if isCASMismatch(err) {
			continue
		}
		return nil, err
	}
}

func (s *RedisStore) GetDecimal(ctx context.Context, key string) (*decimal.Decimal, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	v, ok, err := s.GetString(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return decimal.Zero(), nil
	}
	return decimal.Parse(v)
}

func isCASMismatch(err error) bool {
	return err != nil && err.Error() == "cas_mismatch"
}
