package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// jobKeyPrefix namespaces job leases away from the token-bucket keys sharing
// the same redis instance.
const jobKeyPrefix = "baupreis:jobs:"

// releaseScript deletes the lease only while the caller still owns it, so a
// lease that outlived its TTL cannot release a successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out best-effort distributed leases keyed by job name, keeping
// overlapping runs of the same job from executing concurrently. A nil Locker
// grants every lease.
type Locker struct {
	client *redis.Client
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client}
}

// Lease is an acquired job lock. Release is safe on a nil lease.
type Lease struct {
	client *redis.Client
	key    string
	token  string
}

// Acquire tries to take the lease for job. It returns acquired=false when
// another holder owns it. Without a redis client every acquire succeeds with
// a no-op lease.
func (l *Locker) Acquire(ctx context.Context, job string, ttl time.Duration) (*Lease, bool, error) {
	if l == nil || l.client == nil {
		return &Lease{}, true, nil
	}
	if job == "" {
		return nil, false, errors.New("job name is empty")
	}
	if ttl <= 0 {
		return nil, false, errors.New("lease ttl must be positive")
	}

	key := jobKeyPrefix + job
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return &Lease{client: l.client, key: key, token: token}, true, nil
}

func (le *Lease) Release(ctx context.Context) error {
	if le == nil || le.client == nil {
		return nil
	}
	return releaseScript.Run(ctx, le.client, []string{le.key}, le.token).Err()
}
