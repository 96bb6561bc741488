package ratelimit

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000) + math.floor(nowData[2] / 1000)

local data = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])

if tokens == nil then
  tokens = burst
  ts = now
else
  local delta = now - ts
  if delta < 0 then
    delta = 0
  end
  local refill = (delta / 1000) * rate
  tokens = math.min(burst, tokens + refill)
  ts = now
end

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HMSET", KEYS[1], "tokens", tokens, "ts", ts)
redis.call("PEXPIRE", KEYS[1], ttl)

return allowed
`

// SourceLimiter throttles outbound requests to one external price source.
// Adapters receive their own instance so limits stay scoped per provider
// rather than living in process-wide state. A nil limiter allows everything.
type SourceLimiter struct {
	client *redis.Client
	script *redis.Script
	key    string
	rate   float64
	burst  int
}

func NewSourceLimiter(client *redis.Client, source string, rate float64, burst int) *SourceLimiter {
	if client == nil {
		return nil
	}
	return &SourceLimiter{
		client: client,
		script: redis.NewScript(tokenBucketScript),
		key:    "baupreis:ratelimit:source:" + source,
		rate:   rate,
		burst:  burst,
	}
}

// Allow reports whether one more request to the source may be sent now.
// Redis failures fail open so a limiter outage never blocks collection.
func (s *SourceLimiter) Allow(ctx context.Context) bool {
	if s == nil || s.client == nil {
		return true
	}

	ttl := time.Duration(float64(s.burst)/s.rate*2+1) * time.Second
	allowed, err := s.script.Run(
		ctx,
		s.client,
		[]string{s.key},
		s.rate,
		s.burst,
		int64(ttl/time.Millisecond),
	).Int64()
	if err != nil {
		return true
	}
	return allowed == 1
}
