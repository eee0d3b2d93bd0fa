package throttle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLimiterEnforcesBurstPerKey(t *testing.T) {
	limiter := NewLocalLimiter(Policy{PerMinute: 1, Burst: 2})
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(context.Background(), "submit:m-1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should fit the burst", i)
	}
	allowed, err := limiter.Allow(context.Background(), "submit:m-1")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(context.Background(), "submit:m-2")
	require.NoError(t, err)
	assert.True(t, allowed, "keys must not share buckets")

	now = now.Add(time.Minute)
	allowed, err = limiter.Allow(context.Background(), "submit:m-1")
	require.NoError(t, err)
	assert.True(t, allowed, "bucket should refill after a minute")
}

func TestLocalLimiterSweepsIdleVisitors(t *testing.T) {
	limiter := NewLocalLimiter(Policy{})
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	_, _ = limiter.Allow(context.Background(), "a")
	_, _ = limiter.Allow(context.Background(), "b")
	require.Len(t, limiter.visitors, 2)

	now = now.Add(idleVisitorTTL + time.Minute)
	_, _ = limiter.Allow(context.Background(), "b")
	assert.Len(t, limiter.visitors, 1)
	assert.Contains(t, limiter.visitors, "b")
}

func TestPolicyDefaults(t *testing.T) {
	assert.Equal(t, Policy{PerMinute: 60, Burst: 1}, Policy{}.normalized())
	assert.Equal(t, Policy{PerMinute: 10, Burst: 5}, Policy{PerMinute: 10, Burst: 5}.normalized())
}

// scriptRecorder answers EVALSHA with a canned result.
type scriptRecorder struct {
	redis.Scripter
	keys   []string
	args   []interface{}
	result int64
	err    error
}

func (s *scriptRecorder) EvalSha(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	s.keys = keys
	s.args = args
	cmd := redis.NewCmd(ctx)
	if s.err != nil {
		cmd.SetErr(s.err)
		return cmd
	}
	cmd.SetVal(s.result)
	return cmd
}

func TestRedisLimiterRunsTokenBucketScript(t *testing.T) {
	client := &scriptRecorder{result: 1}
	limiter := NewRedisLimiter(client, Policy{PerMinute: 120, Burst: 4})

	allowed, err := limiter.Allow(context.Background(), "submit:m-1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, []string{"questboard:throttle:submit:m-1"}, client.keys)
	require.Len(t, client.args, 4)
	assert.Equal(t, 2.0, client.args[0])
	assert.Equal(t, 4, client.args[1])

	client.result = 0
	allowed, err = limiter.Allow(context.Background(), "submit:m-1")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRedisLimiterSurfacesErrors(t *testing.T) {
	client := &scriptRecorder{err: errors.New("connection refused")}
	limiter := NewRedisLimiter(client, Policy{})

	allowed, err := limiter.Allow(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, allowed)
	assert.Contains(t, err.Error(), "connection refused")
}
