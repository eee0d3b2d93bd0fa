package throttle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const idleVisitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter keeps one token bucket per key in process memory. Idle keys
// are swept during Allow, so no background goroutine is needed.
type LocalLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	policy    Policy
	lastSweep time.Time
	now       func() time.Time
}

func NewLocalLimiter(policy Policy) *LocalLimiter {
	return &LocalLimiter{
		visitors: make(map[string]*visitor),
		policy:   policy.normalized(),
		now:      time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{
			limiter: rate.NewLimiter(rate.Limit(float64(l.policy.PerMinute)/60.0), l.policy.Burst),
		}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1), nil
}

func (l *LocalLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < time.Minute {
		return
	}
	l.lastSweep = now
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > idleVisitorTTL {
			delete(l.visitors, key)
		}
	}
}
