package throttle

import "context"

// Limiter decides whether one more request for key may proceed. It guards
// the upload edge and is independent of the per-member submission window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Policy struct {
	PerMinute int
	Burst     int
}

func (p Policy) normalized() Policy {
	if p.PerMinute <= 0 {
		p.PerMinute = 60
	}
	if p.Burst <= 0 {
		p.Burst = 1
	}
	return p
}
