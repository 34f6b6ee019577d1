package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Gate admits requests per client key through a token bucket. With the
// default settings a client gets one admitted request per second.
type Gate struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
}

func New(ctx context.Context, limit rate.Limit, burst int) *Gate {
	g := &Gate{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
	}
	go g.evict(ctx)
	return g
}

// Allow reports whether the client identified by key may proceed right now.
func (g *Gate) Allow(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, ok := g.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(g.limit, g.burst)}
		g.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (g *Gate) evict(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.mu.Lock()
			for key, v := range g.visitors {
				if time.Since(v.lastSeen) > 3*time.Minute {
					delete(g.visitors, key)
				}
			}
			g.mu.Unlock()
		}
	}
}
