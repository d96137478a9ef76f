package middleware

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/runshare/runshare-api/internal/api/handler/v1/response"
)

var errTooManyRequests = errors.New("too many requests, slow down")

// RateLimiter keeps a token bucket per client IP. Stale buckets are
// swept periodically so the map does not grow without bound.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter

	limit rate.Limit
	burst int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(perMinute int, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
	}

	go rl.sweep()

	return rl
}

// Limit is meant for the auth endpoints, which are the brute-force
// target.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !rl.allow(ctx.ClientIP()) {
			e := response.NewErr(http.StatusTooManyRequests, errTooManyRequests)
			response.RenderErr(ctx, e)
			return
		}

		ctx.Next()
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = client
	}
	client.lastSeen = time.Now()

	return client.limiter.Allow()
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for ip, client := range rl.clients {
			if time.Since(client.lastSeen) > 15*time.Minute {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}
