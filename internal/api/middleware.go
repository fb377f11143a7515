package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// requestLogger writes one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		zap.L().Info("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

// clientLimiter keeps one token bucket per client address. A bucket left
// idle long enough to refill completely is indistinguishable from a new one
// and is dropped on the next sweep; maxClients bounds the table between sweeps.
type clientLimiter struct {
	mu         sync.Mutex
	clients    map[string]*client
	rps        rate.Limit
	burst      int
	idle       time.Duration
	maxClients int
	lastSweep  time.Time
	now        func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	minLimiterIdle    = time.Minute
	defaultMaxClients = 10000
)

func newClientLimiter(rps float64, burst, maxClients int, now func() time.Time) *clientLimiter {
	if burst < 1 {
		burst = 1
	}
	if maxClients < 1 {
		maxClients = defaultMaxClients
	}
	if now == nil {
		now = time.Now
	}
	idle := minLimiterIdle
	if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > idle {
		idle = refill
	}
	return &clientLimiter{
		clients:    make(map[string]*client),
		rps:        rate.Limit(rps),
		burst:      burst,
		idle:       idle,
		maxClients: maxClients,
		lastSweep:  now(),
		now:        now,
	}
}

// allow spends one token from the caller's bucket.
func (c *clientLimiter) allow(addr string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) >= c.idle {
		c.sweep(now)
	}
	cl, ok := c.clients[addr]
	if !ok {
		if len(c.clients) >= c.maxClients {
			c.evictStalest()
		}
		cl = &client{limiter: rate.NewLimiter(c.rps, c.burst)}
		c.clients[addr] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

func (c *clientLimiter) sweep(now time.Time) {
	for addr, cl := range c.clients {
		if now.Sub(cl.lastSeen) >= c.idle {
			delete(c.clients, addr)
		}
	}
	c.lastSweep = now
}

func (c *clientLimiter) evictStalest() {
	var stalest string
	var seen time.Time
	for addr, cl := range c.clients {
		if stalest == "" || cl.lastSeen.Before(seen) {
			stalest, seen = addr, cl.lastSeen
		}
	}
	delete(c.clients, stalest)
}

func (c *clientLimiter) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

func (c *clientLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !c.allow(clientAddr(r)) {
			w.Header().Set("Retry-After", "1")
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddr strips the port from RemoteAddr. Forwarding headers only reach
// it when the server trusts its proxy and RealIP has rewritten RemoteAddr.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
