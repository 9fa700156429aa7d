package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/banachtech/hedger/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const (
	authorizationHeaderKey  = "authorization"
	authorizationTypeBearer = "bearer"
)

// authentication checks the bearer API key against the configured bcrypt
// hash.
func (server *Server) authentication(c *gin.Context) {
	if server.keyHash == nil {
		c.Next()
		return
	}
	authorizationHeader := c.GetHeader(authorizationHeaderKey)

	if len(authorizationHeader) == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("authorization header is not provided")))
		return
	}

	fields := strings.Fields(authorizationHeader)
	if len(fields) < 2 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("invalid authorization header format")))
		return
	}

	authorizationType := strings.ToLower(fields[0])
	if authorizationType != authorizationTypeBearer {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(fmt.Errorf("unsupported authorization type: %s", authorizationType)))
		return
	}

	if err := bcrypt.CompareHashAndPassword(server.keyHash, []byte(fields[1])); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("invalid API key")))
		return
	}

	c.Next()
}

// limiterIdle is how long a client's bucket is kept after its last request.
const limiterIdle = 10 * time.Minute

type client struct {
	limiter *rate.Limiter
	seen    time.Time
}

// limiters hands out one token bucket per client. Buckets idle for
// limiterIdle are dropped, at most once per limiterIdle.
type limiters struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	clients   map[string]*client
	now       func() time.Time
	lastSweep time.Time
}

func newLimiters(limit rate.Limit, burst int) *limiters {
	if limit <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &limiters{limit: limit, burst: burst, clients: make(map[string]*client), now: time.Now}
}

func (l *limiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterIdle {
		for k, c := range l.clients {
			if now.Sub(c.seen) >= limiterIdle {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.seen = now
	return c.limiter
}

func (server *Server) rateLimit(c *gin.Context) {
	if !server.limiters.get(c.ClientIP()).Allow() {
		metrics.RateLimited.Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse(errors.New("too many requests")))
		return
	}
	c.Next()
}
