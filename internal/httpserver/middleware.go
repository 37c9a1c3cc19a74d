package httpserver

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"storefront/internal/domain"
)

const ownerKey = "cart_owner"

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// ownerMiddleware resolves the cart owner from the bearer token. A token
// signed with secret names a customer through its "sub" claim; otherwise the
// token must be a live anonymous token.
func ownerMiddleware(secret string, anon anonymousService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			writeError(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		token := strings.TrimSpace(parts[1])

		if secret != "" {
			if sub, ok := customerSubject(token, secret); ok {
				c.Set(ownerKey, domain.CustomerOwner(sub))
				c.Next()
				return
			}
		}
		if anon != nil {
			if id, err := anon.LookupByToken(c.Request.Context(), token); err == nil {
				c.Set(ownerKey, domain.GuestOwner(id))
				c.Next()
				return
			}
		}
		writeError(c, http.StatusUnauthorized, "invalid token")
	}
}

func customerSubject(token, secret string) (string, bool) {
	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", false
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}

func ownerFrom(c *gin.Context) (domain.CartOwner, bool) {
	v, ok := c.Get(ownerKey)
	if !ok {
		return domain.CartOwner{}, false
	}
	owner, ok := v.(domain.CartOwner)
	return owner, ok
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
}

func newRateLimiter(perSecond float64, burst int) *rateLimiter {
	if perSecond <= 0 {
		perSecond = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &rateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     10 * time.Minute,
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.visitors[ip]
	if !ok {
		// prune idle visitors when a new one arrives
		for key, old := range rl.visitors {
			if now.Sub(old.lastSeen) > rl.idle {
				delete(rl.visitors, key)
			}
		}
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

func (rl *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			writeError(c, http.StatusTooManyRequests, "too many requests")
			return
		}
		c.Next()
	}
}
