package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"p2p-wallet/internal/adapter/http/middleware"
	redisStore "p2p-wallet/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func setupRateLimitRouter(store *redisStore.RateLimitStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	rule := middleware.RateLimitRule{Limit: 3, Window: time.Minute}
	log := zerolog.Nop()

	// Stand-in for JWTAuth: the X-Test-User header becomes the authenticated user.
	authAs := func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-User"); raw != "" {
			c.Set(middleware.CtxUserID, uuid.MustParse(raw))
		}
		c.Next()
	}

	r.GET("/test", authAs, middleware.RateLimiter(store, "test", rule, log), func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return r
}

func newStore(t *testing.T) (*miniredis.Miniredis, *redisStore.RateLimitStore) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redisStore.NewRateLimitStore(client)
}

func doGet(router *gin.Engine, user string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/test", nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	_, store := newStore(t)
	router := setupRateLimitRouter(store)

	for i := 0; i < 3; i++ {
		w := doGet(router, "")
		assert.Equal(t, 200, w.Code, "request %d should succeed", i+1)
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	_, store := newStore(t)
	router := setupRateLimitRouter(store)

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, doGet(router, "").Code)
	}

	w := doGet(router, "")
	assert.Equal(t, 429, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, w.Body.String(), "RATE_001")
}

func TestRateLimiter_KeysByAuthenticatedUser(t *testing.T) {
	_, store := newStore(t)
	router := setupRateLimitRouter(store)

	alice := uuid.New().String()
	bob := uuid.New().String()

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, doGet(router, alice).Code)
	}
	assert.Equal(t, 429, doGet(router, alice).Code)

	// Independent counters for another user and for the anonymous IP.
	assert.Equal(t, 200, doGet(router, bob).Code)
	assert.Equal(t, 200, doGet(router, "").Code)
}

func TestRateLimiter_DegradesWhenRedisDown(t *testing.T) {
	mr, store := newStore(t)
	router := setupRateLimitRouter(store)
	mr.Close()

	for i := 0; i < 5; i++ {
		w := doGet(router, "")
		assert.Equal(t, 200, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestDefaultRateLimitRules(t *testing.T) {
	rules := middleware.DefaultRateLimitRules()
	assert.Equal(t, middleware.RateLimitRule{Limit: 5, Window: time.Hour}, rules[middleware.GroupAuthRegister])
	assert.Equal(t, middleware.RateLimitRule{Limit: 10, Window: time.Minute}, rules[middleware.GroupAuthLogin])
	assert.Equal(t, middleware.RateLimitRule{Limit: 30, Window: time.Minute}, rules[middleware.GroupTransfers])
	assert.Equal(t, middleware.RateLimitRule{Limit: 60, Window: time.Minute}, rules[middleware.GroupQueries])
}
