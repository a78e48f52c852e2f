package handler

import (
	"p2p-wallet/internal/adapter/http/middleware"
	redisStore "p2p-wallet/internal/adapter/storage/redis"
	"p2p-wallet/internal/core/ports"
	"p2p-wallet/pkg/apperror"
	"p2p-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	TransferSvc    ports.TransferService
	QuerySvc       ports.QueryService
	UserSvc        ports.UserService
	TokenSvc       ports.TokenService
	UserRepo       ports.UserRepository      // token subjects are resolved against it
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
	Mode           string // gin mode; empty keeps the current one
	MaxBodyBytes   int64  // 0 = middleware.DefaultMaxBodyBytes
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Mode != "" {
		gin.SetMode(deps.Mode)
	}
	r := gin.New()

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = middleware.DefaultMaxBodyBytes
	}

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBody))

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apperror.ErrNotFound("Route "+c.Request.URL.Path))
	})

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.UserRepo, deps.Logger)
	authHandler := NewAuthHandler(deps.AuthSvc)
	userHandler := NewUserHandler(deps.UserSvc)
	txnHandler := NewTransactionHandler(deps.TransferSvc, deps.QuerySvc)

	api := r.Group("/api")

	users := api.Group("/users")
	{
		users.POST("/register", rl(middleware.GroupAuthRegister), authHandler.Register)
		users.POST("/login", rl(middleware.GroupAuthLogin), authHandler.Login)
		users.GET("/profile", jwtAuth, rl(middleware.GroupQueries), userHandler.Profile)
	}

	transactions := api.Group("/transactions", jwtAuth)
	{
		transactions.POST("/send", rl(middleware.GroupTransfers), txnHandler.Send)
		transactions.POST("/request", rl(middleware.GroupTransfers), txnHandler.Request)
		transactions.PUT("/:id/respond", rl(middleware.GroupTransfers), txnHandler.Respond)
		transactions.GET("", rl(middleware.GroupQueries), txnHandler.List)
		transactions.GET("/summary", rl(middleware.GroupQueries), txnHandler.Summary)
		transactions.GET("/users", rl(middleware.GroupQueries), userHandler.Search)
	}

	return r
}
