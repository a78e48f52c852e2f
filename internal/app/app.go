// Package app assembles storage, services and the HTTP router into a
// runnable server.
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"p2p-wallet/config"
	httpHandler "p2p-wallet/internal/adapter/http/handler"
	"p2p-wallet/internal/adapter/storage/memory"
	pgStorage "p2p-wallet/internal/adapter/storage/postgres"
	redisStorage "p2p-wallet/internal/adapter/storage/redis"
	"p2p-wallet/internal/core/ports"
	"p2p-wallet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// App is a fully wired wallet server.
type App struct {
	cfg     *config.Config
	log     zerolog.Logger
	router  *gin.Engine
	closers []func()
}

// storage groups the repositories of one backend.
type storage struct {
	users      ports.UserRepository
	txns       ports.TransactionRepository
	audit      ports.AuditRepository
	transactor ports.DBTransactor
	health     ports.HealthChecker
}

// New connects to the configured backends and builds the router.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &App{cfg: cfg, log: log}

	store, err := a.openStorage(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	checkers := []ports.HealthChecker{store.health}

	var rateLimitStore *redisStorage.RateLimitStore
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		checkers = append(checkers, redisStorage.NewHealthCheck(rdb))
	} else {
		log.Warn().Msg("Redis disabled, rate limiting is off")
	}

	startingBalance, err := cfg.Wallet.Starting()
	if err != nil {
		a.Close()
		return nil, err
	}

	secret := cfg.JWT.Secret
	if secret == "" {
		secret = randomSecret()
		log.Warn().Msg("jwt.secret not set, using an ephemeral secret; tokens will not survive a restart")
	}

	hashSvc := service.NewArgon2HashService(service.Argon2ParamsFromConfig(cfg.Password))
	tokenSvc := service.NewJWTTokenService(secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	authSvc := service.NewAuthService(store.users, hashSvc, tokenSvc, startingBalance, log)
	transferSvc := service.NewTransferService(store.users, store.txns, store.transactor, log)
	querySvc := service.NewQueryService(store.txns, log)
	userSvc := service.NewUserService(store.users)
	auditSvc := service.NewAuditService(store.audit, log)

	a.router = httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		TransferSvc:    transferSvc,
		QuerySvc:       querySvc,
		UserSvc:        userSvc,
		TokenSvc:       tokenSvc,
		UserRepo:       store.users,
		RateLimitStore: rateLimitStore,
		HealthCheckers: checkers,
		AuditSvc:       auditSvc,
		Logger:         log,
		Mode:           cfg.Server.Mode,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	})

	return a, nil
}

func (a *App) openStorage(ctx context.Context) (*storage, error) {
	switch a.cfg.Database.Driver {
	case config.DriverMemory:
		a.log.Warn().Msg("Using in-memory storage, data is lost on exit")
		mem := memory.NewStore()
		return &storage{
			users:      mem.Users(),
			txns:       mem.Transactions(),
			audit:      mem.Audit(),
			transactor: mem,
			health:     mem,
		}, nil

	case config.DriverPostgres:
		if a.cfg.Database.AutoMigrate {
			if err := pgStorage.Migrate(a.cfg.Database, a.log); err != nil {
				return nil, fmt.Errorf("running migrations: %w", err)
			}
		}
		pool, err := pgStorage.NewPool(ctx, a.cfg.Database, a.log)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		return &storage{
			users:      pgStorage.NewUserRepo(pool),
			txns:       pgStorage.NewTransactionRepo(pool),
			audit:      pgStorage.NewAuditRepo(pool),
			transactor: pgStorage.NewTransactor(pool),
			health:     pgStorage.NewHealthCheck(pool),
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", a.cfg.Database.Driver)
}

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Close releases backend connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("reading random bytes: %v", err))
	}
	return hex.EncodeToString(b)
}
