package auth

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/adityabp/miniblog/internal/config"
)

// NewModule returns the auth module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			// Provide redis client for the attempt limiter
			fx.Annotate(
				func(config *config.AppConfig) redis.UniversalClient {
					return redis.NewClient(&redis.Options{
						Addr:     config.Redis.Addr,
						Password: config.Redis.Password,
						DB:       config.Redis.DB,
					})
				},
			),
			// Provide repository
			fx.Annotate(
				func(db *gorm.DB) Repository {
					return NewRepository(db)
				},
			),
			// Provide attempt limiter
			fx.Annotate(
				func(config *config.AppConfig, redisClient redis.UniversalClient) AttemptLimiter {
					return NewRedisAttemptLimiter(redisClient, LimiterConfig{
						MaxAttempts: config.Auth.LoginMaxAttempts,
						DecayWindow: time.Duration(config.Auth.LoginDecaySeconds) * time.Second,
					})
				},
			),
			// Provide verification link signer
			fx.Annotate(
				func(config *config.AppConfig) *LinkSigner {
					return NewLinkSigner(config.Auth.LinkSecret, config.Auth.VerificationTTL, config.Auth.BaseURL)
				},
			),
			// Provide notifier
			fx.Annotate(
				func(log *zap.Logger) Notifier {
					return NewLogNotifier(log)
				},
			),
			// Provide service
			fx.Annotate(
				func(config *config.AppConfig, log *zap.Logger, repo Repository, limiter AttemptLimiter, links *LinkSigner, notifier Notifier) *Service {
					return NewService(&config.Auth, log, repo, limiter, links, notifier)
				},
			),
			// Provide handler
			fx.Annotate(
				func(svc *Service, log *zap.Logger) *Handler {
					return NewHandler(svc, log)
				},
			),
			// Provide middleware
			fx.Annotate(
				func(repo Repository, log *zap.Logger) *AuthMiddleware {
					return NewAuthMiddleware(repo, log)
				},
			),
		),
	)
}
