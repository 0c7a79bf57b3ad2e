package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/adityabp/miniblog/internal/auth"
	"github.com/adityabp/miniblog/internal/config"
	"github.com/adityabp/miniblog/internal/posts"
)

type Server struct {
	config     *config.AppConfig
	log        *zap.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

type Params struct {
	fx.In

	Config         *config.AppConfig
	Logger         *zap.Logger
	AuthHandler    *auth.Handler
	AuthMiddleware *auth.AuthMiddleware
	PostHandler    *posts.Handler
}

func NewServer(p Params) *Server {
	if os.Getenv("APP_ENV") == EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	store := cookie.NewStore([]byte(p.Config.Auth.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		Secure:   os.Getenv("APP_ENV") == EnvProduction,
		// Lax so that signed verification links opened from a mail
		// client still carry the session cookie.
		SameSite: http.SameSiteLaxMode,
	})
	engine.Use(sessions.Sessions(p.Config.Auth.SessionName, store))

	registerRoutes(engine, p)

	server := &Server{
		config: p.Config,
		log:    p.Logger,
		engine: engine,
	}

	return server
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port)

	s.log.Info("Starting HTTP server",
		zap.String("address", addr),
		zap.Object("config", serverConfigToField(s.config)),
	)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

func serverConfigToField(config *config.AppConfig) zapcore.ObjectMarshaler {
	return zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString("environment", os.Getenv("APP_ENV"))
		enc.AddInt("login_max_attempts", config.Auth.LoginMaxAttempts)
		enc.AddInt("login_decay_seconds", config.Auth.LoginDecaySeconds)
		return nil
	})
}

func (s *Server) Stop() {
	s.log.Info("shutting down HTTP server")

	if s.httpServer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Error("failed to shut down server", zap.Error(err))
	}
}
