package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adityabp/miniblog/internal/config"
)

func newTestLogger(t *testing.T) *zap.Logger {
	logger, err := zap.NewDevelopment()
	assert.NoError(t, err)
	return logger
}

func newTestConfig() *config.AuthConfig {
	return &config.AuthConfig{
		SessionSecret:     "test-secret-key",
		SessionName:       "test_session",
		LoginMaxAttempts:  3,
		LoginDecaySeconds: 10,
		ResetTokenTTL:     time.Hour,
		VerificationTTL:   time.Hour,
		LinkSecret:        "test-link-secret",
		BaseURL:           "http://localhost",
	}
}

func newTestLimiter(t *testing.T, cfg LimiterConfig) (*RedisAttemptLimiter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisAttemptLimiter(client, cfg), mr
}

// recordingNotifier captures dispatched notifications for assertions.
type recordingNotifier struct {
	mu               sync.Mutex
	resetTokens      map[string][]string
	verificationURLs map[string][]string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		resetTokens:      make(map[string][]string),
		verificationURLs: make(map[string][]string),
	}
}

func (n *recordingNotifier) SendPasswordReset(_ context.Context, user *User, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resetTokens[user.Email] = append(n.resetTokens[user.Email], token)
	return nil
}

func (n *recordingNotifier) SendEmailVerification(_ context.Context, user *User, verificationURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verificationURLs[user.Email] = append(n.verificationURLs[user.Email], verificationURL)
	return nil
}

func (n *recordingNotifier) lastResetToken(email string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	tokens := n.resetTokens[email]
	if len(tokens) == 0 {
		return "", false
	}
	return tokens[len(tokens)-1], true
}

func (n *recordingNotifier) verificationCount(email string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.verificationURLs[email])
}

type testEnv struct {
	service  *Service
	repo     *mockRepository
	notifier *recordingNotifier
	redis    *miniredis.Miniredis
	config   *config.AuthConfig
}

func newTestEnv(t *testing.T) *testEnv {
	cfg := newTestConfig()
	limiter, mr := newTestLimiter(t, LimiterConfig{
		MaxAttempts: cfg.LoginMaxAttempts,
		DecayWindow: time.Duration(cfg.LoginDecaySeconds) * time.Second,
	})
	repo := newMockRepository()
	notifier := newRecordingNotifier()
	links := NewLinkSigner(cfg.LinkSecret, cfg.VerificationTTL, cfg.BaseURL)
	svc := NewService(cfg, newTestLogger(t), repo, limiter, links, notifier)

	return &testEnv{
		service:  svc,
		repo:     repo,
		notifier: notifier,
		redis:    mr,
		config:   cfg,
	}
}

// createUser registers a user directly through the repository,
// bypassing the registration flow.
func (e *testEnv) createUser(t *testing.T, email, password string, verified bool) *User {
	hash, err := e.service.HashPassword(password)
	require.NoError(t, err)

	user := &User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
	}
	if verified {
		now := time.Now()
		user.EmailVerifiedAt = &now
	}
	require.NoError(t, e.repo.CreateUser(user))
	return user
}

// newTestRouter mirrors the server's route table over the handler and
// middleware under test.
func newTestRouter(t *testing.T, env *testEnv) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	store := cookie.NewStore([]byte(env.config.SessionSecret))
	engine.Use(sessions.Sessions(env.config.SessionName, store))

	log := newTestLogger(t)
	handler := NewHandler(env.service, log)
	middleware := NewAuthMiddleware(env.repo, log)

	engine.POST("/logout", handler.Logout)

	guest := engine.Group("", middleware.RequireGuest())
	{
		guest.GET("/login", handler.ShowLogin)
		guest.POST("/login", handler.Login)
		guest.GET("/register", handler.ShowRegister)
		guest.POST("/register", handler.Register)
		guest.GET("/forgot-password", handler.ShowForgotPassword)
		guest.POST("/forgot-password", handler.ForgotPassword)
		guest.GET("/reset-password", handler.ShowResetPassword)
		guest.POST("/reset-password", handler.ResetPassword)
	}

	authed := engine.Group("", middleware.RequireAuth())
	{
		authed.GET("/dashboard", handler.Dashboard)
		authed.GET("/email/verify", handler.VerificationNotice)
		authed.GET("/email/verify/:id/:hash", handler.VerifyEmail)
		authed.POST("/email/verify/resend", handler.ResendVerification)
	}

	return engine
}

// testClient carries session cookies across requests the way a browser
// would.
type testClient struct {
	t       *testing.T
	engine  *gin.Engine
	cookies map[string]*http.Cookie
}

func newTestClient(t *testing.T, engine *gin.Engine) *testClient {
	return &testClient{
		t:       t,
		engine:  engine,
		cookies: make(map[string]*http.Cookie),
	}
}

func (c *testClient) get(path string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, path, nil)
}

func (c *testClient) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, path, form)
}

func (c *testClient) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}

	return w
}

// login drives the real login flow for an existing user.
func (c *testClient) login(email, password string) *httptest.ResponseRecorder {
	return c.postForm("/login", url.Values{
		"email":    {email},
		"password": {password},
	})
}
