package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"mediamatrixhub/internal/app"
	"mediamatrixhub/internal/config"
	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/models"
	"mediamatrixhub/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestServer is the full router served over httptest on a private SQLite
// database.
type TestServer struct {
	Server   *httptest.Server
	DB       *gorm.DB
	Config   *config.Config
	Services *services.ServiceContainer
	Client   *http.Client
}

// TestConfig returns defaults suitable for tests: debug mail, local storage
// in a temporary directory and no rate limiting.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Server.Env = "test"
	cfg.Server.BaseURL = "http://localhost"
	cfg.Server.TimeZone = "Europe/Rome"
	cfg.JWT.Secret = "test-secret"
	cfg.Email.Debug = true
	cfg.Email.DebugEmail = "debug@example.org"
	cfg.Storage.BasePath = t.TempDir()
	cfg.Registration.LoginPerMinute = 0
	return cfg
}

var setupOnce sync.Once

func NewTestServer(t *testing.T) *TestServer {
	return NewTestServerWithConfig(t, TestConfig(t))
}

func NewTestServerWithConfig(t *testing.T, cfg *config.Config) *TestServer {
	t.Helper()
	setupOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		logger.Init("test")
	})

	db := NewTestDB(t)
	loc, err := cfg.Location()
	require.NoError(t, err)

	container, err := app.NewServices(cfg, loc)
	require.NoError(t, err)

	router, err := app.SetupRouter(cfg, db, container)
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		// Redirects are asserted, not followed.
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	return &TestServer{Server: server, DB: db, Config: cfg, Services: container, Client: client}
}

// SendRequest sends body as JSON, with token as bearer when set, and returns
// the response with its body read.
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "encode request body")
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.do(t, req)
}

// PostForm submits an urlencoded form through the cookie-keeping client.
func (ts *TestServer) PostForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.do(t, req)
}

// Get fetches path through the cookie-keeping client with optional headers.
func (ts *TestServer) Get(t *testing.T, path string, headers map[string]string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.Server.URL+path, nil)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return ts.do(t, req)
}

func (ts *TestServer) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	res, err := ts.Client.Do(req)
	require.NoError(t, err, "%s %s", req.Method, req.URL.Path)
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(resBody)
}

// LoginAdmin stores a user with role and password and returns its bearer
// token.
func (ts *TestServer) LoginAdmin(t *testing.T, email string, role models.UserRole) string {
	t.Helper()
	CreateUser(t, ts.DB, &models.User{Email: email, PasswordHash: "password123", Role: role})

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}
