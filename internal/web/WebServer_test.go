package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adhvyk/ar-studio/webserver/internal/config"
	"github.com/adhvyk/ar-studio/webserver/internal/log"
	"github.com/adhvyk/ar-studio/webserver/internal/models/user"
	"github.com/adhvyk/ar-studio/webserver/internal/services"
	"github.com/adhvyk/ar-studio/webserver/internal/services/servicestest"
)

type testServer struct {
	server  *WebServer
	users   *servicestest.Users
	storage *servicestest.Storage
	events  *servicestest.Events
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "access-secret",
		JWTRefreshSecret: "refresh-secret",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		FrontendURL:      "http://localhost:5173",
		RateLimitMax:     1000,
		RateLimitWindow:  time.Minute,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	ts := &testServer{
		users:   servicestest.NewUsers(),
		storage: &servicestest.Storage{},
		events:  &servicestest.Events{},
	}
	clientService := services.NewClientService(
		servicestest.NewExperiences(), ts.users, servicestest.NewAssets(), ts.storage, ts.events, log.NewNopLogger(),
	)
	ts.server = NewWebServer(cfg, clientService, log.NewNopLogger())
	return ts
}

// do sends a request and decodes a JSON response body into out when out is non-nil.
func (ts *testServer) do(t *testing.T, method, path, token string, body any, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.server.App().Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out), string(data))
	}
	return resp
}

type authBody struct {
	ID           string `json:"_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type messageBody struct {
	Message string `json:"message"`
}

func (ts *testServer) register(t *testing.T, email string) authBody {
	t.Helper()
	var body authBody
	resp := ts.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name": "Tester", "email": email, "password": "secret",
	}, &body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body
}

func TestWebServer_Health(t *testing.T) {
	ts := newTestServer(t, testConfig())

	var body map[string]string
	resp := ts.do(t, http.MethodGet, "/health", "", nil, &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestWebServer_CORSAllowsFrontend(t *testing.T) {
	ts := newTestServer(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")

	resp, err := ts.server.App().Test(req, -1)

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestWebServer_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitMax = 2
	ts := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		resp := ts.do(t, http.MethodGet, "/health", "", nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp := ts.do(t, http.MethodGet, "/health", "", nil, nil)

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestWebServer_ErrorHandler(t *testing.T) {
	cfg := testConfig()
	cfg.Development = true
	ts := newTestServer(t, cfg)
	ts.server.App().Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	var body map[string]any
	resp := ts.do(t, http.MethodGet, "/boom", "", nil, &body)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Internal Server Error", body["message"])
	assert.Equal(t, "boom", body["error"])

	var missing messageBody
	resp = ts.do(t, http.MethodGet, "/nowhere", "", nil, &missing)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, missing.Message)
}

func TestWebServer_ErrorHandlerHidesDetailsInProduction(t *testing.T) {
	ts := newTestServer(t, testConfig())
	ts.server.App().Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	var body map[string]any
	ts.do(t, http.MethodGet, "/boom", "", nil, &body)

	assert.NotContains(t, body, "error")
}

func TestWebServer_RegisterAndLogin(t *testing.T) {
	ts := newTestServer(t, testConfig())

	registered := ts.register(t, "ada@example.com")
	assert.Equal(t, "ada@example.com", registered.Email)
	assert.Equal(t, user.RoleUser, registered.Role)
	assert.NotEmpty(t, registered.Token)
	assert.NotEmpty(t, registered.RefreshToken)

	var dup messageBody
	resp := ts.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name": "Ada", "email": "ada@example.com", "password": "other",
	}, &dup)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User already exists", dup.Message)

	resp = ts.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{"email": "bob@example.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var login authBody
	resp = ts.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "ada@example.com", "password": "secret"}, &login)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, registered.ID, login.ID)

	var bad messageBody
	resp = ts.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "ada@example.com", "password": "wrong"}, &bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", bad.Message)
}

func TestWebServer_RefreshAndMe(t *testing.T) {
	ts := newTestServer(t, testConfig())
	registered := ts.register(t, "ada@example.com")

	var refreshed struct {
		Token string `json:"token"`
	}
	resp := ts.do(t, http.MethodPost, "/api/auth/refresh", "", fiber.Map{"refreshToken": registered.RefreshToken}, &refreshed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, refreshed.Token)

	var me struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Password string `json:"encrypted_password"`
	}
	resp = ts.do(t, http.MethodGet, "/api/auth/me", refreshed.Token, nil, &me)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, registered.ID, me.ID)
	assert.Empty(t, me.Password)

	// an access token is not a refresh token
	resp = ts.do(t, http.MethodPost, "/api/auth/refresh", "", fiber.Map{"refreshToken": registered.Token}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/auth/refresh", "", fiber.Map{}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/auth/logout", "", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebServer_TokenRequired(t *testing.T) {
	ts := newTestServer(t, testConfig())
	registered := ts.register(t, "ada@example.com")

	resp := ts.do(t, http.MethodGet, "/api/experiences", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/experiences", "garbage", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/experiences", nil)
	req.Header.Set("Authorization", registered.Token)
	resp, err := ts.server.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/experiences", registered.RefreshToken, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
