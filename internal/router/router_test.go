package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowspace/internal/auth"
	"flowspace/internal/config"
	"flowspace/internal/handler"
	"flowspace/internal/metrics"
	"flowspace/internal/repository"
	"flowspace/internal/service"
	"flowspace/internal/testutil"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Detail  string          `json:"detail"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t *testing.T
	e *echo.Echo
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()

	gormDB := testutil.NewDB(t)
	store := repository.NewStore(gormDB)
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	reg := prometheus.NewRegistry()
	recorder := metrics.NewCollector(reg)

	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil))

	userService := service.NewUserService(store.Users(), nil)
	e := echo.New()
	Register(e, Options{
		Config:   cfg,
		JWT:      jwtService,
		Logger:   logger,
		Recorder: recorder,
		Gatherer: reg,
	}, Handlers{
		Health:  handler.NewHealthHandler(nil, nil),
		Auth:    handler.NewAuthHandler(service.NewAuthService(store.Users(), jwtService), userService),
		User:    handler.NewUserHandler(userService, service.NewDashboardService(store, nil)),
		Project: handler.NewProjectHandler(service.NewProjectService(store, nil, recorder)),
		Member:  handler.NewMemberHandler(service.NewMemberService(store, recorder)),
		Task:    handler.NewTaskHandler(service.NewTaskService(store, nil, recorder)),
		Report:  handler.NewReportHandler(service.NewReportService(store, recorder)),
	})

	return &testServer{t: t, e: e}
}

func testConfig() *config.Config {
	return &config.Config{AppEnv: "test", ClientURL: "http://localhost:5173"}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get(echo.HeaderContentType) != "" && rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (s *testServer) register(email string) (string, string) {
	s.t.Helper()
	rec, env := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "pw123456",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var data struct {
		User  struct{ ID string } `json:"user"`
		Token string              `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.User.ID, data.Token
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type idOnly struct {
	ID    string  `json:"id"`
	Order float64 `json:"order"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec, _ := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec, env := s.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		name         string
		token        string
		expectedCode string
	}{
		{name: "missing token", token: "", expectedCode: "UNAUTHENTICATED"},
		{name: "garbage token", token: "not-a-jwt", expectedCode: "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := s.do(http.MethodGet, "/api/projects", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tt.expectedCode, env.Code)
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t, testConfig())
	s.register("alice@x.com")

	rec, env := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "alice@x.com", "password": "pw123456"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "USER_ALREADY_EXISTS", env.Code)

	rec, env = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "nope", "password": "pw123456"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	rec, env = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@x.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Code)

	rec, env = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@x.com", "password": "pw123456"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[struct {
		Token string `json:"token"`
	}](t, env.Data).Token

	rec, env = s.do(http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@x.com", decode[struct {
		Email string `json:"email"`
	}](t, env.Data).Email)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestProjectAccessScenario(t *testing.T) {
	s := newTestServer(t, testConfig())
	_, alice := s.register("alice@x.com")
	_, bob := s.register("bob@x.com")

	rec, env := s.do(http.MethodPost, "/api/projects", alice, map[string]string{"name": "Launch"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	project := decode[idOnly](t, env.Data)

	rec, env = s.do(http.MethodGet, "/api/projects/"+project.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PROJECT_NOT_FOUND", env.Code)

	rec, _ = s.do(http.MethodPost, "/api/projects/"+project.ID+"/members", alice, map[string]string{"email": "bob@x.com", "role": "MEMBER"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env = s.do(http.MethodGet, "/api/projects/"+project.ID, bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[struct {
		Name    string   `json:"name"`
		Members []idOnly `json:"members"`
	}](t, env.Data)
	assert.Equal(t, "Launch", detail.Name)
	assert.Len(t, detail.Members, 2)

	rec, env = s.do(http.MethodPut, "/api/projects/"+project.ID, bob, map[string]string{"name": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "OWNER_ONLY", env.Code)

	rec, _ = s.do(http.MethodGet, "/api/projects/not-a-uuid", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKanbanFlow(t *testing.T) {
	s := newTestServer(t, testConfig())
	_, alice := s.register("alice@x.com")

	_, env := s.do(http.MethodPost, "/api/projects", alice, map[string]string{"name": "Launch"})
	project := decode[idOnly](t, env.Data)
	tasksPath := "/api/tasks/projects/" + project.ID + "/tasks"

	var created []idOnly
	for _, title := range []string{"a", "b", "c"} {
		rec, env := s.do(http.MethodPost, tasksPath, alice, map[string]string{"title": title})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		created = append(created, decode[idOnly](t, env.Data))
	}
	for i, task := range created {
		assert.Equal(t, float64(i), task.Order)
	}

	rec, _ := s.do(http.MethodPatch, "/api/tasks/"+created[0].ID+"/status", alice, map[string]interface{}{"status": "DOING", "order": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = s.do(http.MethodGet, tasksPath, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	board := decode[struct {
		Tasks   []idOnly            `json:"tasks"`
		Grouped map[string][]idOnly `json:"grouped"`
	}](t, env.Data)
	assert.Len(t, board.Tasks, 3)
	require.Len(t, board.Grouped["DOING"], 1)
	assert.Equal(t, created[0].ID, board.Grouped["DOING"][0].ID)
	assert.Equal(t, float64(2), board.Grouped["DOING"][0].Order)
	assert.Len(t, board.Grouped["TODO"], 2)
	assert.Empty(t, board.Grouped["DONE"])

	rec, env = s.do(http.MethodPatch, "/api/tasks/"+created[1].ID+"/status", alice, map[string]string{"status": "BLOCKED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	rec, _ = s.do(http.MethodDelete, "/api/tasks/"+created[2].ID, alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, env = s.do(http.MethodDelete, "/api/tasks/"+created[2].ID, alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TASK_NOT_FOUND", env.Code)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, testConfig())
	_, alice := s.register("alice@x.com")

	rec, env := s.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ROUTE_NOT_FOUND", env.Code)

	// Unmatched paths under /api sit behind authentication.
	rec, _ = s.do(http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = s.do(http.MethodGet, "/api/nowhere", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ROUTE_NOT_FOUND", env.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	s := newTestServer(t, cfg)
	_, alice := s.register("alice@x.com")

	rec, _ := s.do(http.MethodGet, "/api/projects", alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := s.do(http.MethodGet, "/api/projects", alice, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", env.Code)
}

func TestErrorDetailInDevelopment(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		wantDetail bool
	}{
		{name: "development", env: "development", wantDetail: true},
		{name: "production", env: "production", wantDetail: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			logger := logrus.New()
			logger.SetOutput(bytes.NewBuffer(nil))
			e.HTTPErrorHandler = errorHandler(logger, tt.env == "development")
			e.GET("/boom", func(c echo.Context) error {
				return assert.AnError
			})

			req := httptest.NewRequest(http.MethodGet, "/boom", nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			var env envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "INTERNAL_ERROR", env.Code)
			assert.Equal(t, "internal server error", env.Message)
			if tt.wantDetail {
				assert.Equal(t, assert.AnError.Error(), env.Detail)
			} else {
				assert.Empty(t, env.Detail)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig())
	s.do(http.MethodGet, "/healthz", "", nil)

	rec, _ := s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "flowspace_http_requests_total")
}
