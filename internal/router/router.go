package router

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"flowspace/internal/auth"
	"flowspace/internal/config"
	"flowspace/internal/handler"
	"flowspace/internal/metrics"
)

// Options carries the infrastructure the router wires into middleware.
type Options struct {
	Config   *config.Config
	JWT      *auth.JWTService
	Logger   *logrus.Logger
	Recorder metrics.Recorder
	Gatherer prometheus.Gatherer
}

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Health  *handler.HealthHandler
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Project *handler.ProjectHandler
	Member  *handler.MemberHandler
	Task    *handler.TaskHandler
	Report  *handler.ReportHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, opts Options, h Handlers) {
	cfg := opts.Config
	if opts.Recorder == nil {
		opts.Recorder = metrics.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = errorHandler(opts.Logger, cfg.IsDevelopment())

	e.Use(middleware.RequestID())
	e.Use(requestLogger(opts.Logger, opts.Recorder))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit("10M"))

	e.GET("/healthz", h.Health.Liveness)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(opts.Gatherer)))
	}

	api := e.Group("/api")
	api.GET("/health", h.Health.Health)

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return opts.JWT.VerifyToken(token)
		},
		ErrorHandler: jwtErrorHandler,
	}), withIdentity)
	if cfg.RateLimitRPS > 0 {
		secured.Use(rateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	// Auth and profile routes
	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/auth/profile", h.Auth.GetProfile)
	secured.PUT("/auth/profile", h.Auth.UpdateProfile)
	secured.POST("/auth/change-password", h.Auth.ChangePassword)

	// User and dashboard routes
	secured.GET("/users/search", h.User.SearchUsers)
	secured.GET("/dashboard/stats", h.User.DashboardStats)

	// Project routes
	secured.GET("/projects", h.Project.ListProjects)
	secured.POST("/projects", h.Project.CreateProject)
	secured.GET("/projects/:id", h.Project.GetProject)
	secured.PUT("/projects/:id", h.Project.UpdateProject)
	secured.DELETE("/projects/:id", h.Project.DeleteProject)

	// Member routes
	secured.GET("/projects/:projectId/members", h.Member.ListMembers)
	secured.POST("/projects/:projectId/members", h.Member.AddMember)
	secured.PUT("/projects/:projectId/members/:memberId", h.Member.UpdateMemberRole)
	secured.DELETE("/projects/:projectId/members/:memberId", h.Member.RemoveMember)
	secured.GET("/teams", h.Member.ListTeams)

	// Task routes
	secured.GET("/tasks/projects/:projectId/tasks", h.Task.ListTasks)
	secured.POST("/tasks/projects/:projectId/tasks", h.Task.CreateTask)
	secured.GET("/tasks/:id", h.Task.GetTask)
	secured.PUT("/tasks/:id", h.Task.UpdateTask)
	secured.PATCH("/tasks/:id/status", h.Task.UpdateTaskStatus)
	secured.DELETE("/tasks/:id", h.Task.DeleteTask)

	// Report routes
	secured.GET("/reports", h.Report.ListReports)
	secured.POST("/reports", h.Report.CreateReport)
	secured.GET("/reports/:id", h.Report.GetReport)
	secured.PUT("/reports/:id", h.Report.UpdateReport)
	secured.DELETE("/reports/:id", h.Report.DeleteReport)
}

func rateLimiter(rps float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(rps),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if id, ok := auth.IdentityFromContext(c.Request().Context()); ok {
				return id.UserID.String(), nil
			}
			return c.RealIP(), nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
