package router

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"flowspace/internal/auth"
	"flowspace/internal/errors"
	"flowspace/internal/metrics"
)

// withIdentity moves the verified claims into the request context.
func withIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get("user").(*auth.Claims)
		if !ok {
			return unauthorized(errors.ErrInvalidToken, nil)
		}
		ctx := auth.WithIdentity(c.Request().Context(), auth.Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
		})
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func jwtErrorHandler(c echo.Context, err error) error {
	if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
		return unauthorized(errors.Unauthenticated("authentication required"), err)
	}
	return unauthorized(errors.ErrInvalidToken, err)
}

func unauthorized(domainErr error, cause error) error {
	resp := errors.MapErrorToHTTP(domainErr).ToErrorResponse()
	he := echo.NewHTTPError(http.StatusUnauthorized, resp)
	if cause != nil {
		he = he.SetInternal(cause)
	}
	return he
}

// requestLogger logs every request with logrus and records it in the metrics recorder.
func requestLogger(logger *logrus.Logger, recorder metrics.Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			latency := time.Since(start)

			req := c.Request()
			res := c.Response()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			recorder.RecordHTTPRequest(req.Method, route, res.Status, latency)

			entry := logger.WithFields(logrus.Fields{
				"request_id": res.Header().Get(echo.HeaderXRequestID),
				"status":     res.Status,
				"method":     req.Method,
				"path":       req.URL.Path,
				"route":      route,
				"ip":         c.RealIP(),
				"user_agent": req.UserAgent(),
				"latency":    latency.String(),
				"length":     res.Size,
			})
			if id, ok := auth.IdentityFromContext(req.Context()); ok {
				entry = entry.WithField("user_id", id.UserID.String())
			}

			switch {
			case res.Status >= http.StatusInternalServerError:
				entry.Error("HTTP request")
			case res.Status >= http.StatusBadRequest:
				entry.Warn("HTTP request")
			default:
				entry.Info("HTTP request")
			}
			return nil
		}
	}
}
