package router

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"flowspace/internal/errors"
)

// errorHandler renders every error into the error envelope. The underlying
// cause is exposed as detail only in development.
func errorHandler(logger *logrus.Logger, development bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, resp, cause := resolve(err)

		if status >= http.StatusInternalServerError {
			logger.WithError(cause).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"path":   c.Request().URL.Path,
			}).Error("request failed")
		}
		if development && cause != nil && cause.Error() != resp.Message {
			resp.Detail = cause.Error()
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, resp)
		}
		if err != nil {
			logger.WithError(err).Error("write error response")
		}
	}
}

func resolve(err error) (int, errors.ErrorResponse, error) {
	var he *echo.HTTPError
	if !stderrors.As(err, &he) {
		httpErr := errors.MapErrorToHTTP(err)
		return httpErr.StatusCode, httpErr.ToErrorResponse(), err
	}

	cause := he.Internal
	if resp, ok := he.Message.(errors.ErrorResponse); ok {
		return he.Code, resp, cause
	}

	if he.Code == http.StatusNotFound {
		resp := errors.MapErrorToHTTP(errors.ErrRouteNotFound).ToErrorResponse()
		return he.Code, resp, cause
	}

	message := http.StatusText(he.Code)
	if m, ok := he.Message.(string); ok && m != "" {
		message = m
	} else if he.Message != nil {
		message = fmt.Sprint(he.Message)
	}
	return he.Code, errors.ErrorResponse{
		Status:  "error",
		Message: message,
		Code:    errors.CodeForStatus(he.Code),
	}, cause
}
