package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"flowspace/internal/auth"
	"flowspace/internal/errors"
)

// Response is the success envelope returned by every endpoint.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, Response{Status: "success", Message: message, Data: data})
}

// fail converts a service error into an echo error carrying the envelope.
// The original error is kept as the internal cause for logging.
func fail(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

func badRequest(message string) error {
	return fail(errors.Validation(message))
}

// currentUser returns the identity placed in the request context by the auth middleware.
func currentUser(c echo.Context) (auth.Identity, error) {
	id, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return auth.Identity{}, fail(errors.Unauthenticated("authentication required"))
	}
	return id, nil
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Status:  "error",
			Message: "invalid " + name,
			Code:    "INVALID_UUID",
		})
	}
	return id, nil
}
