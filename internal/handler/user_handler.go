package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"flowspace/internal/service"
)

// UserHandler handles user lookup and dashboard endpoints.
type UserHandler struct {
	userService      service.UserService
	dashboardService service.DashboardService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService, dashboardService service.DashboardService) *UserHandler {
	return &UserHandler{userService: userService, dashboardService: dashboardService}
}

// SearchUsers godoc
// @Summary Search users by email or name
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param email query string false "Email fragment"
// @Param name query string false "Name fragment"
// @Success 200 {object} Response{data=[]model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/search [get]
func (h *UserHandler) SearchUsers(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	users, err := h.userService.Search(c.Request().Context(), id.UserID, c.QueryParam("email"), c.QueryParam("name"))
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", users)
}

// DashboardStats godoc
// @Summary Dashboard statistics for owned projects
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.DashboardStats}
// @Failure 401 {object} errors.ErrorResponse
// @Router /dashboard/stats [get]
func (h *UserHandler) DashboardStats(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	stats, err := h.dashboardService.Stats(c.Request().Context(), id.UserID)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", stats)
}
