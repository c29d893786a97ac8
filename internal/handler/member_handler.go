package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"flowspace/internal/model"
	"flowspace/internal/service"
)

// MemberHandler handles project membership endpoints.
type MemberHandler struct {
	memberService service.MemberService
}

// NewMemberHandler creates a new member handler.
func NewMemberHandler(memberService service.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// AddMemberRequest identifies the user to add by id or email.
type AddMemberRequest struct {
	UserID *uuid.UUID       `json:"userId"`
	Email  string           `json:"email" validate:"omitempty,email"`
	Role   model.MemberRole `json:"role" validate:"omitempty,oneof=ADMIN MEMBER VIEWER"`
}

// UpdateMemberRoleRequest changes a member's role.
type UpdateMemberRoleRequest struct {
	Role model.MemberRole `json:"role" validate:"required,oneof=ADMIN MEMBER VIEWER"`
}

// ListMembers godoc
// @Summary List project members
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Success 200 {object} Response{data=[]model.Member}
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{projectId}/members [get]
func (h *MemberHandler) ListMembers(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, "projectId")
	if err != nil {
		return err
	}

	members, err := h.memberService.List(c.Request().Context(), id.UserID, projectID)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", members)
}

// AddMember godoc
// @Summary Add a member to a project
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Param request body AddMemberRequest true "User and role"
// @Success 201 {object} Response{data=model.Member}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /projects/{projectId}/members [post]
func (h *MemberHandler) AddMember(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, "projectId")
	if err != nil {
		return err
	}

	var req AddMemberRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	member, err := h.memberService.Add(c.Request().Context(), id.UserID, projectID, service.AddMemberInput{
		UserID: req.UserID,
		Email:  req.Email,
		Role:   req.Role,
	})
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusCreated, "member added", member)
}

// UpdateMemberRole godoc
// @Summary Change a member's role
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Param memberId path string true "Member ID"
// @Param request body UpdateMemberRoleRequest true "New role"
// @Success 200 {object} Response{data=model.Member}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /projects/{projectId}/members/{memberId} [put]
func (h *MemberHandler) UpdateMemberRole(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, "projectId")
	if err != nil {
		return err
	}
	memberID, err := pathID(c, "memberId")
	if err != nil {
		return err
	}

	var req UpdateMemberRoleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	member, err := h.memberService.UpdateRole(c.Request().Context(), id.UserID, projectID, memberID, req.Role)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "member updated", member)
}

// RemoveMember godoc
// @Summary Remove a member, or leave a project
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Param memberId path string true "Member ID"
// @Success 200 {object} Response
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /projects/{projectId}/members/{memberId} [delete]
func (h *MemberHandler) RemoveMember(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, "projectId")
	if err != nil {
		return err
	}
	memberID, err := pathID(c, "memberId")
	if err != nil {
		return err
	}

	if err := h.memberService.Remove(c.Request().Context(), id.UserID, projectID, memberID); err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "member removed", nil)
}

// ListTeams godoc
// @Summary List the caller's memberships
// @Tags members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]service.Team}
// @Failure 401 {object} errors.ErrorResponse
// @Router /teams [get]
func (h *MemberHandler) ListTeams(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	teams, err := h.memberService.Teams(c.Request().Context(), id.UserID)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", teams)
}
