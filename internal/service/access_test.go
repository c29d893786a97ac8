package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"flowspace/internal/model"
)

func TestCanAccess(t *testing.T) {
	owner, member, stranger := uuid.New(), uuid.New(), uuid.New()
	project := &model.Project{ID: uuid.New(), OwnerID: owner}
	otherProject := uuid.New()

	tests := []struct {
		name       string
		userID     uuid.UUID
		project    *model.Project
		membership *model.Member
		expected   Access
	}{
		{name: "owner without membership row", userID: owner, project: project, expected: AccessWrite},
		{
			name:       "owner with OWNER membership",
			userID:     owner,
			project:    project,
			membership: &model.Member{UserID: owner, ProjectID: project.ID, Role: model.RoleOwner},
			expected:   AccessWrite,
		},
		{
			name:       "member",
			userID:     member,
			project:    project,
			membership: &model.Member{UserID: member, ProjectID: project.ID, Role: model.RoleMember},
			expected:   AccessRead,
		},
		{
			name:       "viewer role is still read",
			userID:     member,
			project:    project,
			membership: &model.Member{UserID: member, ProjectID: project.ID, Role: model.RoleViewer},
			expected:   AccessRead,
		},
		{
			name:       "admin role does not grant write",
			userID:     member,
			project:    project,
			membership: &model.Member{UserID: member, ProjectID: project.ID, Role: model.RoleAdmin},
			expected:   AccessRead,
		},
		{name: "stranger", userID: stranger, project: project, expected: AccessNone},
		{
			name:       "membership of another project",
			userID:     member,
			project:    project,
			membership: &model.Member{UserID: member, ProjectID: otherProject},
			expected:   AccessNone,
		},
		{
			name:       "membership of another user",
			userID:     stranger,
			project:    project,
			membership: &model.Member{UserID: member, ProjectID: project.ID},
			expected:   AccessNone,
		},
		{name: "nil project", userID: owner, expected: AccessNone},
		{name: "nil user", userID: uuid.Nil, project: &model.Project{ID: uuid.New()}, expected: AccessNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanAccess(tt.userID, tt.project, tt.membership))
		})
	}
}

func TestCanAccess_WriteImpliesRead(t *testing.T) {
	owner := uuid.New()
	project := &model.Project{ID: uuid.New(), OwnerID: owner}
	memberships := []*model.Member{
		nil,
		{UserID: owner, ProjectID: project.ID, Role: model.RoleOwner},
		{UserID: owner, ProjectID: uuid.New()},
	}
	for _, m := range memberships {
		access := CanAccess(owner, project, m)
		assert.Equal(t, AccessWrite, access)
		assert.GreaterOrEqual(t, access, AccessRead)
	}
}

func TestAccessString(t *testing.T) {
	assert.Equal(t, "NONE", AccessNone.String())
	assert.Equal(t, "READ", AccessRead.String())
	assert.Equal(t, "WRITE", AccessWrite.String())
}
