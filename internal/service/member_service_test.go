package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "flowspace/internal/errors"
	"flowspace/internal/model"
)

func TestMemberService_Add(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@x.com")
	bob := f.user(t, "bob@x.com")
	carol := f.user(t, "carol@x.com")
	dave := f.user(t, "dave@x.com")
	launch := f.project(t, alice, "Launch")

	member, err := f.members.Add(ctx, alice.ID, launch.ID, AddMemberInput{Email: "BOB@x.com"})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, member.UserID)
	assert.Equal(t, model.RoleMember, member.Role)
	require.NotNil(t, member.User)
	assert.Equal(t, "bob@x.com", member.User.Email)

	tests := []struct {
		name          string
		actor         uuid.UUID
		input         AddMemberInput
		expectedError error
	}{
		{name: "duplicate", actor: alice.ID, input: AddMemberInput{UserID: &bob.ID}, expectedError: apperrors.ErrAlreadyMember},
		{name: "owner role reserved", actor: alice.ID, input: AddMemberInput{UserID: &carol.ID, Role: model.RoleOwner}, expectedError: apperrors.ErrValidation},
		{name: "unknown user", actor: alice.ID, input: AddMemberInput{Email: "ghost@x.com"}, expectedError: apperrors.ErrUserNotFound},
		{name: "no target", actor: alice.ID, input: AddMemberInput{}, expectedError: apperrors.ErrValidation},
		{name: "member cannot add", actor: bob.ID, input: AddMemberInput{UserID: &carol.ID}, expectedError: apperrors.ErrProjectOwnerOnly},
		{name: "stranger cannot see", actor: dave.ID, input: AddMemberInput{UserID: &carol.ID}, expectedError: apperrors.ErrProjectNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.members.Add(ctx, tt.actor, launch.ID, tt.input)
			assert.True(t, errors.Is(err, tt.expectedError), "got %v", err)
		})
	}

	viewer, err := f.members.Add(ctx, alice.ID, launch.ID, AddMemberInput{UserID: &carol.ID, Role: model.RoleViewer})
	require.NoError(t, err)
	assert.Equal(t, model.RoleViewer, viewer.Role)

	members, err := f.members.List(ctx, carol.ID, launch.ID)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, alice.ID, members[0].UserID)
}

func TestMemberService_UpdateRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@x.com")
	bob := f.user(t, "bob@x.com")
	launch := f.project(t, alice, "Launch")
	bobMember := f.addMember(t, alice, launch, bob)

	updated, err := f.members.UpdateRole(ctx, alice.ID, launch.ID, bobMember.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)

	// ADMIN is advisory: bob still cannot act as owner.
	_, err = f.projects.Update(ctx, bob.ID, launch.ID, UpdateProjectInput{Name: ptr("x")})
	assert.Equal(t, apperrors.ErrProjectOwnerOnly, err)

	_, err = f.members.UpdateRole(ctx, bob.ID, launch.ID, bobMember.ID, model.RoleViewer)
	assert.Equal(t, apperrors.ErrProjectOwnerOnly, err)

	owner := launch.Members[0]
	_, err = f.members.UpdateRole(ctx, alice.ID, launch.ID, owner.ID, model.RoleViewer)
	assert.Equal(t, apperrors.ErrOwnerMembership, err)

	_, err = f.members.UpdateRole(ctx, alice.ID, launch.ID, bobMember.ID, "SUPERUSER")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = f.members.UpdateRole(ctx, alice.ID, launch.ID, uuid.New(), model.RoleViewer)
	assert.Equal(t, apperrors.ErrMemberNotFound, err)
}

func TestMemberService_Remove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@x.com")
	bob := f.user(t, "bob@x.com")
	carol := f.user(t, "carol@x.com")
	launch := f.project(t, alice, "Launch")
	other := f.project(t, bob, "Other")
	bobMember := f.addMember(t, alice, launch, bob)
	carolMember := f.addMember(t, alice, launch, carol)
	owner := launch.Members[0]

	assert.Equal(t, apperrors.ErrProjectOwnerOnly, f.members.Remove(ctx, bob.ID, launch.ID, carolMember.ID))
	assert.Equal(t, apperrors.ErrOwnerMembership, f.members.Remove(ctx, alice.ID, launch.ID, owner.ID))
	assert.Equal(t, apperrors.ErrMemberNotFound, f.members.Remove(ctx, bob.ID, other.ID, carolMember.ID))

	// A member may leave.
	require.NoError(t, f.members.Remove(ctx, bob.ID, launch.ID, bobMember.ID))
	_, err := f.projects.Get(ctx, bob.ID, launch.ID)
	assert.Equal(t, apperrors.ErrProjectNotFound, err)

	// The owner may remove anyone else.
	require.NoError(t, f.members.Remove(ctx, alice.ID, launch.ID, carolMember.ID))
	assert.Equal(t, apperrors.ErrMemberNotFound, f.members.Remove(ctx, alice.ID, launch.ID, carolMember.ID))
}

func TestMemberService_Teams(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@x.com")
	bob := f.user(t, "bob@x.com")
	launch := f.project(t, alice, "Launch")
	own := f.project(t, bob, "Bob's")
	f.addMember(t, alice, launch, bob)

	teams, err := f.members.Teams(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, teams, 2)

	byProject := map[uuid.UUID]Team{}
	for _, team := range teams {
		byProject[team.Project.ID] = team
	}
	assert.Equal(t, model.RoleOwner, byProject[own.ID].Role)
	assert.Equal(t, model.RoleMember, byProject[launch.ID].Role)

	launchTeam := byProject[launch.ID]
	require.NotNil(t, launchTeam.Project.Owner)
	assert.Equal(t, alice.ID, launchTeam.Project.Owner.ID)
	require.NotNil(t, launchTeam.Project.MemberCount)
	assert.Equal(t, int64(2), *launchTeam.Project.MemberCount)
	assert.False(t, launchTeam.JoinedAt.IsZero())
}
