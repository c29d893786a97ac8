package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"flowspace/internal/errors"
	"flowspace/internal/metrics"
	"flowspace/internal/model"
	"flowspace/internal/repository"
)

// AddMemberInput identifies the user to add by id or by email.
type AddMemberInput struct {
	UserID *uuid.UUID
	Email  string
	Role   model.MemberRole
}

// Team is one of the caller's memberships with its project.
type Team struct {
	ID       uuid.UUID        `json:"id"`
	Role     model.MemberRole `json:"role"`
	JoinedAt time.Time        `json:"joinedAt"`
	Project  *model.Project   `json:"project"`
}

// MemberService handles project membership operations.
type MemberService interface {
	List(ctx context.Context, userID, projectID uuid.UUID) ([]model.Member, error)
	Add(ctx context.Context, userID, projectID uuid.UUID, in AddMemberInput) (*model.Member, error)
	UpdateRole(ctx context.Context, userID, projectID, memberID uuid.UUID, role model.MemberRole) (*model.Member, error)
	Remove(ctx context.Context, userID, projectID, memberID uuid.UUID) error
	Teams(ctx context.Context, userID uuid.UUID) ([]Team, error)
}

type memberService struct {
	store   repository.Store
	metrics metrics.Recorder
}

// NewMemberService creates a new member service.
func NewMemberService(store repository.Store, recorder metrics.Recorder) MemberService {
	return &memberService{store: store, metrics: recorder}
}

// List lists the members of a project the caller can read.
func (s *memberService) List(ctx context.Context, userID, projectID uuid.UUID) ([]model.Member, error) {
	if _, _, err := authorizeProject(ctx, s.store, userID, projectID); err != nil {
		return nil, err
	}
	members, err := s.store.Members().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// Add grants a user membership. Only the owner may add members.
func (s *memberService) Add(ctx context.Context, userID, projectID uuid.UUID, in AddMemberInput) (*model.Member, error) {
	role := in.Role
	if role == "" {
		role = model.RoleMember
	}
	if !role.Assignable() {
		return nil, errors.Validation("role must be one of ADMIN, MEMBER, VIEWER")
	}
	if in.UserID == nil && strings.TrimSpace(in.Email) == "" {
		return nil, errors.Validation("userId or email is required")
	}

	if _, err := requireWrite(ctx, s.store, userID, projectID); err != nil {
		return nil, err
	}

	target, err := s.findTarget(ctx, in)
	if err != nil {
		return nil, err
	}

	member := &model.Member{
		UserID:    target.ID,
		ProjectID: projectID,
		Role:      role,
	}
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Members().Find(ctx, projectID, target.ID); err == nil {
			return errors.ErrAlreadyMember
		} else if !isNotFound(err) {
			return fmt.Errorf("find membership: %w", err)
		}
		if err := tx.Members().Create(ctx, member); err != nil {
			if isDuplicate(err) {
				return errors.ErrAlreadyMember
			}
			return fmt.Errorf("create membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCreated("member")
	member.User = target
	return member, nil
}

// UpdateRole changes a member's role. Only the owner may change roles and the OWNER membership is fixed.
func (s *memberService) UpdateRole(ctx context.Context, userID, projectID, memberID uuid.UUID, role model.MemberRole) (*model.Member, error) {
	if !role.Assignable() {
		return nil, errors.Validation("role must be one of ADMIN, MEMBER, VIEWER")
	}

	project, err := requireWrite(ctx, s.store, userID, projectID)
	if err != nil {
		return nil, err
	}

	member, err := s.findMember(ctx, projectID, memberID)
	if err != nil {
		return nil, err
	}
	if member.Role == model.RoleOwner || member.UserID == project.OwnerID {
		return nil, errors.ErrOwnerMembership
	}

	if err := s.store.Members().UpdateRole(ctx, memberID, role); err != nil {
		return nil, fmt.Errorf("update member role: %w", err)
	}
	member.Role = role
	return member, nil
}

// Remove deletes a membership. The owner may remove anyone but themself;
// any other member may only remove themself.
func (s *memberService) Remove(ctx context.Context, userID, projectID, memberID uuid.UUID) error {
	project, access, err := authorizeProject(ctx, s.store, userID, projectID)
	if err != nil {
		return err
	}

	member, err := s.findMember(ctx, projectID, memberID)
	if err != nil {
		return err
	}
	if member.Role == model.RoleOwner || member.UserID == project.OwnerID {
		return errors.ErrOwnerMembership
	}
	if access < AccessWrite && member.UserID != userID {
		return errors.ErrProjectOwnerOnly
	}

	if err := s.store.Members().Delete(ctx, memberID); err != nil {
		if isNotFound(err) {
			return errors.ErrMemberNotFound
		}
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

// Teams lists the caller's memberships with project details, newest first.
func (s *memberService) Teams(ctx context.Context, userID uuid.UUID) ([]Team, error) {
	memberships, err := s.store.Members().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	projects, err := s.store.Projects().ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	byID := make(map[uuid.UUID]*model.Project, len(projects))
	for i := range projects {
		byID[projects[i].ID] = &projects[i]
	}

	teams := make([]Team, 0, len(memberships))
	for _, m := range memberships {
		project := m.Project
		if counted, ok := byID[m.ProjectID]; ok {
			project = counted
		}
		if project == nil {
			continue
		}
		teams = append(teams, Team{
			ID:       m.ID,
			Role:     m.Role,
			JoinedAt: m.CreatedAt,
			Project:  project,
		})
	}
	return teams, nil
}

func (s *memberService) findTarget(ctx context.Context, in AddMemberInput) (*model.User, error) {
	var (
		user *model.User
		err  error
	)
	if in.UserID != nil {
		user, err = s.store.Users().FindByID(ctx, *in.UserID)
	} else {
		user, err = s.store.Users().FindByEmail(ctx, strings.TrimSpace(in.Email))
	}
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *memberService) findMember(ctx context.Context, projectID, memberID uuid.UUID) (*model.Member, error) {
	member, err := s.store.Members().FindByID(ctx, memberID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrMemberNotFound
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	if member.ProjectID != projectID {
		return nil, errors.ErrMemberNotFound
	}
	return member, nil
}
