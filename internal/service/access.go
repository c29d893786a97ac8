package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"flowspace/internal/errors"
	"flowspace/internal/model"
	"flowspace/internal/repository"
)

// Access is the capability a user holds on a project.
type Access int

const (
	// AccessNone means the project must be treated as absent.
	AccessNone Access = iota
	// AccessRead allows reading the project and working on its tasks and reports.
	AccessRead
	// AccessWrite allows changing or deleting the project and managing its members.
	AccessWrite
)

func (a Access) String() string {
	switch a {
	case AccessWrite:
		return "WRITE"
	case AccessRead:
		return "READ"
	default:
		return "NONE"
	}
}

// CanAccess evaluates the capability of userID on project. membership is the
// caller's Member row for the project, or nil when none exists.
// The role stored on the membership does not widen or narrow the result.
func CanAccess(userID uuid.UUID, project *model.Project, membership *model.Member) Access {
	if project == nil || userID == uuid.Nil {
		return AccessNone
	}
	if project.OwnerID == userID {
		return AccessWrite
	}
	if membership != nil && membership.UserID == userID && membership.ProjectID == project.ID {
		return AccessRead
	}
	return AccessNone
}

// authorizeProject loads a project and the caller's capability on it.
// A missing project and AccessNone both yield ErrProjectNotFound.
func authorizeProject(ctx context.Context, store repository.Store, userID, projectID uuid.UUID) (*model.Project, Access, error) {
	project, err := store.Projects().FindByID(ctx, projectID)
	if err != nil {
		if isNotFound(err) {
			return nil, AccessNone, errors.ErrProjectNotFound
		}
		return nil, AccessNone, fmt.Errorf("find project: %w", err)
	}

	var membership *model.Member
	if project.OwnerID != userID {
		membership, err = store.Members().Find(ctx, projectID, userID)
		if err != nil && !isNotFound(err) {
			return nil, AccessNone, fmt.Errorf("find membership: %w", err)
		}
	}

	access := CanAccess(userID, project, membership)
	if access == AccessNone {
		return nil, AccessNone, errors.ErrProjectNotFound
	}
	return project, access, nil
}

// requireWrite loads a project and fails with ErrProjectOwnerOnly unless the caller owns it.
func requireWrite(ctx context.Context, store repository.Store, userID, projectID uuid.UUID) (*model.Project, error) {
	project, access, err := authorizeProject(ctx, store, userID, projectID)
	if err != nil {
		return nil, err
	}
	if access < AccessWrite {
		return nil, errors.ErrProjectOwnerOnly
	}
	return project, nil
}

func isNotFound(err error) bool {
	return stderrors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return stderrors.Is(err, gorm.ErrDuplicatedKey)
}
