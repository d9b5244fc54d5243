package access

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ivankudzin/botlist/internal/domain/enums"
	"github.com/ivankudzin/botlist/internal/domain/model"
	"github.com/ivankudzin/botlist/internal/repo/postgres"
	"github.com/ivankudzin/botlist/internal/rpc"
)

type UsersRepo interface {
	GetByID(context.Context, string) (model.User, error)
}

// Service is the permission guard in front of every staff action.
type Service struct {
	ownerIDs  map[int64]struct{}
	usersRepo UsersRepo
}

func NewService(ownerIDs []int64, usersRepo UsersRepo) *Service {
	owners := make(map[int64]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		if id != 0 {
			owners[id] = struct{}{}
		}
	}
	return &Service{
		ownerIDs:  owners,
		usersRepo: usersRepo,
	}
}

func (s *Service) ResolveRole(ctx context.Context, callerID string) (enums.Role, error) {
	tgID, err := strconv.ParseInt(callerID, 10, 64)
	if err != nil || tgID <= 0 {
		return enums.RoleNone, nil
	}
	if _, ok := s.ownerIDs[tgID]; ok {
		return enums.RoleOwner, nil
	}

	if s.usersRepo == nil {
		return enums.RoleNone, nil
	}

	user, err := s.usersRepo.GetByID(ctx, strconv.FormatInt(tgID, 10))
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return enums.RoleNone, nil
		}
		return enums.RoleNone, fmt.Errorf("resolve role of %s: %w", callerID, err)
	}

	switch {
	case user.Admin || user.HAdmin:
		return enums.RoleAdmin, nil
	case user.Staff:
		return enums.RoleStaff, nil
	default:
		return enums.RoleNone, nil
	}
}

// Authorize returns nil for staff-level callers and an error matching
// rpc.ErrUnauthorized for everyone else. Store failures are returned as is.
func (s *Service) Authorize(ctx context.Context, callerID string) error {
	role, err := s.ResolveRole(ctx, callerID)
	if err != nil {
		return err
	}
	if !role.IsStaff() {
		return fmt.Errorf("caller %s: %w", callerID, rpc.ErrUnauthorized)
	}
	return nil
}

func (s *Service) CanViewLogs(role enums.Role) bool {
	return role == enums.RoleOwner || role == enums.RoleAdmin
}
