package usecase

import (
	"context"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *request.UpdateProfileRequest) (*response.UserResponse, error)
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	UpdateRole(ctx context.Context, actorID, actorRole, userID string, req *request.UpdateRoleRequest) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, userID string) error
}

type userService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	now         func() time.Time
	log         *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, now func() time.Time, log *zap.Logger) UserService {
	return &userService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		now:         now,
		log:         log.With(zap.String("service", "user")),
	}
}

func (us *userService) find(ctx context.Context, userID string) (*entity.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		us.log.Warn("Invalid user ID", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("invalid user ID")
	}

	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get user")
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (us *userService) GetProfile(ctx context.Context, userID string) (*response.UserResponse, error) {
	user, err := us.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateProfile(ctx context.Context, userID string, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	user, err := us.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Phone != nil {
		phone := utils.NormalizePhone(*req.Phone)
		user.Phone = &phone
	}
	if req.WhatsAppOptIn != nil {
		user.WhatsAppOptIn = *req.WhatsAppOptIn
	}
	user.UpdatedAt = us.now()

	if err := us.userRepo.Update(ctx, user); err != nil {
		us.log.Error("Failed to update profile", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to update profile")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	users, err := us.userRepo.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		us.log.Error("Failed to get all users",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("failed to get users")
	}

	total, err := us.userRepo.CountAll(ctx)
	if err != nil {
		us.log.Error("Failed to count users", zap.Error(err))
		return nil, fmt.Errorf("failed to count users")
	}

	userResponses := make([]response.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = response.UserToResponse(user)
	}

	return response.NewPaginatedResponse(userResponses, req.CurrentPage(), req.Limit(), total), nil
}

// UpdateRole changes another user's role. Only a super admin may grant or
// revoke super_admin, and nobody may change their own role. Open sessions of
// the user are revoked so the new role applies from their next login.
func (us *userService) UpdateRole(ctx context.Context, actorID, actorRole, userID string, req *request.UpdateRoleRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}
	if actorID == userID {
		return nil, fmt.Errorf("%w: cannot change your own role", ErrForbidden)
	}

	user, err := us.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	role := entity.Role(req.Role)
	if (role == entity.RoleSuperAdmin || user.Role == entity.RoleSuperAdmin) && entity.Role(actorRole) != entity.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: only a super admin can change super admin roles", ErrForbidden)
	}

	if err := us.userRepo.UpdateRole(ctx, user.ID, role); err != nil {
		us.log.Error("Failed to update role", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to update role")
	}
	if role != user.Role {
		if err := us.sessionRepo.RevokeAllUserSessions(ctx, user.ID); err != nil {
			us.log.Error("Failed to revoke sessions after role change", zap.Error(err), zap.String("user_id", userID))
			return nil, fmt.Errorf("failed to revoke sessions")
		}
	}

	us.log.Info("User role changed",
		zap.String("user_id", userID),
		zap.String("from", string(user.Role)),
		zap.String("to", string(role)),
		zap.String("changed_by", actorID),
	)
	user.Role = role
	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) DeleteUser(ctx context.Context, userID string) error {
	user, err := us.find(ctx, userID)
	if err != nil {
		return err
	}

	if err := us.userRepo.Delete(ctx, user.ID); err != nil {
		us.log.Error("Failed to delete user", zap.Error(err), zap.String("id", userID))
		return fmt.Errorf("failed to delete user")
	}
	if err := us.sessionRepo.RevokeAllUserSessions(ctx, user.ID); err != nil {
		us.log.Error("Failed to revoke sessions of deleted user", zap.Error(err), zap.String("user_id", userID))
		return fmt.Errorf("failed to revoke sessions")
	}

	us.log.Info("User deleted", zap.String("user_id", userID), zap.String("email", user.Email))
	return nil
}
