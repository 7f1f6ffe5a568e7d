package service

import (
	"context"
	"strings"

	"github.com/fidelidade-next/internal/cache"
	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/models"
	"github.com/fidelidade-next/internal/repository"
)

// AdminUserService 后台账号管理
type AdminUserService struct {
	profileRepo repository.ProfileRepository
}

// NewAdminUserService 创建后台账号服务
func NewAdminUserService(profileRepo repository.ProfileRepository) *AdminUserService {
	return &AdminUserService{profileRepo: profileRepo}
}

// ListUsers 账号列表，role 为 all 或空时不过滤
func (s *AdminUserService) ListUsers(filter repository.ProfileListFilter) ([]models.Profile, int64, error) {
	filter.Role = strings.ToLower(strings.TrimSpace(filter.Role))
	if filter.Role == "all" {
		filter.Role = ""
	}
	if filter.Role != "" && !isKnownRole(filter.Role) {
		return nil, 0, ErrRoleInvalid
	}
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	return s.profileRepo.List(filter)
}

// SetStatus 启用或禁用账号，禁用后已签发令牌立即失效
func (s *AdminUserService) SetStatus(operatorID, profileID, status string) (*models.Profile, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return nil, ErrUserStatusInvalid
	}
	if profileID == operatorID && status == constants.UserStatusDisabled {
		return nil, ErrForbidden
	}
	profile, err := s.profileRepo.GetByID(profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrNotFound
	}
	if err := s.profileRepo.UpdateStatus(profile.ID, status); err != nil {
		return nil, err
	}
	updated, err := s.profileRepo.GetByID(profile.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	_ = cache.SetProfileAuthState(context.Background(), cache.BuildProfileAuthState(updated))
	logger.Infow("admin_user_status_changed", "operator_id", operatorID, "profile_id", profile.ID, "status", status)
	return updated, nil
}
