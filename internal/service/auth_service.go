package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/fidelidade-next/internal/cache"
	"github.com/fidelidade-next/internal/config"
	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/models"
	"github.com/fidelidade-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const profileNameMaxLen = 120

// AuthService 账号认证服务（顾客、商户、管理员）
type AuthService struct {
	cfg          *config.Config
	profileRepo  repository.ProfileRepository
	merchantRepo repository.MerchantRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, profileRepo repository.ProfileRepository, merchantRepo repository.MerchantRepository) *AuthService {
	return &AuthService{
		cfg:          cfg,
		profileRepo:  profileRepo,
		merchantRepo: merchantRepo,
	}
}

// CustomerRegistration 顾客注册表单
type CustomerRegistration struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// MerchantRegistration 商户注册表单
type MerchantRegistration struct {
	CustomerRegistration
	StoreName string
	City      string
	CNPJ      string
	Street    string
	State     string
	ZipCode   string
	WhatsApp  string
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password, email string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password, email)
}

// JWTClaims JWT 声明，角色随令牌下发
type JWTClaims struct {
	ProfileID    string `json:"profile_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(profile *models.Profile) (string, time.Time, error) {
	hours := s.cfg.JWT.ExpireHours
	if hours <= 0 {
		hours = 24
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)

	claims := JWTClaims{
		ProfileID:    profile.ID,
		Email:        profile.Email,
		Role:         profile.Role,
		TokenVersion: profile.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &JWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}

// RegisterCustomer 顾客注册并签发令牌
func (s *AuthService) RegisterCustomer(input CustomerRegistration) (*models.Profile, string, time.Time, error) {
	profile, err := s.buildProfile(input, constants.RoleCustomer)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := s.profileRepo.Create(profile); err != nil {
		return nil, "", time.Time{}, err
	}
	logger.Infow("customer_registered", "profile_id", profile.ID)
	return s.issueSession(profile)
}

// RegisterMerchant 商户注册，账号与门店在同一事务中创建
func (s *AuthService) RegisterMerchant(input MerchantRegistration) (*models.Profile, *models.Merchant, string, time.Time, error) {
	storeName := strings.TrimSpace(input.StoreName)
	if storeName == "" {
		return nil, nil, "", time.Time{}, ErrStoreNameRequired
	}
	profile, err := s.buildProfile(input.CustomerRegistration, constants.RoleMerchant)
	if err != nil {
		return nil, nil, "", time.Time{}, err
	}
	merchant := &models.Merchant{
		StoreName: storeName,
		City:      strings.TrimSpace(input.City),
		CNPJ:      strings.TrimSpace(input.CNPJ),
		Street:    strings.TrimSpace(input.Street),
		State:     strings.ToUpper(strings.TrimSpace(input.State)),
		ZipCode:   strings.TrimSpace(input.ZipCode),
		WhatsApp:  strings.TrimSpace(input.WhatsApp),
		Active:    true,
	}
	if err := validateMerchantFields(merchant); err != nil {
		return nil, nil, "", time.Time{}, err
	}

	err = s.profileRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.profileRepo.WithTx(tx).Create(profile); err != nil {
			return err
		}
		merchant.ID = profile.ID
		return s.merchantRepo.WithTx(tx).Create(merchant)
	})
	if err != nil {
		return nil, nil, "", time.Time{}, err
	}
	logger.Infow("merchant_registered", "profile_id", profile.ID, "store_name", merchant.StoreName)

	profile, token, expiresAt, err := s.issueSession(profile)
	if err != nil {
		return nil, nil, "", time.Time{}, err
	}
	return profile, merchant, token, expiresAt, nil
}

// Login 登录，portal 非空时要求账号角色一致，不一致时不签发令牌
func (s *AuthService) Login(email, password, portal string) (*models.Profile, string, time.Time, error) {
	portal = strings.ToLower(strings.TrimSpace(portal))
	if portal != "" && !isKnownRole(portal) {
		return nil, "", time.Time{}, ErrRoleInvalid
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	profile, err := s.profileRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if profile == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(profile.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if strings.ToLower(profile.Status) != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrUserDisabled
	}
	if portal != "" && profile.Role != portal {
		logger.Warnw("login_role_mismatch", "profile_id", profile.ID, "role", profile.Role, "portal", portal)
		return nil, "", time.Time{}, ErrRoleMismatch
	}
	if profile.Role == constants.RoleMerchant {
		merchant, err := s.merchantRepo.GetByID(profile.ID)
		if err != nil {
			return nil, "", time.Time{}, err
		}
		if merchant == nil {
			return nil, "", time.Time{}, ErrMerchantProfileMissing
		}
	}
	return s.issueSession(profile)
}

// Logout 注销，使该账号已签发的令牌全部失效
func (s *AuthService) Logout(profileID string) error {
	if strings.TrimSpace(profileID) == "" {
		return ErrNotFound
	}
	if err := s.profileRepo.RevokeTokens(profileID, time.Now()); err != nil {
		return err
	}
	s.refreshAuthState(profileID)
	logger.Infow("profile_logged_out", "profile_id", profileID)
	return nil
}

// ChangePassword 修改密码，成功后旧令牌失效
func (s *AuthService) ChangePassword(profileID, oldPassword, newPassword, confirmPassword string) error {
	profile, err := s.profileRepo.GetByID(profileID)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrNotFound
	}
	if err := s.VerifyPassword(profile.PasswordHash, oldPassword); err != nil {
		return ErrInvalidPassword
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if err := s.ValidatePassword(newPassword, profile.Email); err != nil {
		return err
	}
	hashedPassword, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	profile.PasswordHash = hashedPassword
	profile.TokenVersion++
	profile.TokenInvalidBefore = &now
	if err := s.profileRepo.Update(profile); err != nil {
		return err
	}
	_ = cache.SetProfileAuthState(context.Background(), cache.BuildProfileAuthState(profile))
	logger.Infow("profile_password_changed", "profile_id", profile.ID)
	return nil
}

// GetProfile 获取账号
func (s *AuthService) GetProfile(profileID string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrNotFound
	}
	return profile, nil
}

// UpdateName 更新账号姓名
func (s *AuthService) UpdateName(profileID, name string) (*models.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > profileNameMaxLen {
		return nil, ErrProfileNameRequired
	}
	profile, err := s.GetProfile(profileID)
	if err != nil {
		return nil, err
	}
	profile.Name = name
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ResolveAuthState 读取令牌校验所需的账号状态，优先缓存
func (s *AuthService) ResolveAuthState(ctx context.Context, profileID string) (*cache.ProfileAuthState, error) {
	if state, ok, err := cache.GetProfileAuthState(ctx, profileID); err == nil && ok {
		return state, nil
	}
	profile, err := s.profileRepo.GetByID(profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}
	state := cache.BuildProfileAuthState(profile)
	_ = cache.SetProfileAuthState(ctx, state)
	return state, nil
}

func (s *AuthService) buildProfile(input CustomerRegistration, role string) (*models.Profile, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len([]rune(name)) > profileNameMaxLen {
		return nil, ErrProfileNameRequired
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if input.Password != input.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if err := s.ValidatePassword(input.Password, email); err != nil {
		return nil, err
	}
	existing, err := s.profileRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}
	hashedPassword, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	return &models.Profile{
		Email:        email,
		Name:         name,
		PasswordHash: hashedPassword,
		Role:         role,
		Status:       constants.UserStatusActive,
	}, nil
}

func (s *AuthService) issueSession(profile *models.Profile) (*models.Profile, string, time.Time, error) {
	token, expiresAt, err := s.GenerateJWT(profile)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	now := time.Now()
	profile.LastLoginAt = &now
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetProfileAuthState(context.Background(), cache.BuildProfileAuthState(profile))
	return profile, token, expiresAt, nil
}

func (s *AuthService) refreshAuthState(profileID string) {
	profile, err := s.profileRepo.GetByID(profileID)
	if err != nil || profile == nil {
		_ = cache.DelProfileAuthState(context.Background(), profileID)
		return
	}
	_ = cache.SetProfileAuthState(context.Background(), cache.BuildProfileAuthState(profile))
}

func isKnownRole(role string) bool {
	for _, known := range constants.Roles {
		if role == known {
			return true
		}
	}
	return false
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// NormalizeEmail 统一邮箱格式
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}
