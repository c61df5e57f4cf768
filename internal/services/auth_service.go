package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/auth"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/cache"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/config"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/email"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/logger"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/repositories"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/dto"
	"github.com/Zoemateus324/sosmecanicos-sub000/pkg/apperrors"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ResolveSession(ctx context.Context, userID string) (*dto.SessionDTO, error)
	GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
}

type AuthServiceImpl struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.RefreshTokenRepository
	subRepo   repositories.SubscriptionRepository
	sessions  *cache.Cache
	mailer    email.Provider
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.RefreshTokenRepository,
	subRepo repositories.SubscriptionRepository,
	sessions *cache.Cache,
	mailer email.Provider,
) AuthService {
	return &AuthServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		subRepo:   subRepo,
		sessions:  sessions,
		mailer:    mailer,
	}
}

func sessionKey(userID string) string {
	return "session:" + userID
}

func (s *AuthServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	switch req.Role {
	case models.UserRoleClient, models.UserRoleMechanic, models.UserRoleTow, models.UserRoleInsurer:
	default:
		// admin accounts are seeded, never self-registered
		return nil, apperrors.ErrInvalidUserRole
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, apperrors.ErrEmailAlreadyExists
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       models.UserStatusActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	profile := &models.Profile{
		UserID:   user.ID,
		Name:     req.Name,
		Phone:    req.Phone,
		Document: req.Document,
		City:     req.City,
	}
	if err := s.userRepo.CreateProfile(profile); err != nil {
		return nil, apperrors.InternalError(err)
	}
	user.Profile = profile

	if s.mailer != nil {
		// Best effort; registration must not fail on SMTP trouble.
		if err := s.mailer.SendWelcome(user.Email, profile.Name); err != nil {
			logger.CtxWithError(ctx, "welcome email failed", err, "user_id", user.ID)
		}
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Status == models.UserStatusSuspended || user.Status == models.UserStatusBanned {
		return nil, apperrors.NewForbiddenError("account is suspended")
	}

	logger.CtxInfo(ctx, "user logged in", "user_id", user.ID, "role", user.Role)
	return s.issueTokens(ctx, user)
}

func (s *AuthServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	stored, err := s.tokenRepo.FindByToken(refreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.tokenRepo.Delete(refreshToken)
		return nil, apperrors.NewUnauthorizedError("refresh token expired")
	}

	user, err := s.userRepo.FindByID(stored.UserID)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid refresh token")
	}

	// Rotate: the presented token is single use.
	if err := s.tokenRepo.Delete(refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.issueTokens(ctx, user)
}

func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	stored, err := s.tokenRepo.FindByToken(refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrTokenNotFound) {
			return nil // already logged out
		}
		return apperrors.InternalError(err)
	}
	_ = s.sessions.Invalidate(ctx, sessionKey(stored.UserID))
	return s.tokenRepo.Delete(refreshToken)
}

// ResolveSession turns an authenticated user id into the dashboard
// session payload. Served from cache while fresh; a stale or missing
// entry is rebuilt from the database and re-stored.
func (s *AuthServiceImpl) ResolveSession(ctx context.Context, userID string) (*dto.SessionDTO, error) {
	var session dto.SessionDTO
	if s.sessions.GetFresh(ctx, sessionKey(userID), &session) {
		return &session, nil
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewUnauthorizedError("session user no longer exists")
		}
		return nil, apperrors.InternalError(err)
	}

	session = dto.SessionDTO{
		UserID:        user.ID,
		Email:         user.Email,
		Role:          user.Role,
		DashboardPath: user.Role.DashboardPath(),
	}
	if user.Profile != nil {
		session.Name = user.Profile.Name
		session.City = user.Profile.City
	}
	if _, err := s.subRepo.FindActiveByUser(userID); err == nil {
		session.Subscribed = true
	}

	if err := s.sessions.Put(ctx, sessionKey(userID), &session); err != nil {
		logger.CtxWithError(ctx, "session cache write failed", err, "user_id", userID)
	}
	return &session, nil
}

func (s *AuthServiceImpl) GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	profile, err := s.userRepo.FindProfileByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.NewProfileResponse(profile), nil
}

func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	profile, err := s.userRepo.FindProfileByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.Document != nil {
		profile.Document = *req.Document
	}
	if req.City != nil {
		profile.City = *req.City
	}

	if err := s.userRepo.UpdateProfile(profile); err != nil {
		return nil, apperrors.InternalError(err)
	}
	// Cached session carries Name/City.
	_ = s.sessions.Invalidate(ctx, sessionKey(userID))

	return dto.NewProfileResponse(profile), nil
}

func (s *AuthServiceImpl) issueTokens(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refresh := &models.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.tokenRepo.Create(refresh); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		User:         dto.NewUserDTO(user),
	}, nil
}

// SessionFreshness is the cache window used for resolved sessions.
func SessionFreshness() time.Duration {
	return time.Duration(config.GetConfig().Cache.FreshnessMinutes) * time.Minute
}
