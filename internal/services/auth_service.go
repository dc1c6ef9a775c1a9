package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"mediamatrixhub/internal/auth"
	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/models"
	"mediamatrixhub/internal/repositories"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error)
	ParseToken(token string) (*auth.Claims, error)
	CreateUser(db *gorm.DB, req *dto.CreateUserRequest) (*models.User, error)
	// SeedFirstAdmin creates an admin when none exists yet.
	SeedFirstAdmin(ctx context.Context, db *gorm.DB, email, password string) (bool, error)
}

type AuthServiceImpl struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
	ttl      time.Duration
}

func NewAuthService(userRepo repositories.UserRepository, tokens *auth.TokenManager, ttl time.Duration) AuthService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthServiceImpl{userRepo: userRepo, tokens: tokens, ttl: ttl}
}

func (s *AuthServiceImpl) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(db, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.DatabaseError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, apperrors.ErrUserDisabled
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Role, s.ttl)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	logger.CtxInfo(logger.WithUserID(ctx, strconv.FormatUint(uint64(user.ID), 10)), "operator logged in", "role", user.Role)

	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(s.ttl),
		User:        user,
	}, nil
}

func (s *AuthServiceImpl) ParseToken(token string) (*auth.Claims, error) {
	claims, err := s.tokens.ParseKind(token, auth.KindAdmin)
	if err != nil {
		return nil, apperrors.ErrInvalidToken.WithError(err)
	}
	return claims, nil
}

func (s *AuthServiceImpl) CreateUser(db *gorm.DB, req *dto.CreateUserRequest) (*models.User, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	if !req.Role.Valid() {
		return nil, apperrors.NewBadRequestError("invalid role")
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         req.Role,
		Status:       models.UserStatusActive,
	}
	if err := s.userRepo.Create(db, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ErrAlreadyExists(err)
		}
		return nil, apperrors.DatabaseError(err)
	}
	return user, nil
}

func (s *AuthServiceImpl) SeedFirstAdmin(ctx context.Context, db *gorm.DB, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	n, err := s.userRepo.CountByRole(db, models.UserRoleAdmin)
	if err != nil {
		return false, apperrors.DatabaseError(err)
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.CreateUser(db, &dto.CreateUserRequest{Email: email, Password: password, Role: models.UserRoleAdmin}); err != nil {
		return false, err
	}
	logger.CtxInfo(ctx, "first admin created", "email", email)
	return true, nil
}
