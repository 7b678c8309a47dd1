package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"clinicdesk/internal/auth"
	"clinicdesk/internal/cache"
	"clinicdesk/internal/errors"
	"clinicdesk/internal/model"
	"clinicdesk/internal/repository"
)

const (
	bcryptCost      = 10
	profileCacheTTL = 5 * time.Minute
	birthDateLayout = "2006-01-02"
)

// Registration carries a new account request. Role defaults to patient.
type Registration struct {
	Username  string
	Email     string
	Password  string
	FullName  string
	Phone     string
	CPF       string
	Address   string
	BirthDate string
	Role      string
}

// ProfileUpdate carries the profile fields a user may change.
type ProfileUpdate struct {
	FullName  *string
	Phone     *string
	Address   *string
	BirthDate *string
}

// AuthService handles registration, credentials and profile management.
type AuthService interface {
	Register(ctx context.Context, registration Registration) (*model.User, error)
	Login(ctx context.Context, username, password string) (accessToken, refreshToken string, user *model.User, err error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
	Profile(ctx context.Context, userID uint) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User, update ProfileUpdate) (*model.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	cache      *cache.Client
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, cache *cache.Client) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		cache:      cache,
	}
}

// Register creates a new account with a hashed password.
func (s *authService) Register(ctx context.Context, registration Registration) (*model.User, error) {
	if _, err := s.userRepo.FindByUsername(ctx, registration.Username); err == nil {
		return nil, errors.Validation("username already taken")
	} else if err != gorm.ErrRecordNotFound {
		return nil, errors.Internal("failed to check username")
	}
	if _, err := s.userRepo.FindByEmail(ctx, registration.Email); err == nil {
		return nil, errors.Validation("email already in use")
	} else if err != gorm.ErrRecordNotFound {
		return nil, errors.Internal("failed to check email")
	}

	role := registration.Role
	if role == "" {
		role = model.RolePatient
	}

	user := &model.User{
		Username: registration.Username,
		Email:    registration.Email,
		Role:     role,
		FullName: registration.FullName,
		Phone:    registration.Phone,
		CPF:      registration.CPF,
		Address:  registration.Address,
	}

	if registration.BirthDate != "" {
		birthDate, err := time.Parse(birthDateLayout, registration.BirthDate)
		if err != nil {
			return nil, errors.Validation("invalid date format, use YYYY-MM-DD")
		}
		user.BirthDate = &birthDate
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcryptCost)
	if err != nil {
		return nil, errors.Internal("failed to hash password")
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, errors.Internal("failed to create user")
	}
	return user, nil
}

// Login verifies credentials and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, username, password string) (accessToken, refreshToken string, user *model.User, err error) {
	user, err = s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", "", nil, errors.Unauthenticated("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, errors.Unauthenticated("invalid credentials")
	}

	accessToken, err = s.jwtService.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return "", "", nil, errors.Internal("failed to generate access token")
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return "", "", nil, errors.Internal("failed to generate refresh token")
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Username, auth.RefreshTokenExpiry); err != nil {
		return "", "", nil, errors.Internal("failed to store refresh token")
	}

	return accessToken, refreshToken, user, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return "", errors.Unauthenticated("invalid or expired refresh token")
	}

	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return "", errors.Unauthenticated("invalid or expired refresh token")
	}

	storedUserID, storedUsername, err := s.tokenStore.GetRefreshToken(ctx, tokenID)
	if err != nil {
		return "", errors.Unauthenticated("invalid or expired refresh token")
	}
	if storedUserID != claims.UserID || storedUsername != claims.Username {
		return "", errors.Unauthenticated("invalid or expired refresh token")
	}

	accessToken, err := s.jwtService.GenerateAccessToken(claims.UserID, claims.Username)
	if err != nil {
		return "", errors.Internal("failed to generate access token")
	}
	return accessToken, nil
}

// Logout invalidates a refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return errors.Unauthenticated("invalid or expired refresh token")
	}
	if err := s.tokenStore.DeleteRefreshToken(ctx, tokenID); err != nil {
		return errors.Internal("failed to invalidate refresh token")
	}
	return nil
}

// Profile returns the user's profile, served from cache when fresh.
func (s *authService) Profile(ctx context.Context, userID uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.profileCacheKey(userID)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("user not found")
		}
		return nil, errors.Internal("failed to load profile")
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.profileCacheKey(userID), payload, profileCacheTTL)
	}
	return user, nil
}

// UpdateProfile applies the allowed profile mutations and invalidates the
// cached copy.
func (s *authService) UpdateProfile(ctx context.Context, user *model.User, update ProfileUpdate) (*model.User, error) {
	if update.FullName != nil {
		user.FullName = *update.FullName
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.Address != nil {
		user.Address = *update.Address
	}
	if update.BirthDate != nil {
		if *update.BirthDate == "" {
			user.BirthDate = nil
		} else {
			birthDate, err := time.Parse(birthDateLayout, *update.BirthDate)
			if err != nil {
				return nil, errors.Validation("invalid date format, use YYYY-MM-DD")
			}
			user.BirthDate = &birthDate
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Internal("failed to update profile")
	}
	_ = s.cache.Delete(ctx, s.profileCacheKey(user.ID))
	return user, nil
}

func (s *authService) profileCacheKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}
