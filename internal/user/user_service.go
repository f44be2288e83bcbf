package user

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agromarket/internal/common"
	"agromarket/internal/dbmysql"
)

// AccountCleaner is one step of the account-deletion cascade. Each feature
// that stores per-user rows contributes one.
type AccountCleaner interface {
	RemoveUserData(ctx context.Context, userID string) error
}

// AccountCleanerFunc adapts a function to AccountCleaner.
type AccountCleanerFunc func(ctx context.Context, userID string) error

func (f AccountCleanerFunc) RemoveUserData(ctx context.Context, userID string) error {
	return f(ctx, userID)
}

type AuthResult struct {
	Token string
	User  *dbmysql.User
}

type UserService interface {
	Register(ctx context.Context, email, password, name string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*dbmysql.User, error)
	DeleteAccount(ctx context.Context, userID string) error
}

type userService struct {
	repo     UserRepository
	devices  DeviceRepository
	cleaners []AccountCleaner
}

func NewUserService(repo UserRepository, devices DeviceRepository, cleaners ...AccountCleaner) UserService {
	return &userService{repo: repo, devices: devices, cleaners: cleaners}
}

func (s *userService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if err := common.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := common.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := common.ValidateName(name); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, common.Internal("email lookup failed", err)
	}
	if exists {
		return nil, common.NewError(common.CodeAlreadyExists, "email already registered")
	}

	hash, err := common.HashPassword(password)
	if err != nil {
		return nil, common.Internal("password hashing failed", err)
	}

	u := &dbmysql.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, common.Internal("user create failed", err)
	}

	token, err := common.GenerateToken(u.ID, u.Name)
	if err != nil {
		return nil, common.Internal("token generation failed", err)
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.Unauthenticated("invalid credentials")
		}
		return nil, common.Internal("user lookup failed", err)
	}

	if err := common.CheckPassword(password, u.PasswordHash); err != nil {
		return nil, common.Unauthenticated("invalid credentials")
	}

	token, err := common.GenerateToken(u.ID, u.Name)
	if err != nil {
		return nil, common.Internal("token generation failed", err)
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*dbmysql.User, error) {
	u, err := s.repo.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFound("user not found")
		}
		return nil, common.Internal("user lookup failed", err)
	}
	return u, nil
}

// DeleteAccount runs every registered cleaner, then removes devices and the
// user row. A failing cleaner aborts the deletion so no account ends up half
// removed.
func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	if _, err := s.repo.ByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NotFound("user not found")
		}
		return common.Internal("user lookup failed", err)
	}

	for _, cleaner := range s.cleaners {
		if err := cleaner.RemoveUserData(ctx, userID); err != nil {
			return common.Internal("account cleanup failed", err)
		}
	}

	if err := s.devices.DeleteByUser(ctx, userID); err != nil {
		return common.Internal("device cleanup failed", err)
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return common.Internal("user delete failed", err)
	}

	log.Printf("account deleted: %s", userID)
	return nil
}
