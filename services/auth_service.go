package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vnkhanh/questionnaire-server/dto"
	"github.com/vnkhanh/questionnaire-server/metrics"
	"github.com/vnkhanh/questionnaire-server/models"
	"github.com/vnkhanh/questionnaire-server/repository"
	"github.com/vnkhanh/questionnaire-server/utils"
)

type AuthService struct {
	users      repository.UserRepository
	issuer     *utils.TokenIssuer
	bcryptCost int
}

func NewAuthService(users repository.UserRepository, issuer *utils.TokenIssuer, bcryptCost int) *AuthService {
	return &AuthService{users: users, issuer: issuer, bcryptCost: bcryptCost}
}

// Register tạo tài khoản mới và trả về token đăng nhập luôn.
func (s *AuthService) Register(ctx context.Context, username, password string) (*dto.AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, NewInvalidError(utils.MsgCredentialsRequired)
	}
	if utf8.RuneCountInString(username) > models.MaxUsernameLen {
		return nil, NewInvalidError(utils.MsgUsernameTooLong)
	}
	if len(password) > utils.MaxPasswordBytes {
		return nil, NewInvalidError(utils.MsgPasswordTooLong)
	}

	_, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, NewConflictError(utils.MsgUsernameTaken)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("lookup user: %w", err))
	}

	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, NewInvalidError(utils.MsgPasswordTooLong)
		}
		return nil, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("hash password: %w", err))
	}

	user := &models.User{Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		// hai request cùng username chạy song song: unique index quyết định
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewConflictError(utils.MsgUsernameTaken)
		}
		return nil, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("create user: %w", err))
	}

	metrics.UsersRegistered.Inc()
	log.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return s.issue(user)
}

// Login dùng cùng một thông điệp cho "không có user" và "sai mật khẩu".
func (s *AuthService) Login(ctx context.Context, username, password string) (*dto.AuthResult, error) {
	username = strings.TrimSpace(username)

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.LoginFailures.Inc()
			return nil, NewUnauthorizedError(utils.MsgInvalidCredentials)
		}
		return nil, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("lookup user: %w", err))
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		metrics.LoginFailures.Inc()
		log.Debug().Uint("user_id", user.ID).Msg("login rejected: wrong password")
		return nil, NewUnauthorizedError(utils.MsgInvalidCredentials)
	}

	return s.issue(user)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*dto.UserPublic, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError(utils.MsgUserNotFound)
		}
		return nil, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("find user: %w", err))
	}
	return &dto.UserPublic{ID: user.ID, Username: user.Username}, nil
}

func (s *AuthService) issue(user *models.User) (*dto.AuthResult, error) {
	token, err := s.issuer.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, NewPersistenceError(utils.MsgInternalError, fmt.Errorf("sign token: %w", err))
	}
	return &dto.AuthResult{
		Token: token,
		User:  dto.UserPublic{ID: user.ID, Username: user.Username},
	}, nil
}
