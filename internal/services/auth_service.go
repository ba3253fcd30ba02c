package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/pbkdf2"
	"gorm.io/gorm"

	"github.com/highcommand/highcommand/internal/constants"
	apperrors "github.com/highcommand/highcommand/internal/errors"
	"github.com/highcommand/highcommand/internal/models"
	"github.com/highcommand/highcommand/internal/repository"
	"github.com/highcommand/highcommand/internal/utils"
)

// PBKDF2 parameters. Changing them invalidates stored credentials, so they
// are fixed for the life of a database.
const (
	hashIterations = 100_000
	hashKeyLength  = 32
)

// AuthService handles account creation and credential checks.
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username string
	Password string
}

// Register creates a new user with a freshly salted password hash.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	username := normalizeUsername(input.Username)
	if len(username) < constants.MinUsernameLength {
		return nil, apperrors.Validationf("username must be at least %d characters", constants.MinUsernameLength)
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, apperrors.Validationf("password must be at least %d characters", constants.MinPasswordLength)
	}

	salt, err := utils.GenerateSalt()
	if err != nil {
		return nil, apperrors.Storage("generate salt", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hashPassword(input.Password, salt),
		PasswordSalt: salt,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperrors.Conflict("username already taken")
		}
		return nil, apperrors.Storage("create user", err)
	}

	return user, nil
}

// Authenticate verifies credentials. A missing user and a wrong password
// both return (nil, nil); the caller cannot tell which.
func (s *AuthService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(normalizeUsername(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Storage("find user", err)
	}

	computed := hashPassword(password, user.PasswordSalt)
	if subtle.ConstantTimeCompare([]byte(computed), []byte(user.PasswordHash)) != 1 {
		return nil, nil
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Storage("find user", err)
	}

	return user, nil
}

// ListUsers returns all users ordered by username. Usernames are stored
// normalized, so column order is already case-insensitive.
func (s *AuthService) ListUsers() ([]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, apperrors.Storage("list users", err)
	}
	return users, nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// hashPassword derives a PBKDF2-SHA256 key from the password and the
// user's hex-encoded salt, returned as hex.
func hashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), hashIterations, hashKeyLength, sha256.New)
	return hex.EncodeToString(key)
}
