package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/acadhub/apms-go-api/internal/dto"
	"github.com/acadhub/apms-go-api/internal/repository"
)

// ErrInvalidCredentials indicates the email, password or role did not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Portal roles carried inside signed tokens.
const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
	RoleStudent = "student"
)

// AuthClaims is the JWT payload issued on login.
type AuthClaims struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService authenticates portal users and issues tokens.
type AuthService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
}

type authService struct {
	users     repository.UserRepository
	students  repository.StudentRepository
	faculties repository.FacultyRepository
	validator *validator.Validate
	secret    []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the auth service.
func NewAuthService(
	users repository.UserRepository,
	students repository.StudentRepository,
	faculties repository.FacultyRepository,
	validator *validator.Validate,
	secret string,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		users:     users,
		students:  students,
		faculties: faculties,
		validator: validator,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	email := normalizeEmail(payload.Email)

	var (
		id   uint
		name string
		hash string
		err  error
	)

	switch payload.Role {
	case RoleAdmin:
		user, lookupErr := s.users.GetByEmail(ctx, email)
		id, name, hash, err = user.ID, user.Username, user.PasswordHash, lookupErr
	case RoleFaculty:
		faculty, lookupErr := s.faculties.GetByEmail(ctx, email)
		id, name, hash, err = faculty.ID, faculty.FullName(), faculty.PasswordHash, lookupErr
	case RoleStudent:
		student, lookupErr := s.students.GetByEmail(ctx, email)
		id, name, hash, err = student.ID, student.FullName(), student.PasswordHash, lookupErr
	default:
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(payload.Password)) != nil {
		s.logger.Warn().Str("email", email).Str("role", payload.Role).Msg("login rejected")
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	token, err := s.signToken(id, payload.Role, name, email)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.logger.Info().Uint("id", id).Str("role", payload.Role).Msg("login succeeded")

	return dto.LoginResponse{
		Token: token,
		ID:    id,
		Role:  payload.Role,
		Name:  name,
		Email: email,
	}, nil
}

func (s *authService) signToken(id uint, role, name, email string) (string, error) {
	issuedAt := s.now()
	claims := AuthClaims{
		Role:  role,
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(id), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(s.secret)
}
