package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tabletap/api/internal/database"
	"github.com/tabletap/api/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

// Errors returned by the user service.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("a valid email is required")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUserNotFound       = errors.New("user not found")
)

// UserStore defines the DB methods needed by the user service.
type UserStore interface {
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	ListUsers(ctx context.Context) ([]database.User, error)
}

// UserService owns accounts and credential checks.
type UserService struct {
	store UserStore
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

// CreateUserRequest is the input for registering a user.
type CreateUserRequest struct {
	Email    string
	Password string
	FullName string
	Role     string
}

// Create registers a user with a bcrypt-hashed password.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (database.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return database.User{}, ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return database.User{}, ErrWeakPassword
	}
	if !enum.IsValidRole(req.Role) {
		return database.User{}, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return database.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, database.CreateUserParams{
		Email:          email,
		HashedPassword: string(hash),
		FullName:       strings.TrimSpace(req.FullName),
		Role:           req.Role,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return database.User{}, ErrEmailTaken
		}
		return database.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate checks the email/password pair and returns the user. The
// same error covers unknown email and wrong password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (database.User, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.User{}, ErrInvalidCredentials
		}
		return database.User{}, fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return database.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (database.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.User{}, ErrUserNotFound
		}
		return database.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]database.User, error) {
	return s.store.ListUsers(ctx)
}
