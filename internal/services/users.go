package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yishak-cs/cafe-pos/internal/auth"
	"github.com/yishak-cs/cafe-pos/internal/database"
	"github.com/yishak-cs/cafe-pos/internal/models"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
)

// bcrypt only accepts up to 72 bytes
const maxPasswordBytes = 72

// UserInput describes a new account
type UserInput struct {
	Username string
	Password string
	Role     models.Role
}

// UserUpdate is a partial update. A non-nil Password is re-hashed.
type UserUpdate struct {
	Username *string
	Password *string
	Role     *models.Role
}

// Session is the result of a successful login or registration
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Role      models.Role  `json:"role"`
	User      *models.User `json:"user"`
}

// UserService manages staff accounts and authentication
type UserService struct {
	store  database.Store
	tokens *auth.TokenManager
	logger *zap.Logger
	now    Clock
}

// NewUserService creates a new user service
func NewUserService(store database.Store, tokens *auth.TokenManager, logger *zap.Logger, now Clock) *UserService {
	return &UserService{store: store, tokens: tokens, logger: logger.Named("users"), now: now}
}

// Login checks credentials and issues a token. Unknown users and wrong
// passwords fail the same way.
func (s *UserService) Login(ctx context.Context, username, password string) (*Session, error) {
	var user *models.User
	err := s.store.Read(ctx, func(tx database.Tx) error {
		var err error
		user, err = tx.Users().GetByUsername(ctx, clean(username))
		return err
	})
	if errors.Is(err, models.ErrNotFound) || (err == nil && !auth.CheckPassword(user.PasswordHash, password)) {
		s.logger.Info("login failed", zap.String("username", username))
		return nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

// Register creates a waiter account and logs it in
func (s *UserService) Register(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.Create(ctx, UserInput{Username: username, Password: password, Role: models.RoleWaiter})
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

// Authenticate resolves a bearer token to the stored user, so role
// changes and deletions take effect before the token expires.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.Get(ctx, claims.Subject)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", models.ErrUnauthenticated)
	}
	return user, err
}

func (s *UserService) session(user *models.User) (*Session, error) {
	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, Role: user.Role, User: user}, nil
}

// List returns every account
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.store.Read(ctx, func(tx database.Tx) error {
		var err error
		users, err = tx.Users().List(ctx)
		return err
	})
	return users, err
}

// Get returns the account with the given id
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var user *models.User
	err := s.store.Read(ctx, func(tx database.Tx) error {
		var err error
		user, err = tx.Users().Get(ctx, id)
		return err
	})
	return user, err
}

// Create stores a new account. The role defaults to waiter.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	username := clean(in.Username)
	if err := validateCredentials(username, in.Password); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleWaiter
	}
	if !role.Valid() {
		return nil, invalid("unknown role %q", role)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.store.Write(ctx, func(tx database.Tx) error {
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, conflict("username %s is taken", username)
		}
		return nil, err
	}

	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// Update applies the non-nil fields of in, rehashing the password when
// one is given
func (s *UserService) Update(ctx context.Context, id string, in UserUpdate) (*models.User, error) {
	var hash string
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, err
		}
		var err error
		if hash, err = auth.HashPassword(*in.Password); err != nil {
			return nil, err
		}
	}
	if in.Role != nil && !in.Role.Valid() {
		return nil, invalid("unknown role %q", *in.Role)
	}

	var user *models.User
	err := s.store.Write(ctx, func(tx database.Tx) error {
		current, err := tx.Users().Get(ctx, id)
		if err != nil {
			return err
		}
		if in.Username != nil {
			current.Username = clean(*in.Username)
			if err := validateUsername(current.Username); err != nil {
				return err
			}
		}
		if in.Role != nil && *in.Role != current.Role {
			if current.Role == models.RoleAdmin {
				if err := requireAnotherAdmin(ctx, tx); err != nil {
					return err
				}
			}
			current.Role = *in.Role
		}
		if hash != "" {
			current.PasswordHash = hash
		}
		current.UpdatedAt = s.now()
		if err := tx.Users().Update(ctx, current); err != nil {
			if errors.Is(err, models.ErrConflict) {
				return conflict("username %s is taken", current.Username)
			}
			return err
		}
		user = current
		return nil
	})
	return user, err
}

// Delete removes an account. Nobody can delete themselves, and the last
// admin cannot be removed.
func (s *UserService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if actor.ID == id {
		return invalid("you cannot delete your own account")
	}
	err := s.store.Write(ctx, func(tx database.Tx) error {
		user, err := tx.Users().Get(ctx, id)
		if err != nil {
			return err
		}
		if user.Role == models.RoleAdmin {
			if err := requireAnotherAdmin(ctx, tx); err != nil {
				return err
			}
		}
		return tx.Users().Delete(ctx, id)
	})
	if err == nil {
		s.logger.Info("user deleted", zap.String("user_id", id), zap.String("actor", actor.ID))
	}
	return err
}

// EnsureAdmin creates an admin account when none exists. It reports
// whether one was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	var admins int
	err := s.store.Read(ctx, func(tx database.Tx) error {
		var err error
		admins, err = tx.Users().CountByRole(ctx, models.RoleAdmin)
		return err
	})
	if err != nil || admins > 0 {
		return false, err
	}
	if username == "" || password == "" {
		s.logger.Warn("no admin account exists and ADMIN_USERNAME/ADMIN_PASSWORD are not set")
		return false, nil
	}
	if _, err := s.Create(ctx, UserInput{Username: username, Password: password, Role: models.RoleAdmin}); err != nil {
		return false, fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	return true, nil
}

func requireAnotherAdmin(ctx context.Context, tx database.Tx) error {
	admins, err := tx.Users().CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return conflict("the last admin account cannot be removed or demoted")
	}
	return nil
}

func validateCredentials(username, password string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	return validatePassword(password)
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return invalid("password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordBytes {
		return invalid("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

func validateUsername(username string) error {
	if n := len(username); n < minUsernameLen || n > maxUsernameLen {
		return invalid("username must be %d to %d characters", minUsernameLen, maxUsernameLen)
	}
	return nil
}
