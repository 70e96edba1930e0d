package users

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/minimart-pos/minimart-pos/internal/rbac"
	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	List(ctx context.Context, page, limit int) ([]User, int, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, id int64, u Update) error
	Deactivate(ctx context.Context, id int64) error
}

// Service manages staff accounts.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

const minPasswordLen = 8

// Create validates input, hashes the password and inserts the account.
func (s *Service) Create(ctx context.Context, input CreateInput) (User, error) {
	if input.Username == "" || input.FullName == "" || input.Email == "" {
		return User{}, fmt.Errorf("%w: username, full name and email are required", shared.ErrValidation)
	}
	if len(input.Password) < minPasswordLen {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", shared.ErrValidation, minPasswordLen)
	}
	role, err := rbac.ParseRole(input.Role)
	if err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	return s.repo.Create(ctx, User{
		Username:     input.Username,
		PasswordHash: string(hash),
		FullName:     input.FullName,
		Email:        input.Email,
		Phone:        input.Phone,
		Role:         role,
	})
}

// Update applies a typed partial update. A new password is re-hashed; a role
// change is validated against the closed role set.
func (s *Service) Update(ctx context.Context, id int64, u Update) (User, error) {
	if u.Empty() {
		return User{}, fmt.Errorf("%w: no fields to update", shared.ErrValidation)
	}
	if u.Role != nil {
		if _, err := rbac.ParseRole(*u.Role); err != nil {
			return User{}, err
		}
	}
	if u.Password != nil {
		if len(*u.Password) < minPasswordLen {
			return User{}, fmt.Errorf("%w: password must be at least %d characters", shared.ErrValidation, minPasswordLen)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*u.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		hashed := string(hash)
		u.Password = &hashed
	}

	if err := s.repo.Update(ctx, id, u); err != nil {
		return User{}, err
	}
	return s.repo.Get(ctx, id)
}

// Deactivate disables an account. The row stays for activity history.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}

// Get fetches one user.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// List returns paged users.
func (s *Service) List(ctx context.Context, page, limit int) ([]User, int, error) {
	return s.repo.List(ctx, page, limit)
}

// Authenticate verifies credentials for the login flow. Unknown username and
// wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	if !u.IsActive {
		return User{}, shared.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	return u, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, id int64, current, next string) error {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return shared.ErrInvalidCredentials
	}
	if len(next) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", shared.ErrValidation, minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hashed := string(hash)
	return s.repo.Update(ctx, id, Update{Password: &hashed})
}
