// Package auth issues and validates the opaque bearer tokens behind the API.
package auth

import (
	"context"
	"strconv"

	"github.com/minimart-pos/minimart-pos/internal/rbac"
	"github.com/minimart-pos/minimart-pos/internal/shared"
	"github.com/minimart-pos/minimart-pos/internal/users"
)

// UserPort is the slice of the user service the auth flows need.
type UserPort interface {
	Authenticate(ctx context.Context, username, password string) (users.User, error)
	Get(ctx context.Context, id int64) (users.User, error)
	Create(ctx context.Context, input users.CreateInput) (users.User, error)
	Update(ctx context.Context, id int64, u users.Update) (users.User, error)
	ChangePassword(ctx context.Context, id int64, current, next string) error
}

// TokenPort issues and revokes bearer tokens.
type TokenPort interface {
	Issue(ctx context.Context, actor rbac.Actor) (string, error)
	Resolve(ctx context.Context, token string) (rbac.Actor, error)
	Revoke(ctx context.Context, token string) error
}

// ActivityPort records user-visible actions.
type ActivityPort interface {
	Record(ctx context.Context, log shared.ActivityLog) error
}

// Session is the login response payload.
type Session struct {
	Token string     `json:"token"`
	User  users.User `json:"user"`
}

// Service handles login, logout and profile access.
type Service struct {
	users    UserPort
	tokens   TokenPort
	activity ActivityPort
}

// NewService builds Service. activity may be nil.
func NewService(userSvc UserPort, tokens TokenPort, activity ActivityPort) *Service {
	return &Service{users: userSvc, tokens: tokens, activity: activity}
}

// Login verifies credentials and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return Session{}, err
	}

	token, err := s.tokens.Issue(ctx, rbac.Actor{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
	})
	if err != nil {
		return Session{}, err
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, shared.ActivityLog{
			UserID:      u.ID,
			Type:        shared.ActivityLogin,
			Description: u.Username + " logged in",
			Entity:      "user",
			EntityID:    strconv.FormatInt(u.ID, 10),
		})
	}
	return Session{Token: token, User: u}, nil
}

// Register creates a staff account. Route-level authorization decides who may
// call this.
func (s *Service) Register(ctx context.Context, input users.CreateInput) (users.User, error) {
	return s.users.Create(ctx, input)
}

// Logout revokes the token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// Profile returns the account behind the actor.
func (s *Service) Profile(ctx context.Context, actorID int64) (users.User, error) {
	return s.users.Get(ctx, actorID)
}

// ProfileUpdate are the self-service editable fields.
type ProfileUpdate struct {
	FullName *string
	Email    *string
	Phone    *string
}

// UpdateProfile lets the actor edit their own contact details. Role and
// active flag are untouchable through this path.
func (s *Service) UpdateProfile(ctx context.Context, actorID int64, upd ProfileUpdate) (users.User, error) {
	return s.users.Update(ctx, actorID, users.Update{
		FullName: upd.FullName,
		Email:    upd.Email,
		Phone:    upd.Phone,
	})
}

// ChangePassword delegates to the user service for the authenticated actor.
func (s *Service) ChangePassword(ctx context.Context, actorID int64, current, next string) error {
	return s.users.ChangePassword(ctx, actorID, current, next)
}
