package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/minimart-pos/minimart-pos/internal/rbac"
	"github.com/minimart-pos/minimart-pos/internal/shared"
)

type memoryRepo struct {
	byID   map[int64]User
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: make(map[int64]User)}
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (r *memoryRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	for _, u := range r.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, shared.ErrNotFound
}

func (r *memoryRepo) List(ctx context.Context, page, limit int) ([]User, int, error) {
	return nil, len(r.byID), nil
}

func (r *memoryRepo) Create(ctx context.Context, u User) (User, error) {
	for _, existing := range r.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return User{}, shared.ErrConflict
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.IsActive = true
	r.byID[u.ID] = u
	return u, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, u Update) error {
	existing, ok := r.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	if u.FullName != nil {
		existing.FullName = *u.FullName
	}
	if u.Email != nil {
		existing.Email = *u.Email
	}
	if u.Role != nil {
		existing.Role = rbac.Role(*u.Role)
	}
	if u.IsActive != nil {
		existing.IsActive = *u.IsActive
	}
	if u.Password != nil {
		existing.PasswordHash = *u.Password
	}
	r.byID[id] = existing
	return nil
}

func (r *memoryRepo) Deactivate(ctx context.Context, id int64) error {
	u, ok := r.byID[id]
	if !ok || !u.IsActive {
		return shared.ErrNotFound
	}
	u.IsActive = false
	r.byID[id] = u
	return nil
}

func validInput() CreateInput {
	return CreateInput{
		Username: "cashier1",
		Password: "s3cret-pass",
		FullName: "Casey Cash",
		Email:    "casey@example.com",
		Role:     "cashier",
	}
}

func TestCreateHashesPassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", created.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("s3cret-pass")))
	require.Equal(t, rbac.RoleCashier, created.Role)
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	svc := NewService(newMemoryRepo())

	input := validInput()
	input.Role = "manager"
	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateRejectsShortPassword(t *testing.T) {
	svc := NewService(newMemoryRepo())

	input := validInput()
	input.Password = "short"
	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateDuplicateUsername(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	dup := validInput()
	dup.Email = "other@example.com"
	_, err = svc.Create(context.Background(), dup)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestAuthenticate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	u, err := svc.Authenticate(context.Background(), "cashier1", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, created.ID, u.ID)

	_, err = svc.Authenticate(context.Background(), "cashier1", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody", "s3cret-pass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	// A deactivated account can no longer log in.
	require.NoError(t, svc.Deactivate(context.Background(), created.ID))
	_, err = svc.Authenticate(context.Background(), "cashier1", "s3cret-pass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), created.ID, "wrong", "new-password-1")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(context.Background(), created.ID, "s3cret-pass", "new-password-1"))

	_, err = svc.Authenticate(context.Background(), "cashier1", "new-password-1")
	require.NoError(t, err)
}

func TestUpdateRoleValidated(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	bad := "supervisor"
	_, err = svc.Update(context.Background(), created.ID, Update{Role: &bad})
	require.ErrorIs(t, err, shared.ErrValidation)

	good := "staff"
	updated, err := svc.Update(context.Background(), created.ID, Update{Role: &good})
	require.NoError(t, err)
	require.Equal(t, rbac.RoleStaff, updated.Role)
}
