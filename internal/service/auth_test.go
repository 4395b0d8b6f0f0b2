package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/moitinho/rifa-api/internal/domain"
	"github.com/moitinho/rifa-api/internal/repository"
)

type stubUserRepo struct {
	created   domain.User
	createErr error

	found   domain.User
	findErr error
}

func (s *stubUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if s.createErr != nil {
		return domain.User{}, s.createErr
	}
	s.created = user
	user.ID = 1

	return user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.found, s.findErr
}

func TestRegister_HashesPassword(t *testing.T) {
	repo := &stubUserRepo{}
	svc := NewAuthService(repo)

	user, err := svc.Register(context.Background(), "a@b.com", "secret123")

	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)
	assert.NotEqual(t, "secret123", repo.created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.Password), []byte("secret123")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &stubUserRepo{createErr: repository.ErrUserEmailExists}
	svc := NewAuthService(repo)

	_, err := svc.Register(context.Background(), "a@b.com", "secret123")

	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubUserRepo{found: domain.User{ID: 1, Email: "a@b.com", Password: string(hash)}}
	svc := NewAuthService(repo)

	user, err := svc.Login(context.Background(), "a@b.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)

	_, err = svc.Login(context.Background(), "a@b.com", "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := &stubUserRepo{findErr: repository.ErrUserNotFound}
	svc := NewAuthService(repo)

	_, err := svc.Login(context.Background(), "missing@b.com", "secret123")

	assert.ErrorIs(t, err, ErrUserNotFound)
}
