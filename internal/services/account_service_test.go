package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tabiplan/internal/models/db_models"
	"tabiplan/internal/models/request_models"
	"tabiplan/pkg/utils"
)

type fakeAccountRepo struct {
	byEmail  map[string]*db_models.Account
	inserted []*db_models.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byEmail: map[string]*db_models.Account{}}
}

func (f *fakeAccountRepo) InsertTx(account *db_models.Account, ctx context.Context) error {
	f.inserted = append(f.inserted, account)
	f.byEmail[account.Email] = account
	return nil
}

func (f *fakeAccountRepo) FindById(ctx context.Context, id string) (*db_models.Account, error) {
	for _, a := range f.byEmail {
		if a.ID.String() == id {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) FindByEmail(ctx context.Context, email string) (*db_models.Account, error) {
	return f.byEmail[email], nil
}

func TestCreateAccountHashesPassword(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, zap.NewNop())

	err := svc.CreateAccount(context.Background(), request_models.SignUpRequest{
		DisplayName: "Hanako",
		Email:       "hanako@example.com",
		Password:    "secret123",
	})
	require.NoError(t, err)
	require.Len(t, repo.inserted, 1)

	created := repo.inserted[0]
	assert.Equal(t, "Hanako", created.DisplayName)
	assert.Equal(t, "user", created.Role)
	assert.NotEqual(t, "secret123", created.PasswordHash)
	assert.NoError(t, utils.ComparePasswords(created.PasswordHash, "secret123"))
}

func TestCreateAccountRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, zap.NewNop())

	req := request_models.SignUpRequest{
		DisplayName: "Hanako",
		Email:       "hanako@example.com",
		Password:    "secret123",
	}
	require.NoError(t, svc.CreateAccount(context.Background(), req))

	err := svc.CreateAccount(context.Background(), req)
	assert.ErrorIs(t, err, utils.ErrEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, zap.NewNop())

	require.NoError(t, svc.CreateAccount(context.Background(), request_models.SignUpRequest{
		DisplayName: "Taro",
		Email:       "taro@example.com",
		Password:    "correct-horse",
	}))

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(request_models.LoginRequest{
			Email:    "nobody@example.com",
			Password: "whatever",
		}, context.Background())
		assert.ErrorIs(t, err, utils.ErrAccountNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(request_models.LoginRequest{
			Email:    "taro@example.com",
			Password: "wrong",
		}, context.Background())
		assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
	})

	t.Run("success issues token", func(t *testing.T) {
		token, err := svc.Login(request_models.LoginRequest{
			Email:    "taro@example.com",
			Password: "correct-horse",
		}, context.Background())
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := utils.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, repo.inserted[0].ID.String(), claims.AccountID)
		assert.Equal(t, "user", claims.Role)
	})
}
