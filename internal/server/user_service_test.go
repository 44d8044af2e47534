package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naumansqb/jobtrack/internal/apperr"
	"github.com/naumansqb/jobtrack/internal/config"
	"github.com/naumansqb/jobtrack/internal/db"
	"github.com/naumansqb/jobtrack/internal/types"
)

type fakeUserStore struct {
	byEmail map[string]*db.User
}

func (f *fakeUserStore) CreateUser(_ context.Context, name, email, passwordHash string) (*db.User, error) {
	u := &db.User{Name: name, Email: email, PasswordHash: passwordHash}
	f.byEmail[email] = u
	return u, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	return f.byEmail[email], nil
}

func TestUserService(t *testing.T) {
	newService := func() (*UserService, *fakeUserStore) {
		store := &fakeUserStore{byEmail: make(map[string]*db.User)}
		return NewUserService(store, &config.PasswordConfig{BcryptCost: 10}), store
	}

	t.Run("register hashes the password", func(t *testing.T) {
		svc, store := newService()
		user, err := svc.Register(context.Background(), &types.RegisterRequest{
			Name: "Dana", Email: "dana@example.com", Password: "hunter22x",
		})
		require.NoError(t, err)
		assert.NotEqual(t, "hunter22x", store.byEmail["dana@example.com"].PasswordHash)
		assert.Equal(t, "dana@example.com", user.Email)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		svc, _ := newService()
		req := &types.RegisterRequest{Name: "Dana", Email: "dana@example.com", Password: "hunter22x"}
		_, err := svc.Register(context.Background(), req)
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), req)
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
	})

	t.Run("login round trip", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.Register(context.Background(), &types.RegisterRequest{
			Name: "Dana", Email: "dana@example.com", Password: "hunter22x",
		})
		require.NoError(t, err)

		user, err := svc.Login(context.Background(), &types.LoginRequest{
			Email: "dana@example.com", Password: "hunter22x",
		})
		require.NoError(t, err)
		assert.Equal(t, "Dana", user.Name)
	})

	t.Run("wrong password and unknown email look identical", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.Register(context.Background(), &types.RegisterRequest{
			Name: "Dana", Email: "dana@example.com", Password: "hunter22x",
		})
		require.NoError(t, err)

		_, wrongPw := svc.Login(context.Background(), &types.LoginRequest{
			Email: "dana@example.com", Password: "wrong",
		})
		_, noUser := svc.Login(context.Background(), &types.LoginRequest{
			Email: "nobody@example.com", Password: "whatever",
		})

		assert.IsType(t, &ErrInvalidCredentials{}, wrongPw)
		assert.IsType(t, &ErrInvalidCredentials{}, noUser)
		assert.Equal(t, wrongPw.Error(), noUser.Error())
	})
}
