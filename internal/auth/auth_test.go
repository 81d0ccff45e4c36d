package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	u := &models.User{ID: "u1", Username: "ana", Role: models.RoleCashier}

	token, expires, err := m.Issue(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, models.RoleCashier, claims.Role)
}

func TestTokenRejections(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	u := &models.User{ID: "u1", Username: "ana", Role: models.RoleWaiter}
	token, _, err := m.Issue(u)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokenManager("other", time.Hour).Parse(token)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokenManager("secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(token)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("unsigned", func(t *testing.T) {
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Parse(none)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))

	_, err = HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestPolicy(t *testing.T) {
	tests := []struct {
		role models.Role
		perm Permission
		want bool
	}{
		{models.RoleWaiter, OrdersCreate, true},
		{models.RoleWaiter, OrdersCancel, false},
		{models.RoleWaiter, TablesLayout, true},
		{models.RoleWaiter, TablesManage, false},
		{models.RoleCashier, InvoicesCreate, true},
		{models.RoleCashier, InvoicesDelete, false},
		{models.RoleCashier, OrdersCreate, false},
		{models.RoleSupervisor, InventoryManage, false},
		{models.RoleManager, InventoryManage, true},
		{models.RoleAdmin, UsersManage, true},
		{models.RoleManager, UsersManage, false},
		{models.Role("owner"), TablesRead, false},
		{models.RoleAdmin, Permission("unknown"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+" "+string(tt.perm), func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.role, tt.perm))
		})
	}

	for perm := range Policy {
		assert.True(t, Allowed(models.RoleAdmin, perm), "admin should hold %s", perm)
	}
}

func TestActorContext(t *testing.T) {
	_, ok := ActorFrom(context.Background())
	assert.False(t, ok)

	ctx := WithActor(context.Background(), models.Actor{ID: "u1", Role: models.RoleAdmin})
	actor, ok := ActorFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", actor.ID)
}
