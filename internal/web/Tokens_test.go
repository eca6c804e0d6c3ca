package web

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adhvyk/ar-studio/webserver/internal/models/user"
)

func TestTokenIssuer_AccessToken(t *testing.T) {
	issuer := NewTokenIssuer("access", "refresh", 15*time.Minute, time.Hour)
	u := &user.User{ID: primitive.NewObjectID(), Role: user.RoleAdmin}

	token, err := issuer.AccessToken(u)
	require.NoError(t, err)

	caller, err := issuer.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, caller.ID)
	assert.True(t, caller.IsAdmin())

	_, err = issuer.ParseRefreshToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RefreshToken(t *testing.T) {
	issuer := NewTokenIssuer("access", "refresh", 15*time.Minute, time.Hour)
	u := &user.User{ID: primitive.NewObjectID(), Role: user.RoleUser}

	token, err := issuer.RefreshToken(u)
	require.NoError(t, err)

	id, err := issuer.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	_, err = issuer.ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("access", "refresh", 15*time.Minute, time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := issuer.AccessToken(&user.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	_, err = issuer.ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("access", "refresh", 15*time.Minute, time.Hour)

	_, err := issuer.ParseAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
