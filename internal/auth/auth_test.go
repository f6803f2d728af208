package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestIssueAndValidate(t *testing.T) {
	ti, err := NewTokenIssuer(GenerateSecureSecret(), time.Hour)
	require.NoError(t, err)

	token, err := ti.Issue("  ann ", true)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))

	claims, err := ti.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ann", claims.Player)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "arstack", claims.Issuer)
}

func TestValidate_RejectsForeignAndBroken(t *testing.T) {
	a, err := NewTokenIssuer("", time.Hour)
	require.NoError(t, err)
	b, err := NewTokenIssuer("", time.Hour)
	require.NoError(t, err)

	token, err := a.Issue("ann", false)
	require.NoError(t, err)

	_, err = b.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Validate(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	ti, err := NewTokenIssuer("", time.Nanosecond)
	require.NoError(t, err)

	token, err := ti.Issue("ann", false)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, err = ti.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenIssuer_BadSecret(t *testing.T) {
	_, err := NewTokenIssuer("%%%", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenIssuer("c2hvcnQ=", time.Hour) // "short"
	assert.Error(t, err)
}

func TestNormalizePlayerName(t *testing.T) {
	name, err := NormalizePlayerName(" Ёжик ")
	require.NoError(t, err)
	assert.Equal(t, "Ёжик", name)

	_, err = NormalizePlayerName("   ")
	assert.ErrorIs(t, err, ErrInvalidPlayerName)

	_, err = NormalizePlayerName(strings.Repeat("я", MaxPlayerNameLength+1))
	assert.ErrorIs(t, err, ErrInvalidPlayerName)
}

func TestAdminGuard(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	g := NewAdminGuard(string(hash))
	assert.True(t, g.Enabled())
	assert.True(t, g.Check("s3cret"))
	assert.False(t, g.Check("wrong"))

	disabled := NewAdminGuard("")
	assert.False(t, disabled.Enabled())
	assert.False(t, disabled.Check(""))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.True(t, NewAdminGuard(hash).Check("pw"))
}
