package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)

	raw, err := mgr.Issue("admin01", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := mgr.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "admin01", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestVerify_WrongSecret(t *testing.T) {
	raw, err := NewManager("secret-a", time.Hour).Issue("u1", "client")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	mgr := NewManager("test-secret", -time.Minute)

	raw, err := mgr.Issue("u1", "client")
	require.NoError(t, err)

	_, err = mgr.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)

	_, err := mgr.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
