package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndCompare(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("tree-planter-42")
	require.NoError(t, err)
	assert.NotEqual(t, "tree-planter-42", hash)

	assert.NoError(t, hasher.Compare(hash, "tree-planter-42"))
	assert.ErrorIs(t, hasher.Compare(hash, "wrong-password"), ErrInvalidCredentials)
}

func TestPasswordHasher_ConfiguredCost(t *testing.T) {
	hasher := NewPasswordHasher(6)

	hash, err := hasher.Hash("secret")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 6, cost)
}

func TestNewPasswordHasher_InvalidCostFallsBack(t *testing.T) {
	hasher := NewPasswordHasher(99)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)

	hasher = NewPasswordHasher(-1)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)
}
