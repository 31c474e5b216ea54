package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPasswordAsBcrypt("correct horse battery staple")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPasswordHash(hash, "correct horse battery staple"))
	assert.False(t, CheckPasswordHash(hash, "correct horse battery stable"))
}

func TestCheckPasswordHashGarbage(t *testing.T) {
	assert.False(t, CheckPasswordHash("not a bcrypt hash", "whatever"))
	assert.False(t, CheckPasswordHash("", ""))
}

func TestHashesAreSalted(t *testing.T) {
	first, err := HashPasswordAsBcrypt("same password")
	assert.NoError(t, err)
	second, err := HashPasswordAsBcrypt("same password")
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}
