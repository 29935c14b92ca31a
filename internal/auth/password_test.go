package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_Bcrypt(t *testing.T) {
	h := NewPasswordHasher(AlgorithmBcrypt, bcrypt.MinCost)

	hash, err := h.Hash("s3cret!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"))
	assert.NotContains(t, hash, "s3cret!")

	assert.True(t, h.Verify("s3cret!", hash))
	assert.False(t, h.Verify("s3cret", hash))
	assert.False(t, h.Verify("", hash))
}

func TestPasswordHasher_Argon2id(t *testing.T) {
	h := NewPasswordHasher(AlgorithmArgon2id, 0)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=1$"))

	assert.True(t, h.Verify("correct horse", hash))
	assert.False(t, h.Verify("correct horsE", hash))
}

func TestPasswordHasher_SaltedHashesDiffer(t *testing.T) {
	for _, algo := range []string{AlgorithmBcrypt, AlgorithmArgon2id} {
		t.Run(algo, func(t *testing.T) {
			h := NewPasswordHasher(algo, bcrypt.MinCost)
			a, err := h.Hash("same")
			require.NoError(t, err)
			b, err := h.Hash("same")
			require.NoError(t, err)
			assert.NotEqual(t, a, b)
		})
	}
}

func TestPasswordHasher_VerifiesAcrossAlgorithms(t *testing.T) {
	bcryptHasher := NewPasswordHasher(AlgorithmBcrypt, bcrypt.MinCost)
	argonHasher := NewPasswordHasher(AlgorithmArgon2id, 0)

	legacy, err := bcryptHasher.Hash("pw123456")
	require.NoError(t, err)
	assert.True(t, argonHasher.Verify("pw123456", legacy))

	modern, err := argonHasher.Hash("pw123456")
	require.NoError(t, err)
	assert.True(t, bcryptHasher.Verify("pw123456", modern))
}

func TestPasswordHasher_MalformedHashNeverMatches(t *testing.T) {
	h := NewPasswordHasher(AlgorithmArgon2id, 0)
	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=3,p=1$!!!$!!!",
		"$argon2id$v=18$m=65536,t=3,p=1$c2FsdA$aGFzaA",
		"$argon2id$garbage",
		"$argon2id$v=19$m=65536,t=3,p=0$c2FsdHNhbHQ$aGFzaGhhc2g",
		"$argon2id$v=19$m=65536,t=0,p=1$c2FsdHNhbHQ$aGFzaGhhc2g",
		"$argon2id$v=19$m=0,t=3,p=1$c2FsdHNhbHQ$aGFzaGhhc2g",
	} {
		assert.False(t, h.Verify("anything", encoded), encoded)
	}
}

func TestNewPasswordHasher_Defaults(t *testing.T) {
	h := NewPasswordHasher("md5", 99)
	assert.Equal(t, AlgorithmBcrypt, h.algorithm)
	assert.Equal(t, bcrypt.DefaultCost, h.bcryptCost)
}
