package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordVerifier_RoundTrip(t *testing.T) {
	p := NewPasswordVerifier(bcrypt.MinCost)

	hash, err := p.Hash("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, p.Verify("s3cret!", hash))
	assert.False(t, p.Verify("s3cret?", hash))
	assert.False(t, p.Verify("", hash))
}

func TestPasswordVerifier_MultibyteOverBcryptLimit(t *testing.T) {
	p := NewPasswordVerifier(bcrypt.MinCost)

	// 40 characters, 80 bytes.
	long := strings.Repeat("é", 40)
	hash, err := p.Hash(long)
	require.NoError(t, err)

	assert.True(t, p.Verify(long, hash))
	assert.True(t, p.Verify(strings.Repeat("é", 36)+"tail", hash), "bytes past 72 are ignored")
	assert.False(t, p.Verify(strings.Repeat("é", 35), hash))
	assert.NotPanics(t, func() { p.BurnComparison(long) })
}

func TestPasswordVerifier_SaltsEachHash(t *testing.T) {
	p := NewPasswordVerifier(bcrypt.MinCost)

	a, err := p.Hash("same")
	require.NoError(t, err)
	b, err := p.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, p.Verify("same", a))
	assert.True(t, p.Verify("same", b))
}

func TestPasswordVerifier_MalformedHash(t *testing.T) {
	p := NewPasswordVerifier(bcrypt.MinCost)

	for _, hash := range []string{"", "not-a-hash", "$2a$04$short", "$2a$99$" + string(make([]byte, 53))} {
		assert.NotPanics(t, func() {
			assert.False(t, p.Verify("anything", hash), "hash %q", hash)
		})
	}
}

func TestPasswordVerifier_CostFallback(t *testing.T) {
	p := NewPasswordVerifier(100)
	hash, err := p.Hash("x")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestPasswordVerifier_BurnComparison(t *testing.T) {
	p := NewPasswordVerifier(bcrypt.MinCost)
	assert.NotPanics(t, func() {
		p.BurnComparison("whatever")
		p.BurnComparison("again")
	})
}
