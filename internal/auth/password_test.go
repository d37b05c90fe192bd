package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptRoundTrip(t *testing.T) {
	h, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", h)

	h2, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, h, h2, "hashes are salted")

	ok, err := CheckPassword(h, "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(h, "s3cre")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWerkzeugHashes(t *testing.T) {
	hashes := []string{
		"pbkdf2:sha256:1000$saltsalt$363c04567191fc3ada4d69a4cb1a6ce87e849ef851f981e289e39cb564fd55b2",
		"pbkdf2:sha512:1000$saltsalt$0737189bd47fc199dd8fb018f52e62c89d590e1e0a8fbdc492b7f098b7ee8bbc6e967fc1bbce36dddf46a779d7e0dd63d088ca566c925186c208d927931249ba",
		"scrypt:1024:8:1$saltsalt$726a02353a70d165a158589cd4b4ffd485d12e46a14a76ebf5a539e583071c63888d28e264acb999d6d80daae118eabd0f83e2f6c23cae4064071df59350fb80",
	}
	for _, h := range hashes {
		ok, err := CheckPassword(h, "pw1")
		require.NoError(t, err, h)
		assert.True(t, ok, h)

		ok, err = CheckPassword(h, "pw2")
		require.NoError(t, err, h)
		assert.False(t, ok, h)
	}
}

func TestUnsupportedHash(t *testing.T) {
	for _, h := range []string{"", "plaintext", "md5$salt$abc", "pbkdf2:sha1:10$s$abc", "pbkdf2:sha256:x$s$abc", "scrypt:1:2$s$abc"} {
		ok, err := CheckPassword(h, "pw")
		assert.ErrorIs(t, err, errUnsupportedHash, h)
		assert.False(t, ok)
	}
}
