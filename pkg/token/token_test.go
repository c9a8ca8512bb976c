package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerify_RoundTrip(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	wire, err := signer.Generate("user-42", "agent@school.cd", "admin")
	require.NoError(t, err)

	payload, err := signer.Verify(wire)
	require.NoError(t, err)

	assert.Equal(t, "user-42", payload.UserID)
	assert.Equal(t, "agent@school.cd", payload.Email)
	assert.Equal(t, "admin", payload.Role)
	assert.Equal(t, payload.Iat+time.Hour.Milliseconds(), payload.Exp)
}

func TestVerify_WrongSecret(t *testing.T) {
	wire, err := NewSigner("secret", time.Hour).Generate("user-42", "", "")
	require.NoError(t, err)

	_, err = NewSigner("other", time.Hour).Verify(wire)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_TamperedPayload(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	wire, err := signer.Generate("user-42", "", "")
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(wire)
	require.NoError(t, err)

	tampered := strings.Replace(string(decoded), "user-42", "user-43", 1)
	_, err = signer.Verify(base64.StdEncoding.EncodeToString([]byte(tampered)))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_Expired(t *testing.T) {
	signer := NewSigner("secret", time.Millisecond)

	wire, err := signer.Generate("user-42", "", "")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = signer.Verify(wire)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_Malformed(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	cases := []string{
		"",
		"not-base64!!!",
		base64.StdEncoding.EncodeToString([]byte("no separator here")),
		base64.StdEncoding.EncodeToString([]byte("|||")),
		base64.StdEncoding.EncodeToString([]byte(`{"userId":"x"}|||`)),
	}
	for _, wire := range cases {
		_, err := signer.Verify(wire)
		assert.ErrorIs(t, err, ErrMalformedToken, "wire %q", wire)
	}
}

func TestDecode_SkipsSignatureCheck(t *testing.T) {
	wire, err := NewSigner("secret", time.Hour).Generate("user-42", "", "")
	require.NoError(t, err)

	payload := Decode(wire)
	require.NotNil(t, payload)
	assert.Equal(t, "user-42", payload.UserID)

	assert.Nil(t, Decode("not-base64!!!"))
}
