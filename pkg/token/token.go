// Package token implements the signed-token contract shared with the identity
// collaborator: an HMAC-SHA256 hex signature over the canonical JSON payload,
// joined with a "|||" separator and base64-encoded as the wire token. The
// format is fixed by the existing clients and must not drift.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const separator = "|||"

// DefaultTTL matches the collaborator's 7-day token lifetime.
const DefaultTTL = 7 * 24 * time.Hour

var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
)

// Payload is the canonical token payload. Iat and Exp are Unix timestamps in
// milliseconds, as emitted by the collaborator.
type Payload struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	Iat    int64  `json:"iat"`
	Exp    int64  `json:"exp"`
}

// Signer signs and verifies wire tokens with a shared secret.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

func (s *Signer) sign(message string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Generate issues a token for the given identity, stamping iat/exp.
func (s *Signer) Generate(userID, email, role string) (string, error) {
	now := time.Now().UnixMilli()
	payload := Payload{
		UserID: userID,
		Email:  email,
		Role:   role,
		Iat:    now,
		Exp:    now + s.ttl.Milliseconds(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	combined := string(raw) + separator + s.sign(string(raw))
	return base64.StdEncoding.EncodeToString([]byte(combined)), nil
}

// Verify recomputes the signature and checks expiry against the current time.
func (s *Signer) Verify(wire string) (*Payload, error) {
	decoded, err := base64.StdEncoding.DecodeString(wire)
	if err != nil {
		return nil, ErrMalformedToken
	}

	parts := strings.Split(string(decoded), separator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrMalformedToken
	}

	raw, signature := parts[0], parts[1]
	expected := s.sign(raw)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return nil, ErrInvalidSignature
	}

	var payload Payload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, ErrMalformedToken
	}

	if payload.Exp != 0 && time.Now().UnixMilli() > payload.Exp {
		return nil, ErrTokenExpired
	}

	return &payload, nil
}

// Decode parses the payload without verifying the signature. Used for
// non-security telemetry only.
func Decode(wire string) *Payload {
	decoded, err := base64.StdEncoding.DecodeString(wire)
	if err != nil {
		return nil
	}
	parts := strings.SplitN(string(decoded), separator, 2)
	if parts[0] == "" {
		return nil
	}
	var payload Payload
	if err := json.Unmarshal([]byte(parts[0]), &payload); err != nil {
		return nil
	}
	return &payload
}
