package oauth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StateTTL bounds how long a user may spend on the consent page.
const StateTTL = 10 * time.Minute

const stateIssuer = "writify"

var ErrInvalidState = errors.New("invalid oauth state")

// StateSigner issues and verifies signed OAuth state tokens. The token's
// nonce must also match the one kept in the user's session.
type StateSigner struct {
	key []byte
	now func() time.Time
}

// NewStateSigner creates a signer with an HS256 key.
func NewStateSigner(key []byte) *StateSigner {
	return &StateSigner{key: key, now: time.Now}
}

type stateClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// Issue returns a new state token and the nonce it carries.
func (s *StateSigner) Issue() (token, nonce string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate nonce: %w", err)
	}
	nonce = base64.RawURLEncoding.EncodeToString(b)

	now := s.now()
	claims := stateClaims{
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    stateIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(StateTTL)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", "", fmt.Errorf("sign state: %w", err)
	}
	return token, nonce, nil
}

// Verify checks the signature, expiry and that the token carries wantNonce.
func (s *StateSigner) Verify(token, wantNonce string) error {
	if token == "" || wantNonce == "" {
		return ErrInvalidState
	}

	var claims stateClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if subtle.ConstantTimeCompare([]byte(claims.Nonce), []byte(wantNonce)) != 1 {
		return fmt.Errorf("%w: nonce mismatch", ErrInvalidState)
	}
	return nil
}
