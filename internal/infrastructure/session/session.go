// Package session builds the login session store. Every key is derived from
// one SESSION_SECRET so operators manage a single value.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"golang.org/x/crypto/hkdf"
	"gorm.io/gorm"
)

// Session keys.
const (
	UserIDKey     = "user_id"
	OAuthNonceKey = "oauth_nonce"
)

// Keys holds the secrets derived from SESSION_SECRET.
type Keys struct {
	Hash       []byte // cookie HMAC
	Encryption []byte // cookie AES-256
	State      []byte // OAuth state JWT
}

// DeriveKeys expands secret into independent keys with HKDF-SHA256.
func DeriveKeys(secret string) (Keys, error) {
	if secret == "" {
		return Keys{}, errors.New("session secret is empty")
	}
	derive := func(info string, n int) ([]byte, error) {
		key := make([]byte, n)
		r := hkdf.New(sha256.New, []byte(secret), []byte("writify-session"), []byte(info))
		if _, err := io.ReadFull(r, key); err != nil {
			return nil, fmt.Errorf("derive %s key: %w", info, err)
		}
		return key, nil
	}

	var (
		k   Keys
		err error
	)
	if k.Hash, err = derive("cookie-hash", 64); err != nil {
		return Keys{}, err
	}
	if k.Encryption, err = derive("cookie-encryption", 32); err != nil {
		return Keys{}, err
	}
	if k.State, err = derive("oauth-state", 32); err != nil {
		return Keys{}, err
	}
	return k, nil
}

// RandomSecret returns a throwaway secret for development runs without SESSION_SECRET.
func RandomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x", b)
}

// Options are the cookie attributes of the session.
type Options struct {
	MaxAge   time.Duration
	Secure   bool
	SameSite http.SameSite
}

func (o Options) apply(store sessions.Store) {
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(o.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	})
}

// NewCookieStore keeps the session in an encrypted cookie.
func NewCookieStore(keys Keys, opts Options) sessions.Store {
	store := cookie.NewStore(keys.Hash, keys.Encryption)
	opts.apply(store)
	return store
}

// NewGormStore keeps sessions in the sessions table; the cookie carries only the id.
// Expired rows are purged in the background.
func NewGormStore(db *gorm.DB, keys Keys, opts Options) sessions.Store {
	store := gormsessions.NewStore(db, true, keys.Hash, keys.Encryption)
	opts.apply(store)
	return store
}
