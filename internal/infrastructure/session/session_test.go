package session

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func TestDeriveKeys(t *testing.T) {
	a, err := DeriveKeys("a-long-enough-session-secret-value")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := DeriveKeys("a-long-enough-session-secret-value")
	c, _ := DeriveKeys("another-session-secret-value-xxxx")

	if len(a.Hash) != 64 || len(a.Encryption) != 32 || len(a.State) != 32 {
		t.Errorf("unexpected key sizes %d/%d/%d", len(a.Hash), len(a.Encryption), len(a.State))
	}
	if !bytes.Equal(a.Hash, b.Hash) || !bytes.Equal(a.State, b.State) {
		t.Error("derivation must be deterministic")
	}
	if bytes.Equal(a.Hash, c.Hash) {
		t.Error("different secrets must give different keys")
	}
	if bytes.Equal(a.Encryption, a.State) {
		t.Error("keys must be independent")
	}

	if _, err := DeriveKeys(""); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestCookieStore_RoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	keys, _ := DeriveKeys(RandomSecret())

	router := gin.New()
	router.Use(sessions.Sessions("writify_session", NewCookieStore(keys, Options{
		MaxAge:   24 * time.Hour,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})))
	router.GET("/set", func(c *gin.Context) {
		s := sessions.Default(c)
		s.Set(UserIDKey, "user-1")
		_ = s.Save()
	})
	router.GET("/get", func(c *gin.Context) {
		v, _ := sessions.Default(c).Get(UserIDKey).(string)
		c.String(http.StatusOK, v)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set", nil))
	setCookie := w.Header().Get("Set-Cookie")
	for _, attr := range []string{"HttpOnly", "Secure", "SameSite=Lax", "Max-Age=86400"} {
		if !strings.Contains(setCookie, attr) {
			t.Errorf("cookie %q lacks %s", setCookie, attr)
		}
	}
	if strings.Contains(setCookie, "user-1") {
		t.Error("cookie must be encrypted")
	}

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	req.Header.Set("Cookie", strings.Split(setCookie, ";")[0])
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Body.String() != "user-1" {
		t.Errorf("session value = %q", w.Body.String())
	}
}
