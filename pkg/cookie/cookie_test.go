package cookie_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/restkit/pkg/cookie"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setAndCarry(t *testing.T, w *httptest.ResponseRecorder, target string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestPlainCookies(t *testing.T) {
	m := cookie.New()

	t.Run("missing cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if _, err := m.Get(r, "nope"); !errors.Is(err, cookie.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("set and get", func(t *testing.T) {
		w := httptest.NewRecorder()
		m.Set(w, "theme", "dark", 3600)

		r := setAndCarry(t, w, "/")
		got, err := m.Get(r, "theme")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != "dark" {
			t.Errorf("got %q, want dark", got)
		}
	})

	t.Run("delete expires cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		m.Delete(w, "theme")

		cookies := w.Result().Cookies()
		if len(cookies) != 1 {
			t.Fatalf("expected 1 cookie, got %d", len(cookies))
		}
		if cookies[0].MaxAge >= 0 {
			t.Errorf("MaxAge = %d, want negative", cookies[0].MaxAge)
		}
	})
}

func TestSignedCookies(t *testing.T) {
	m := cookie.New(cookie.WithSecret(testSecret))

	t.Run("roundtrip", func(t *testing.T) {
		w := httptest.NewRecorder()
		if err := m.SetSigned(w, "uid", "42", 3600); err != nil {
			t.Fatalf("SetSigned: %v", err)
		}

		r := setAndCarry(t, w, "/")
		got, err := m.GetSigned(r, "uid")
		if err != nil {
			t.Fatalf("GetSigned: %v", err)
		}
		if got != "42" {
			t.Errorf("got %q, want 42", got)
		}
	})

	t.Run("tampered value rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		if err := m.SetSigned(w, "uid", "42", 3600); err != nil {
			t.Fatalf("SetSigned: %v", err)
		}

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		c := w.Result().Cookies()[0]
		c.Value = "x" + c.Value
		r.AddCookie(c)

		if _, err := m.GetSigned(r, "uid"); !errors.Is(err, cookie.ErrBadSig) {
			t.Errorf("expected ErrBadSig, got %v", err)
		}
	})

	t.Run("no secret", func(t *testing.T) {
		plain := cookie.New()
		w := httptest.NewRecorder()
		if err := plain.SetSigned(w, "uid", "42", 0); !errors.Is(err, cookie.ErrNoSecret) {
			t.Errorf("expected ErrNoSecret, got %v", err)
		}
	})
}

func TestEncryptedCookies(t *testing.T) {
	m := cookie.New(cookie.WithSecret(testSecret))

	t.Run("roundtrip", func(t *testing.T) {
		w := httptest.NewRecorder()
		if err := m.SetEncrypted(w, "data", "secret payload", 3600); err != nil {
			t.Fatalf("SetEncrypted: %v", err)
		}

		// Value on the wire must not contain the plaintext
		if got := w.Result().Cookies()[0].Value; got == "secret payload" {
			t.Error("value not encrypted")
		}

		r := setAndCarry(t, w, "/")
		got, err := m.GetEncrypted(r, "data")
		if err != nil {
			t.Fatalf("GetEncrypted: %v", err)
		}
		if got != "secret payload" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "data", Value: "not-encrypted"})
		if _, err := m.GetEncrypted(r, "data"); !errors.Is(err, cookie.ErrDecrypt) {
			t.Errorf("expected ErrDecrypt, got %v", err)
		}
	})
}

func TestFlash(t *testing.T) {
	m := cookie.New(cookie.WithSecret(testSecret))

	type msg struct {
		Text string `json:"text"`
	}

	w := httptest.NewRecorder()
	if err := m.SetFlash(w, "notice", msg{Text: "saved"}); err != nil {
		t.Fatalf("SetFlash: %v", err)
	}

	r := setAndCarry(t, w, "/")
	w2 := httptest.NewRecorder()

	var got msg
	if err := m.Flash(w2, r, "notice", &got); err != nil {
		t.Fatalf("Flash: %v", err)
	}
	if got.Text != "saved" {
		t.Errorf("got %q, want saved", got.Text)
	}

	// Reading deletes the cookie
	deleted := false
	for _, c := range w2.Result().Cookies() {
		if c.Name == "flash_notice" && c.MaxAge < 0 {
			deleted = true
		}
	}
	if !deleted {
		t.Error("flash cookie not deleted after read")
	}
}
