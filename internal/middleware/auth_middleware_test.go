package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"passvault-server/pkg/jwt"
)

const testSecret = "middleware-test-secret"

func authedRequest(t *testing.T, configure func(r *http.Request)) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var gotUserID string
	handler := AuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/v1/credentials", nil)
	configure(req)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, gotUserID
}

func TestAuthMiddleware_CookieToken(t *testing.T) {
	token, err := jwt.GenerateToken("user-1", time.Hour, testSecret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	rec, userID := authedRequest(t, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if userID != "user-1" {
		t.Errorf("user id = %q, want user-1", userID)
	}
}

func TestAuthMiddleware_BearerFallback(t *testing.T) {
	token, err := jwt.GenerateToken("user-2", time.Hour, testSecret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	rec, userID := authedRequest(t, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if userID != "user-2" {
		t.Errorf("user id = %q, want user-2", userID)
	}
}

func TestAuthMiddleware_CookieTakesPrecedence(t *testing.T) {
	cookieToken, _ := jwt.GenerateToken("cookie-user", time.Hour, testSecret)
	headerToken, _ := jwt.GenerateToken("header-user", time.Hour, testSecret)

	rec, userID := authedRequest(t, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookieToken})
		r.Header.Set("Authorization", "Bearer "+headerToken)
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if userID != "cookie-user" {
		t.Errorf("user id = %q, want cookie-user", userID)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	expiredToken, _ := jwt.GenerateToken("user-3", -time.Minute, testSecret)
	foreignToken, _ := jwt.GenerateToken("user-3", time.Hour, "some-other-secret")

	tests := []struct {
		name      string
		configure func(r *http.Request)
	}{
		{
			name:      "missing token",
			configure: func(r *http.Request) {},
		},
		{
			name: "malformed bearer header",
			configure: func(r *http.Request) {
				r.Header.Set("Authorization", "Token abc")
			},
		},
		{
			name: "expired token",
			configure: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: expiredToken})
			},
		},
		{
			name: "token signed with different secret",
			configure: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: foreignToken})
			},
		},
		{
			name: "garbage token",
			configure: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not.a.jwt"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := authedRequest(t, tt.configure)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}
