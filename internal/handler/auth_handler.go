package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"passvault-server/internal/domain"
	"passvault-server/internal/middleware"
	"passvault-server/internal/service"
	"passvault-server/pkg/response"

	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authService  *service.AuthService
	validator    *validator.Validate
	secureCookie bool
}

func NewAuthHandler(authService *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		validator:    validator.New(),
		secureCookie: secureCookie,
	}
}

// Register creates an account and opens a session for it, delivered both
// as an HttpOnly cookie and in the body for bearer-header clients.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	session, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.BadRequest(w, "Account already exists")
			return
		}
		log.Printf("register failed: %v", err)
		response.InternalError(w, "Server error")
		return
	}

	h.setSessionCookie(w, session.Token)
	response.Created(w, session)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	session, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// Identical message for unknown email and wrong password.
			response.BadRequest(w, "Invalid credentials")
			return
		}
		log.Printf("login failed: %v", err)
		response.InternalError(w, "Server error")
		return
	}

	h.setSessionCookie(w, session.Token)
	response.Success(w, session)
}

// Logout clears the session cookie. Tokens are stateless, so this is
// client-side only: a copied token stays valid until its expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookie,
		MaxAge:   -1,
	})

	response.Success(w, map[string]string{
		"message": "Logged out",
	})
}

// Me resolves the authenticated principal back to its account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	account, err := h.authService.ResolvePrincipal(userID)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			response.Unauthorized(w, "Account not found")
			return
		}
		log.Printf("principal resolution failed: %v", err)
		response.InternalError(w, "Server error")
		return
	}

	response.Success(w, account)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	// Max-Age mirrors the signed expiry so the cookie cannot outlive the
	// token it carries.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookie,
		MaxAge:   int(h.authService.SessionTTL() / time.Second),
	})
}
