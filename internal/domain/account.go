package domain

import "time"

// Account is a registered user. PasswordHash is a one-way bcrypt hash,
// set at registration and never returned in responses.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"required,min=1,max=100"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns a copy safe to serialize to clients.
func (a *Account) Public() *Account {
	return &Account{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse is returned by register and login. The token is also
// delivered as an HttpOnly cookie; the body copy serves clients that
// authenticate with a bearer header instead.
type SessionResponse struct {
	Account   *Account `json:"account"`
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expires_in"`
}
