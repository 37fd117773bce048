package domain

import "time"

// Credential is a stored per-site login record. EncryptedPassword holds
// the sealed envelope (iv:tag:ciphertext, each base64); the plaintext
// secret exists only transiently while serving an authorized request.
// OwnerID is immutable after creation.
type Credential struct {
	ID                string    `json:"id"`
	OwnerID           string    `json:"owner_id"`
	SiteName          string    `json:"site_name"`
	SiteURL           string    `json:"site_url,omitempty"`
	Username          string    `json:"username,omitempty"`
	EncryptedPassword string    `json:"encrypted_password"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CredentialResponse is the decrypted view returned to the record's
// owner. It never includes the envelope.
type CredentialResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	SiteName  string    `json:"site_name"`
	SiteURL   string    `json:"site_url,omitempty"`
	Username  string    `json:"username,omitempty"`
	Password  string    `json:"password"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateCredentialRequest struct {
	SiteName string `json:"site_name" validate:"required,min=1,max=200"`
	SiteURL  string `json:"site_url" validate:"omitempty,max=500"`
	Username string `json:"username" validate:"omitempty,max=200"`
	Password string `json:"password" validate:"required"`
	Notes    string `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateCredentialRequest carries partial-update semantics: a nil field
// leaves the stored value unchanged, a present field (including an empty
// string for the optional ones) sets it. SiteName and Password may not
// be set to empty.
type UpdateCredentialRequest struct {
	SiteName *string `json:"site_name" validate:"omitempty,min=1,max=200"`
	SiteURL  *string `json:"site_url" validate:"omitempty,max=500"`
	Username *string `json:"username" validate:"omitempty,max=200"`
	Password *string `json:"password" validate:"omitempty,min=1"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
}
