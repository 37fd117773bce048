package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"passvault-server/internal/domain"
	"passvault-server/internal/middleware"
	"passvault-server/internal/service"
	"passvault-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type CredentialHandler struct {
	vault    *service.VaultService
	validate *validator.Validate
}

func NewCredentialHandler(vault *service.VaultService) *CredentialHandler {
	return &CredentialHandler{
		vault:    vault,
		validate: validator.New(),
	}
}

func (h *CredentialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	credential, err := h.vault.Create(middleware.GetUserID(r), &req)
	if err != nil {
		h.writeError(w, err, "Failed to create credential")
		return
	}

	response.Created(w, credential)
}

func (h *CredentialHandler) List(w http.ResponseWriter, r *http.Request) {
	credentials, err := h.vault.List(middleware.GetUserID(r))
	if err != nil {
		h.writeError(w, err, "Failed to list credentials")
		return
	}

	response.Success(w, credentials)
}

func (h *CredentialHandler) Get(w http.ResponseWriter, r *http.Request) {
	credentialID := mux.Vars(r)["id"]
	if credentialID == "" {
		response.BadRequest(w, "Credential ID is required")
		return
	}

	credential, err := h.vault.Get(middleware.GetUserID(r), credentialID)
	if err != nil {
		h.writeError(w, err, "Failed to get credential")
		return
	}

	response.Success(w, credential)
}

func (h *CredentialHandler) Update(w http.ResponseWriter, r *http.Request) {
	credentialID := mux.Vars(r)["id"]
	if credentialID == "" {
		response.BadRequest(w, "Credential ID is required")
		return
	}

	var req domain.UpdateCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	credential, err := h.vault.Update(middleware.GetUserID(r), credentialID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update credential")
		return
	}

	response.Success(w, credential)
}

func (h *CredentialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	credentialID := mux.Vars(r)["id"]
	if credentialID == "" {
		response.BadRequest(w, "Credential ID is required")
		return
	}

	if err := h.vault.Delete(middleware.GetUserID(r), credentialID); err != nil {
		h.writeError(w, err, "Failed to delete credential")
		return
	}

	response.Success(w, map[string]string{
		"message": "Credential deleted",
	})
}

// writeError maps service sentinels to statuses. Everything else,
// including decryption failures, is logged and collapsed to a generic
// server error.
func (h *CredentialHandler) writeError(w http.ResponseWriter, err error, genericMsg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(w, "Credential not found")
	case errors.Is(err, service.ErrNotOwner):
		response.Forbidden(w, "Not authorized")
	default:
		log.Printf("%s: %v", genericMsg, err)
		response.InternalError(w, "Server error")
	}
}
