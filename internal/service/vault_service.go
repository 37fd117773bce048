package service

import (
	"errors"
	"fmt"
	"time"

	"passvault-server/internal/domain"
	"passvault-server/internal/repository"
	"passvault-server/pkg/crypto"

	"github.com/google/uuid"
)

// VaultNotifier receives ownership-scoped change events so other live
// sessions of the same account can refresh. Implementations must never
// be handed secret material; events carry ids and site names only.
type VaultNotifier interface {
	CredentialChanged(ownerID, credentialID, siteName string)
	CredentialDeleted(ownerID, credentialID string)
}

// VaultService orchestrates credential CRUD. Secrets are sealed before
// persistence and opened only when serving the record's owner; every
// operation on an existing record checks existence first, then ownership.
type VaultService struct {
	credentialRepo repository.CredentialRepository
	key            []byte
	notifier       VaultNotifier
}

func NewVaultService(credentialRepo repository.CredentialRepository, key []byte, notifier VaultNotifier) *VaultService {
	return &VaultService{
		credentialRepo: credentialRepo,
		key:            key,
		notifier:       notifier,
	}
}

func (s *VaultService) Create(ownerID string, req *domain.CreateCredentialRequest) (*domain.CredentialResponse, error) {
	sealed, err := crypto.Seal(req.Password, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to seal secret: %w", err)
	}

	now := time.Now()
	credential := &domain.Credential{
		ID:                uuid.New().String(),
		OwnerID:           ownerID,
		SiteName:          req.SiteName,
		SiteURL:           req.SiteURL,
		Username:          req.Username,
		EncryptedPassword: sealed,
		Notes:             req.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.credentialRepo.Create(credential); err != nil {
		return nil, err
	}

	s.notifyChanged(credential)

	// The caller just supplied the plaintext, so echoing it back leaks
	// nothing new.
	return s.decryptedView(credential)
}

// List returns every credential owned by the account, each opened
// eagerly. O(n) decrypts per call; fine at personal-vault sizes.
func (s *VaultService) List(ownerID string) ([]*domain.CredentialResponse, error) {
	credentials, err := s.credentialRepo.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.CredentialResponse, 0, len(credentials))
	for _, c := range credentials {
		resp, err := s.decryptedView(c)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}

	return responses, nil
}

func (s *VaultService) Get(ownerID, credentialID string) (*domain.CredentialResponse, error) {
	credential, err := s.loadOwned(ownerID, credentialID)
	if err != nil {
		return nil, err
	}

	return s.decryptedView(credential)
}

// Update applies partial-update semantics: nil fields keep their stored
// values. A new password is resealed under a fresh nonce; otherwise the
// existing envelope is left untouched.
func (s *VaultService) Update(ownerID, credentialID string, req *domain.UpdateCredentialRequest) (*domain.CredentialResponse, error) {
	credential, err := s.loadOwned(ownerID, credentialID)
	if err != nil {
		return nil, err
	}

	if req.SiteName != nil {
		credential.SiteName = *req.SiteName
	}
	if req.SiteURL != nil {
		credential.SiteURL = *req.SiteURL
	}
	if req.Username != nil {
		credential.Username = *req.Username
	}
	if req.Notes != nil {
		credential.Notes = *req.Notes
	}
	if req.Password != nil {
		sealed, err := crypto.Seal(*req.Password, s.key)
		if err != nil {
			return nil, fmt.Errorf("failed to seal secret: %w", err)
		}
		credential.EncryptedPassword = sealed
	}
	credential.UpdatedAt = time.Now()

	if err := s.credentialRepo.Update(credential); err != nil {
		return nil, err
	}

	s.notifyChanged(credential)

	return s.decryptedView(credential)
}

// Delete is a hard delete; there is no tombstone to restore from.
func (s *VaultService) Delete(ownerID, credentialID string) error {
	if _, err := s.loadOwned(ownerID, credentialID); err != nil {
		return err
	}

	if err := s.credentialRepo.Delete(credentialID); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.CredentialDeleted(ownerID, credentialID)
	}

	return nil
}

// loadOwned resolves a credential id and enforces ownership, in that
// order: a missing id yields ErrNotFound, a foreign one ErrNotOwner.
func (s *VaultService) loadOwned(ownerID, credentialID string) (*domain.Credential, error) {
	credential, err := s.credentialRepo.FindByID(credentialID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if credential.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	return credential, nil
}

func (s *VaultService) decryptedView(credential *domain.Credential) (*domain.CredentialResponse, error) {
	password, err := crypto.Open(credential.EncryptedPassword, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to open secret for credential %s: %w", credential.ID, err)
	}

	return &domain.CredentialResponse{
		ID:        credential.ID,
		OwnerID:   credential.OwnerID,
		SiteName:  credential.SiteName,
		SiteURL:   credential.SiteURL,
		Username:  credential.Username,
		Password:  password,
		Notes:     credential.Notes,
		CreatedAt: credential.CreatedAt,
		UpdatedAt: credential.UpdatedAt,
	}, nil
}

func (s *VaultService) notifyChanged(credential *domain.Credential) {
	if s.notifier != nil {
		s.notifier.CredentialChanged(credential.OwnerID, credential.ID, credential.SiteName)
	}
}
