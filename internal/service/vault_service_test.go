package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"passvault-server/internal/domain"
	"passvault-server/internal/repository"
	"passvault-server/pkg/crypto"
)

type mockCredentialRepository struct {
	credentials map[string]*domain.Credential
}

func newMockCredentialRepository() *mockCredentialRepository {
	return &mockCredentialRepository{
		credentials: make(map[string]*domain.Credential),
	}
}

func (m *mockCredentialRepository) Create(credential *domain.Credential) error {
	stored := *credential
	m.credentials[credential.ID] = &stored
	return nil
}

func (m *mockCredentialRepository) FindByID(id string) (*domain.Credential, error) {
	if credential, ok := m.credentials[id]; ok {
		found := *credential
		return &found, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockCredentialRepository) ListByOwner(ownerID string) ([]*domain.Credential, error) {
	var result []*domain.Credential
	for _, credential := range m.credentials {
		if credential.OwnerID == ownerID {
			found := *credential
			result = append(result, &found)
		}
	}
	return result, nil
}

func (m *mockCredentialRepository) Update(credential *domain.Credential) error {
	existing, ok := m.credentials[credential.ID]
	if !ok {
		return repository.ErrNotFound
	}

	// owner_id and created_at are never rewritten, mirroring the real
	// repository.
	updated := *credential
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	m.credentials[credential.ID] = &updated
	return nil
}

func (m *mockCredentialRepository) Delete(id string) error {
	if _, ok := m.credentials[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.credentials, id)
	return nil
}

type recordedEvent struct {
	kind         string
	ownerID      string
	credentialID string
}

type mockNotifier struct {
	events []recordedEvent
}

func (m *mockNotifier) CredentialChanged(ownerID, credentialID, siteName string) {
	m.events = append(m.events, recordedEvent{kind: "changed", ownerID: ownerID, credentialID: credentialID})
}

func (m *mockNotifier) CredentialDeleted(ownerID, credentialID string) {
	m.events = append(m.events, recordedEvent{kind: "deleted", ownerID: ownerID, credentialID: credentialID})
}

func newTestVault(t *testing.T) (*VaultService, *mockCredentialRepository, *mockNotifier) {
	t.Helper()

	key, err := crypto.DeriveKey("vault-service-test-secret")
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}

	repo := newMockCredentialRepository()
	notifier := &mockNotifier{}
	return NewVaultService(repo, key, notifier), repo, notifier
}

func TestVaultService_CreateStoresSealed(t *testing.T) {
	vault, repo, notifier := newTestVault(t)

	created, err := vault.Create("owner-1", &domain.CreateCredentialRequest{
		SiteName: "Example",
		SiteURL:  "https://example.com",
		Username: "alice",
		Password: "s3cr3t",
		Notes:    "personal",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// The response echoes the plaintext back to the owner who supplied it.
	if created.Password != "s3cr3t" {
		t.Errorf("Create() response password = %q, want %q", created.Password, "s3cr3t")
	}
	if created.OwnerID != "owner-1" {
		t.Errorf("Create() owner = %q, want owner-1", created.OwnerID)
	}

	stored := repo.credentials[created.ID]
	if stored == nil {
		t.Fatal("credential was not persisted")
	}
	if stored.EncryptedPassword == "s3cr3t" || strings.Contains(stored.EncryptedPassword, "s3cr3t") {
		t.Error("secret persisted in plaintext")
	}
	if parts := strings.Split(stored.EncryptedPassword, ":"); len(parts) != 3 {
		t.Errorf("stored envelope has %d segments, want 3", len(parts))
	}

	if len(notifier.events) != 1 || notifier.events[0].kind != "changed" {
		t.Errorf("notifier events = %+v, want one changed event", notifier.events)
	}
}

func TestVaultService_ListDecryptsOwnedOnly(t *testing.T) {
	vault, _, _ := newTestVault(t)

	if _, err := vault.Create("owner-1", &domain.CreateCredentialRequest{SiteName: "One", Password: "pw-one"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := vault.Create("owner-2", &domain.CreateCredentialRequest{SiteName: "Two", Password: "pw-two"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	list, err := vault.List("owner-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(list) != 1 {
		t.Fatalf("List() returned %d records, want 1", len(list))
	}
	if list[0].SiteName != "One" || list[0].Password != "pw-one" {
		t.Errorf("List() = %+v, want owner-1's decrypted record", list[0])
	}
}

func TestVaultService_OwnershipOrdering(t *testing.T) {
	vault, _, _ := newTestVault(t)

	created, err := vault.Create("owner-1", &domain.CreateCredentialRequest{SiteName: "Example", Password: "pw"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Missing id resolves before any ownership consideration.
	if _, err := vault.Get("owner-2", "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	// Foreign id fails closed on ownership for every operation.
	if _, err := vault.Get("owner-2", created.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Get(foreign) error = %v, want ErrNotOwner", err)
	}

	siteName := "Hijacked"
	if _, err := vault.Update("owner-2", created.ID, &domain.UpdateCredentialRequest{SiteName: &siteName}); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Update(foreign) error = %v, want ErrNotOwner", err)
	}

	if err := vault.Delete("owner-2", created.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Delete(foreign) error = %v, want ErrNotOwner", err)
	}

	// The record is untouched after the denied attempts.
	got, err := vault.Get("owner-1", created.ID)
	if err != nil {
		t.Fatalf("Get(owner) error = %v", err)
	}
	if got.SiteName != "Example" || got.Password != "pw" {
		t.Errorf("record mutated by denied access: %+v", got)
	}
}

func TestVaultService_PartialUpdate(t *testing.T) {
	vault, repo, _ := newTestVault(t)

	created, err := vault.Create("owner-1", &domain.CreateCredentialRequest{
		SiteName: "Example",
		SiteURL:  "https://example.com",
		Username: "alice",
		Password: "original-pw",
		Notes:    "keep me",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	originalEnvelope := repo.credentials[created.ID].EncryptedPassword

	// Nil fields keep stored values; present empty strings clear the
	// optional fields.
	newName := "Renamed"
	emptyURL := ""
	updated, err := vault.Update("owner-1", created.ID, &domain.UpdateCredentialRequest{
		SiteName: &newName,
		SiteURL:  &emptyURL,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.SiteName != "Renamed" {
		t.Errorf("SiteName = %q, want Renamed", updated.SiteName)
	}
	if updated.SiteURL != "" {
		t.Errorf("SiteURL = %q, want cleared", updated.SiteURL)
	}
	if updated.Username != "alice" || updated.Notes != "keep me" {
		t.Errorf("absent fields changed: %+v", updated)
	}
	if updated.Password != "original-pw" {
		t.Errorf("Password = %q, want unchanged", updated.Password)
	}

	// Without a new password the stored envelope is left untouched.
	if repo.credentials[created.ID].EncryptedPassword != originalEnvelope {
		t.Error("envelope resealed without a password change")
	}
}

func TestVaultService_UpdateResealsPassword(t *testing.T) {
	vault, repo, _ := newTestVault(t)

	created, err := vault.Create("owner-1", &domain.CreateCredentialRequest{SiteName: "Example", Password: "old-pw"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	originalEnvelope := repo.credentials[created.ID].EncryptedPassword

	newPassword := "new-pw"
	updated, err := vault.Update("owner-1", created.ID, &domain.UpdateCredentialRequest{Password: &newPassword})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Password != "new-pw" {
		t.Errorf("Password = %q, want new-pw", updated.Password)
	}

	resealed := repo.credentials[created.ID].EncryptedPassword
	if resealed == originalEnvelope {
		t.Error("envelope not resealed after password change")
	}
	// Fresh nonce per seal: the nonce segment must differ too.
	if strings.SplitN(resealed, ":", 2)[0] == strings.SplitN(originalEnvelope, ":", 2)[0] {
		t.Error("resealed envelope reuses the previous nonce")
	}
}

func TestVaultService_DeleteIsHard(t *testing.T) {
	vault, _, notifier := newTestVault(t)

	created, err := vault.Create("owner-1", &domain.CreateCredentialRequest{SiteName: "Example", Password: "pw"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := vault.Delete("owner-1", created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := vault.Get("owner-1", created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	list, err := vault.List("owner-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List() after delete returned %d records, want 0", len(list))
	}

	last := notifier.events[len(notifier.events)-1]
	if last.kind != "deleted" || last.credentialID != created.ID {
		t.Errorf("last notifier event = %+v, want deleted for %s", last, created.ID)
	}
}
