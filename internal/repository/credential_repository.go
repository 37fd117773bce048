package repository

import (
	"context"
	"fmt"
	"time"

	"passvault-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type CredentialRepository interface {
	Create(credential *domain.Credential) error
	FindByID(id string) (*domain.Credential, error)
	ListByOwner(ownerID string) ([]*domain.Credential, error)
	Update(credential *domain.Credential) error
	Delete(id string) error
}

type credentialRepository struct {
	client *kivik.Client
	dbName string
}

func NewCredentialRepository(client *kivik.Client, dbName string) CredentialRepository {
	return &credentialRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *credentialRepository) Create(credential *domain.Credential) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("credential:%s", credential.ID)
	_, err := db.Put(context.Background(), docID, credential)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}

	return nil
}

func (r *credentialRepository) FindByID(id string) (*domain.Credential, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("credential:%s", id)
	row := db.Get(context.Background(), docID)

	var credential domain.Credential
	if err := row.ScanDoc(&credential); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}

	return &credential, nil
}

func (r *credentialRepository) ListByOwner(ownerID string) ([]*domain.Credential, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"owner_id":  ownerID,
			"site_name": map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var credentials []*domain.Credential
	for rows.Next() {
		var credential domain.Credential
		if err := rows.ScanDoc(&credential); err != nil {
			continue
		}
		credentials = append(credentials, &credential)
	}

	return credentials, nil
}

func (r *credentialRepository) Update(credential *domain.Credential) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("credential:%s", credential.ID)

	// Fetch the current revision so the Put is accepted. owner_id and
	// created_at are never rewritten.
	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch existing credential for update: %w", err)
	}

	existingDoc["site_name"] = credential.SiteName
	existingDoc["site_url"] = credential.SiteURL
	existingDoc["username"] = credential.Username
	existingDoc["encrypted_password"] = credential.EncryptedPassword
	existingDoc["notes"] = credential.Notes
	existingDoc["updated_at"] = time.Now()

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}

	return nil
}

func (r *credentialRepository) Delete(id string) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("credential:%s", id)

	row := db.Get(context.Background(), docID)
	var existingDoc map[string]interface{}
	if err := row.ScanDoc(&existingDoc); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch credential for delete: %w", err)
	}

	rev, _ := existingDoc["_rev"].(string)
	if _, err := db.Delete(context.Background(), docID, rev); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	return nil
}
