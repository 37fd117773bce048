package repository

import (
	"context"
	"errors"
	"fmt"

	"passvault-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type AccountRepository interface {
	Create(account *domain.Account) error
	FindByEmail(email string) (*domain.Account, error)
	FindByID(id string) (*domain.Account, error)
	EmailExists(email string) (bool, error)
}

type accountRepository struct {
	client *kivik.Client
	dbName string
}

func NewAccountRepository(client *kivik.Client, dbName string) AccountRepository {
	return &accountRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *accountRepository) Create(account *domain.Account) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("account:%s", account.ID)
	_, err := db.Put(context.Background(), docID, account)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (r *accountRepository) FindByEmail(email string) (*domain.Account, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"email": email,
		},
		"limit": 1,
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query account by email: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrNotFound
	}

	var account domain.Account
	if err := rows.ScanDoc(&account); err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	return &account, nil
}

func (r *accountRepository) FindByID(id string) (*domain.Account, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("account:%s", id)
	row := db.Get(context.Background(), docID)

	var account domain.Account
	if err := row.ScanDoc(&account); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by id: %w", err)
	}

	return &account, nil
}

func (r *accountRepository) EmailExists(email string) (bool, error) {
	_, err := r.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
