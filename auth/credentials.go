package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/luminospark/asambal-system/docstore"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const credentialsCollection = "credenciales"

// CredentialStore keeps password hashes separate from the account
// documents; the document keyed by lowercase email holds only the hash.
type CredentialStore interface {
	// CreateIfNotExists provisions a credential for email. When password
	// is empty a random one is generated. Returns false when a credential
	// already exists, in which case nothing is written.
	CreateIfNotExists(ctx context.Context, email, password string) (bool, error)
	SetPassword(ctx context.Context, email, password string) error
	Verify(ctx context.Context, email, password string) error
}

type docCredentialStore struct {
	store docstore.Store
}

func NewCredentialStore(store docstore.Store) CredentialStore {
	return &docCredentialStore{store: store}
}

func credentialID(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *docCredentialStore) CreateIfNotExists(ctx context.Context, email, password string) (bool, error) {
	id := credentialID(email)
	_, err := s.store.Get(ctx, credentialsCollection, id)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return false, err
	}
	if password == "" {
		password, err = randomPassword()
		if err != nil {
			return false, err
		}
	}
	if err := s.SetPassword(ctx, email, password); err != nil {
		return false, err
	}
	return true, nil
}

func (s *docCredentialStore) SetPassword(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.Set(ctx, credentialsCollection, credentialID(email), map[string]interface{}{
		"email":        credentialID(email),
		"passwordHash": string(hash),
	})
}

func (s *docCredentialStore) Verify(ctx context.Context, email, password string) error {
	doc, err := s.store.Get(ctx, credentialsCollection, credentialID(email))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	hash, _ := doc.Data["passwordHash"].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
