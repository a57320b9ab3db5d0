package services

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/eventzone/booking-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// CredentialStore verifies administrator logins
type CredentialStore interface {
	Verify(username, password string) (*models.Account, error)
}

type adminCredential struct {
	Username     string `yaml:"username"`
	FullName     string `yaml:"full_name"`
	PasswordHash string `yaml:"password_hash"`
}

type credentialFile struct {
	Admins []adminCredential `yaml:"admins"`
}

// FileCredentialStore reads bcrypt-hashed admin credentials from a YAML file
type FileCredentialStore struct {
	mu     sync.RWMutex
	path   string
	admins map[string]adminCredential
}

// NewFileCredentialStore loads the admin credentials at path
func NewFileCredentialStore(path string) (*FileCredentialStore, error) {
	store := &FileCredentialStore{path: path}
	if err := store.Reload(); err != nil {
		return nil, err
	}
	return store, nil
}

// Reload re-reads the credential file
func (s *FileCredentialStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read admin credentials: %w", err)
	}

	admins, err := parseCredentials(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.admins = admins
	s.mu.Unlock()
	return nil
}

func parseCredentials(data []byte) (map[string]adminCredential, error) {
	var file credentialFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	admins := make(map[string]adminCredential, len(file.Admins))
	for i, admin := range file.Admins {
		username := strings.TrimSpace(admin.Username)
		if username == "" || admin.PasswordHash == "" {
			return nil, fmt.Errorf("admin entry %d needs username and password_hash", i)
		}
		if _, dup := admins[username]; dup {
			return nil, fmt.Errorf("duplicate admin username %q", username)
		}
		if _, err := bcrypt.Cost([]byte(admin.PasswordHash)); err != nil {
			return nil, fmt.Errorf("admin %q: password_hash is not a bcrypt hash", username)
		}
		admin.Username = username
		admins[username] = admin
	}
	return admins, nil
}

// Verify implements CredentialStore
func (s *FileCredentialStore) Verify(username, password string) (*models.Account, error) {
	s.mu.RLock()
	admin, ok := s.admins[strings.TrimSpace(username)]
	s.mu.RUnlock()

	if !ok {
		// Compare against a fixed hash so unknown usernames cost the same as wrong passwords
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, unauthorizedError("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, unauthorizedError("invalid username or password")
	}

	fullName := admin.FullName
	if fullName == "" {
		fullName = "Administrator"
	}
	return &models.Account{Username: admin.Username, FullName: fullName, Role: models.RoleAdmin}, nil
}

var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z1Z2wF0lYt0bX3u8N3r6xV3e")
