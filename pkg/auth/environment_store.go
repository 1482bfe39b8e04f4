package auth

import (
	"os"
	"time"
)

const (
	envVKToken = "VKBACKUP_VK_TOKEN"
	envYDToken = "VKBACKUP_YD_TOKEN"
)

// EnvironmentStore implements CredentialStore using environment variables.
// It is read-only and always reports a single profile.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Name identifies the store
func (e *EnvironmentStore) Name() string { return "environment" }

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(tokens *Tokens) error {
	return ErrStoreUnavailable
}

// Retrieve gets tokens from environment variables
func (e *EnvironmentStore) Retrieve(profile string) (*Tokens, error) {
	vkToken := os.Getenv(envVKToken)
	ydToken := os.Getenv(envYDToken)

	if vkToken == "" && ydToken == "" {
		return nil, ErrCredentialsNotFound
	}

	if profile == "" {
		profile = DefaultProfile
	}

	return &Tokens{
		Profile:      profile,
		VKToken:      vkToken,
		YDToken:      ydToken,
		LastModified: time.Now(),
	}, nil
}

// List returns a single profile if environment variables are set
func (e *EnvironmentStore) List() ([]*Tokens, error) {
	tokens, err := e.Retrieve("")
	if err != nil {
		return []*Tokens{}, nil
	}
	return []*Tokens{tokens}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(profile string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment tokens exist
func (e *EnvironmentStore) Exists(profile string) bool {
	return os.Getenv(envVKToken) != "" || os.Getenv(envYDToken) != ""
}
