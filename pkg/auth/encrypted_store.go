package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// PassphraseEnv overrides the passphrase file kept next to the credentials file
const PassphraseEnv = "VKBACKUP_PASSPHRASE"

const (
	tokenFileVersion = 2
	passphraseFile   = ".passphrase"

	saltSize   = 16
	keySize    = 32
	iterations = 100000
)

// EncryptedFileStore keeps tokens in a JSON file. Profile names are stored in
// the clear; every token is sealed on its own with AES-GCM under a key derived
// from the passphrase, bound to its profile and token name.
type EncryptedFileStore struct {
	path string
	mu   sync.Mutex
}

type tokenFile struct {
	Version  int                      `json:"version"`
	Salt     []byte                   `json:"salt"`
	Profiles map[string]sealedProfile `json:"profiles"`
}

type sealedProfile struct {
	VKToken  []byte    `json:"vk_token,omitempty"`
	YDToken  []byte    `json:"yd_token,omitempty"`
	Modified time.Time `json:"modified"`
}

// NewEncryptedFileStore returns a store backed by path. Nothing is written
// until tokens are stored.
func NewEncryptedFileStore(path string) *EncryptedFileStore {
	return &EncryptedFileStore{path: path}
}

// Name identifies the store
func (e *EncryptedFileStore) Name() string { return "encrypted file" }

// Path returns the location of the credentials file
func (e *EncryptedFileStore) Path() string { return e.path }

// Store seals both tokens of a profile, replacing what was stored before
func (e *EncryptedFileStore) Store(tokens *Tokens) error {
	if tokens == nil || tokens.Profile == "" {
		return ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	file, err := e.read()
	if errors.Is(err, os.ErrNotExist) {
		file, err = newTokenFile()
	}
	if err != nil {
		return err
	}

	// A new passphrase would lock out the profiles already sealed
	key, err := e.key(file.Salt, len(file.Profiles) == 0)
	if err != nil {
		return err
	}

	sealed := sealedProfile{Modified: tokens.LastModified}
	if sealed.VKToken, err = seal(key, tokens.VKToken, slot(tokens.Profile, "vk_token")); err != nil {
		return err
	}
	if sealed.YDToken, err = seal(key, tokens.YDToken, slot(tokens.Profile, "yd_token")); err != nil {
		return err
	}
	file.Profiles[tokens.Profile] = sealed

	return e.write(file)
}

// Retrieve unseals the tokens of profile
func (e *EncryptedFileStore) Retrieve(profile string) (*Tokens, error) {
	if profile == "" {
		return nil, ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	file, err := e.read()
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrCredentialsNotFound
	}
	if err != nil {
		return nil, err
	}

	sealed, ok := file.Profiles[profile]
	if !ok {
		return nil, ErrCredentialsNotFound
	}

	key, err := e.key(file.Salt, false)
	if err != nil {
		return nil, err
	}
	return sealed.open(key, profile)
}

// List unseals every stored profile
func (e *EncryptedFileStore) List() ([]*Tokens, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	file, err := e.read()
	if errors.Is(err, os.ErrNotExist) {
		return []*Tokens{}, nil
	}
	if err != nil {
		return nil, err
	}

	key, err := e.key(file.Salt, false)
	if err != nil {
		return nil, err
	}

	list := make([]*Tokens, 0, len(file.Profiles))
	for profile, sealed := range file.Profiles {
		tokens, err := sealed.open(key, profile)
		if err != nil {
			return nil, err
		}
		list = append(list, tokens)
	}
	return list, nil
}

// Delete drops a profile. The passphrase is not needed; the file is removed
// together with its last profile.
func (e *EncryptedFileStore) Delete(profile string) error {
	if profile == "" {
		return ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	file, err := e.read()
	if errors.Is(err, os.ErrNotExist) {
		return ErrCredentialsNotFound
	}
	if err != nil {
		return err
	}

	if _, ok := file.Profiles[profile]; !ok {
		return ErrCredentialsNotFound
	}
	delete(file.Profiles, profile)

	if len(file.Profiles) == 0 {
		return os.Remove(e.path)
	}
	return e.write(file)
}

// Exists reports whether profile is in the file without unsealing it
func (e *EncryptedFileStore) Exists(profile string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	file, err := e.read()
	if err != nil {
		return false
	}
	_, ok := file.Profiles[profile]
	return ok
}

func newTokenFile() (*tokenFile, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return &tokenFile{
		Version:  tokenFileVersion,
		Salt:     salt,
		Profiles: make(map[string]sealedProfile),
	}, nil
}

func (e *EncryptedFileStore) read() (*tokenFile, error) {
	content, err := os.ReadFile(e.path)
	if err != nil {
		return nil, err
	}

	var file tokenFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", e.path, err)
	}
	if file.Version != tokenFileVersion {
		return nil, fmt.Errorf("unsupported credentials file version %d in %s", file.Version, e.path)
	}
	if len(file.Salt) == 0 {
		return nil, fmt.Errorf("credentials file %s has no salt", e.path)
	}
	if file.Profiles == nil {
		file.Profiles = make(map[string]sealedProfile)
	}
	return &file, nil
}

// write replaces the file through a temp file so a failed write keeps the old one
func (e *EncryptedFileStore) write(file *tokenFile) error {
	content, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(e.path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := e.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0600); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, e.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// key derives the file key. A missing passphrase file is created only when create is set.
func (e *EncryptedFileStore) key(salt []byte, create bool) ([]byte, error) {
	passphrase, err := e.passphrase(create)
	if err != nil {
		return nil, err
	}
	return pbkdf2.Key([]byte(passphrase), salt, iterations, keySize, sha256.New), nil
}

func (e *EncryptedFileStore) passphrase(create bool) (string, error) {
	if pass := os.Getenv(PassphraseEnv); pass != "" {
		return pass, nil
	}

	path := filepath.Join(filepath.Dir(e.path), passphraseFile)
	if content, err := os.ReadFile(path); err == nil && len(content) > 0 {
		return string(content), nil
	}
	if !create {
		return "", fmt.Errorf("%w: set %s or restore %s", ErrStoreUnavailable, PassphraseEnv, path)
	}

	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	passphrase := base64.RawURLEncoding.EncodeToString(b)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(passphrase), 0600); err != nil {
		return "", fmt.Errorf("failed to save passphrase: %w", err)
	}
	return passphrase, nil
}

func (p sealedProfile) open(key []byte, profile string) (*Tokens, error) {
	vk, err := unseal(key, p.VKToken, slot(profile, "vk_token"))
	if err != nil {
		return nil, err
	}
	yd, err := unseal(key, p.YDToken, slot(profile, "yd_token"))
	if err != nil {
		return nil, err
	}
	return &Tokens{Profile: profile, VKToken: vk, YDToken: yd, LastModified: p.Modified}, nil
}

// slot is the additional data binding a sealed token to where it is stored
func slot(profile, name string) string {
	return profile + "/" + name
}

// seal encrypts one token as nonce||ciphertext. An empty token stays empty.
func seal(key []byte, token, aad string) ([]byte, error) {
	if token == "" {
		return nil, nil
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, []byte(token), []byte(aad)), nil
}

func unseal(key, sealed []byte, aad string) (string, error) {
	if len(sealed) == 0 {
		return "", nil
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	n := gcm.NonceSize()
	if len(sealed) < n {
		return "", fmt.Errorf("sealed %s is truncated", aad)
	}
	plain, err := gcm.Open(nil, sealed[:n], sealed[n:], []byte(aad))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt %s: %w", aad, err)
	}
	return string(plain), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
