// Package file persists credentials in an AES-GCM encrypted JSON file.
// The store is a lightweight per-user secret file (0600), not a
// replacement for an OS keychain, but it keeps secrets out of plain-text
// config. External edits to the file can be observed through Watch so the
// credential gate drops its cache.
package file

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
	"github.com/digitaldataco/fabrexlens/internal/core/ports/driven"
	"github.com/digitaldataco/fabrexlens/internal/logger"
)

// Ensure CredentialStore implements the interface.
var _ driven.CredentialStore = (*CredentialStore)(nil)

const credentialsFile = "credentials.json"

// credentialFile is the on-disk layout: storage key to base64 ciphertext.
type credentialFile struct {
	Credentials map[string]string `json:"credentials"`
}

// CredentialStore stores encrypted credentials in a single file under the
// application directory.
type CredentialStore struct {
	path string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewCredentialStore creates a store rooted at dir, creating the directory
// with restricted permissions if needed.
func NewCredentialStore(dir string) (*CredentialStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create credential dir: %w: %v", domain.ErrStorageUnavailable, err)
	}
	return &CredentialStore{path: filepath.Join(dir, credentialsFile)}, nil
}

// Path returns the credentials file location.
func (s *CredentialStore) Path() string {
	return s.path
}

// Load retrieves and decrypts the credential for a key, or (nil, nil) when
// absent.
func (s *CredentialStore) Load(_ context.Context, key domain.CredentialKey) (*domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cf, err := s.read()
	if err != nil {
		return nil, err
	}
	encoded, ok := cf.Credentials[key.StorageKey()]
	if !ok {
		return nil, nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode credential %s: %w: %v", key, domain.ErrStorageUnavailable, err)
	}
	plain, err := decrypt(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decrypt credential %s: %w: %v", key, domain.ErrStorageUnavailable, err)
	}

	var cred domain.Credential
	if err := json.Unmarshal(plain, &cred); err != nil {
		return nil, fmt.Errorf("unmarshal credential %s: %w: %v", key, domain.ErrStorageUnavailable, err)
	}
	return &cred, nil
}

// Save encrypts and stores the credential for a key. The file is replaced
// atomically so a concurrent reader never sees a torn write.
func (s *CredentialStore) Save(_ context.Context, key domain.CredentialKey, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cf, err := s.read()
	if err != nil {
		return err
	}
	if cf.Credentials == nil {
		cf.Credentials = make(map[string]string)
	}

	plain, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal credential %s: %w: %v", key, domain.ErrStorageUnavailable, err)
	}
	ciphertext, err := encrypt(plain)
	if err != nil {
		return fmt.Errorf("encrypt credential %s: %w: %v", key, domain.ErrStorageUnavailable, err)
	}
	cf.Credentials[key.StorageKey()] = base64.StdEncoding.EncodeToString(ciphertext)

	return s.write(cf)
}

// Delete removes the credential for a key. Deleting an absent key is a
// no-op.
func (s *CredentialStore) Delete(_ context.Context, key domain.CredentialKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cf, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := cf.Credentials[key.StorageKey()]; !ok {
		return nil
	}
	delete(cf.Credentials, key.StorageKey())
	return s.write(cf)
}

// Watch invokes onChange whenever the credentials file is modified from
// outside this process. Call Close to stop watching.
func (s *CredentialStore) Watch(onChange func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return fmt.Errorf("watch: already watching %s", s.path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	// Watch the directory: atomic renames replace the file node, and a
	// watch on the old node would go quiet after the first save.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	s.watcher = watcher
	s.done = make(chan struct{})

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != credentialsFile {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					logger.Debug("credential file changed (%s), notifying", event.Op)
					onChange()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("credential file watcher: %v", err)
			case <-s.done:
				return
			}
		}
	}()
	return nil
}

// Close stops the file watcher, if one is running.
func (s *CredentialStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	err := s.watcher.Close()
	s.watcher = nil
	s.done = nil
	return err
}

// read loads the credential file. A missing file is an empty store.
func (s *CredentialStore) read() (credentialFile, error) {
	var cf credentialFile
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return credentialFile{}, nil
		}
		return cf, fmt.Errorf("read %s: %w: %v", s.path, domain.ErrStorageUnavailable, err)
	}
	if err := json.Unmarshal(data, &cf); err != nil {
		return cf, fmt.Errorf("parse %s: %w: %v", s.path, domain.ErrStorageUnavailable, err)
	}
	return cf, nil
}

// write replaces the credential file atomically with 0600 permissions.
func (s *CredentialStore) write(cf credentialFile) error {
	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w: %v", s.path, domain.ErrStorageUnavailable, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w: %v", tmp, domain.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w: %v", s.path, domain.ErrStorageUnavailable, err)
	}
	return nil
}

// masterKey derives the file encryption key from stable per-user
// attributes.
func masterKey() []byte {
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	hash := sha256.Sum256([]byte(fmt.Sprintf("fabrexlens-%s-%s", runtime.GOOS, user)))
	return hash[:]
}

func encrypt(plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	body := ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
