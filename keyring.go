package todomark

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"filippo.io/age"
)

// Keyring holds age identities used to read encrypted notes while scanning.
type Keyring struct {
	identities []age.Identity
	mu         sync.RWMutex
}

// NewKeyring creates an empty keyring
func NewKeyring() *Keyring {
	return &Keyring{
		identities: make([]age.Identity, 0),
	}
}

// AddIdentity adds an identity for decryption (private key)
func (k *Keyring) AddIdentity(identityStr string) error {
	identity, err := age.ParseX25519Identity(identityStr)
	if err != nil {
		return fmt.Errorf("failed to parse identity: %w", err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.identities = append(k.identities, identity)
	return nil
}

// AddIdentitiesFromFile loads every identity of an age identity file
func (k *Keyring) AddIdentitiesFromFile(filePath string) error {
	keyFile, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open key file: %w", err)
	}

	defer func(keyFile *os.File) {
		_ = keyFile.Close()
	}(keyFile)

	identities, err := age.ParseIdentities(keyFile)
	if err != nil {
		return fmt.Errorf("failed to parse identities: %w", err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.identities = append(k.identities, identities...)

	return nil
}

// HasIdentities returns true if any identities are configured
func (k *Keyring) HasIdentities() bool {
	if k == nil {
		return false
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.identities) > 0
}

// Decrypt decrypts encrypted content using the configured identities
func (k *Keyring) Decrypt(encryptedContent []byte) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if len(k.identities) == 0 {
		return nil, fmt.Errorf("no identities configured for decryption")
	}

	decryptReader, err := age.Decrypt(bytes.NewReader(encryptedContent), k.identities...)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, decryptReader); err != nil {
		return nil, fmt.Errorf("failed to read decrypted content: %w", err)
	}

	return buf.Bytes(), nil
}

// IsAgeEncrypted checks if content is age encrypted by looking for the format header
func IsAgeEncrypted(content []byte) bool {
	if len(content) < 16 {
		return false
	}

	return bytes.HasPrefix(content, []byte("age-encryption.org/v1"))
}
