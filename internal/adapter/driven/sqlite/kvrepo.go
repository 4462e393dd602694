package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ericfisherdev/statpanel/internal/domain/port/driven"
)

// ErrEncryptionKeyNotSet is returned when a sealed value is read by a repo
// constructed without an encryption key.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set STATPANEL_SECRET_KEY")

// Compile-time interface satisfaction check.
var _ driven.KVStore = (*KVRepo)(nil)

// KVRepo is the SQLite implementation of the KVStore port interface.
// Values for sealed keys are encrypted with AES-256-GCM before write and
// decrypted after read. Without an encryption key every value is stored as
// plaintext.
type KVRepo struct {
	db     *DB
	key    []byte // 32-byte AES-256 key; nil when sealing is disabled.
	sealed map[string]bool
}

// NewKVRepo creates a new KVRepo. key must be 32 bytes for AES-256-GCM, or nil
// to disable sealing. sealedKeys names the keys whose values are encrypted.
func NewKVRepo(db *DB, key []byte, sealedKeys ...string) *KVRepo {
	sealed := make(map[string]bool, len(sealedKeys))
	for _, k := range sealedKeys {
		sealed[k] = true
	}
	return &KVRepo{db: db, key: key, sealed: sealed}
}

// Get returns the value stored under key, or ("", false, nil) if absent.
func (r *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `SELECT value, sealed FROM kv_store WHERE key = ?`
	var value string
	var sealed bool
	err := r.db.Reader.QueryRowContext(ctx, query, key).Scan(&value, &sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}

	if !sealed {
		return value, true, nil
	}

	plaintext, err := r.decrypt(value)
	if err != nil {
		return "", false, fmt.Errorf("decrypt %q: %w", key, err)
	}
	return plaintext, true, nil
}

// Set stores or replaces the value for key.
func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	seal := r.sealed[key] && r.key != nil
	if seal {
		encrypted, err := r.encrypt(value)
		if err != nil {
			return fmt.Errorf("encrypt %q: %w", key, err)
		}
		value = encrypted
	}

	const query = `INSERT OR REPLACE INTO kv_store (key, value, sealed, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`
	if _, err := r.db.Writer.ExecContext(ctx, query, key, value, seal); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *KVRepo) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM kv_store WHERE key = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce (12 bytes) prepended to the ciphertext.
func (r *KVRepo) encrypt(plaintext string) (string, error) {
	gcm, err := r.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *KVRepo) decrypt(encoded string) (string, error) {
	gcm, err := r.aead()
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

func (r *KVRepo) aead() (cipher.AEAD, error) {
	if r.key == nil {
		return nil, ErrEncryptionKeyNotSet
	}
	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
