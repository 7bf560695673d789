package storage

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"telemetry_logger/internal/models"
)

// Encryption provides AES-256-CBC encryption/decryption for log records
// persisted by the file backend. Ciphertexts are hex-encoded strings.
//
// The IV is derived from the first 16 bytes of the key, so the same record
// under the same key always encrypts to the same envelope. Treat the key as
// the only secret and rotate it rather than relying on ciphertext uniqueness.
type Encryption struct {
	key []byte
}

// NewEncryption creates a new encryption service with the given key.
// The key must be exactly 32 bytes (AES-256).
func NewEncryption(key []byte) (*Encryption, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKey, len(key))
	}

	return &Encryption{
		key: key,
	}, nil
}

// NewEncryptionFromHex creates a new encryption service from a hex-encoded key.
func NewEncryptionFromHex(encodedKey string) (*Encryption, error) {
	if encodedKey == "" {
		return nil, fmt.Errorf("encryption key cannot be empty")
	}

	key, err := hex.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex key: %w", err)
	}

	return NewEncryption(key)
}

// GenerateKey generates a new random 32-byte encryption key.
// Returns the key as a hex-encoded string for easy storage in environment
// variables.
func GenerateKey() (string, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("failed to generate random key: %w", err)
	}

	return hex.EncodeToString(key), nil
}

// Encrypt encrypts plaintext under AES-256-CBC and returns the ciphertext
// as a hex string.
func (e *Encryption) Encrypt(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, e.key[:aes.BlockSize]).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(ciphertext), nil
}

// Decrypt decrypts a hex-encoded ciphertext. It fails with ErrDecryption when
// the envelope was produced with a different key or is truncated/corrupted.
func (e *Encryption) Decrypt(ciphertextHex string) ([]byte, error) {
	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return nil, fmt.Errorf("%w: not valid hex: %v", ErrDecryption, err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a positive multiple of the block size", ErrDecryption, len(ciphertext))
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, e.key[:aes.BlockSize]).CryptBlocks(plaintext, ciphertext)

	plaintext, err = pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	return plaintext, nil
}

// EncryptRecord serializes a log record to JSON and encrypts it into an
// envelope string.
func (e *Encryption) EncryptRecord(rec *models.LogRecord) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	return e.Encrypt(data)
}

// DecryptRecord decrypts an envelope string back into a log record.
func (e *Encryption) DecryptRecord(envelope string) (*models.LogRecord, error) {
	plaintext, err := e.Decrypt(envelope)
	if err != nil {
		return nil, err
	}

	var rec models.LogRecord
	if err := json.Unmarshal(plaintext, &rec); err != nil {
		return nil, fmt.Errorf("%w: plaintext is not a record: %v", ErrDecryption, err)
	}

	return &rec, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}

	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", padding)
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}

	return data[:len(data)-padding], nil
}
