package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"bullionbook/pkg/apperror"
)

// GCMEncryptionService implements ports.EncryptionService using
// AES-256-GCM. Output layout is nonce || ciphertext+tag. The same service
// serves both trust boundaries; callers supply the key, so the boundary is
// chosen by key provenance, not by code path. Keys never appear in errors.
type GCMEncryptionService struct{}

// NewGCMEncryptionService creates a new GCMEncryptionService.
func NewGCMEncryptionService() *GCMEncryptionService {
	return &GCMEncryptionService{}
}

// Encrypt encrypts plaintext under key with a fresh random nonce.
func (s *GCMEncryptionService) Encrypt(plaintext, key []byte) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generating nonce: %w", err))
	}

	return aesGCM.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt authenticates and decrypts ciphertext. Any tag mismatch, wrong
// key or truncation yields an integrity error; garbage plaintext is never
// returned.
func (s *GCMEncryptionService) Decrypt(ciphertext, key []byte) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonceSize := aesGCM.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, apperror.ErrIntegrity(fmt.Errorf("ciphertext shorter than nonce"))
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := aesGCM.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, apperror.ErrIntegrity(err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != 32 {
		return nil, apperror.InternalError(fmt.Errorf("AES key must be 32 bytes, got %d", len(key)))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("creating cipher: %w", err))
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("creating GCM: %w", err))
	}
	return aesGCM, nil
}
