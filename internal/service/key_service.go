package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"bullionbook/internal/core/ports"
	"bullionbook/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/argon2"
)

// Secure-store entry names. The object key and export key are independent
// trust boundaries: the object key never leaves the device, the export key
// is derived from a passphrase the operator manages.
const (
	nameDeviceID   = "device_id"
	nameObjectKey  = "object_key"
	nameExportSalt = "export_salt"
	nameExportKey  = "export_key"
)

// Argon2id parameters for export key derivation.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64MB
	argon2Threads = 4
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

// KeyServiceImpl implements ports.KeyService on a SecureStore.
type KeyServiceImpl struct {
	store ports.SecureStore
	log   zerolog.Logger
}

// NewKeyService creates a new KeyServiceImpl.
func NewKeyService(store ports.SecureStore, log zerolog.Logger) *KeyServiceImpl {
	return &KeyServiceImpl{store: store, log: log}
}

// DeviceID returns the stable device identifier, minting one on first use.
func (s *KeyServiceImpl) DeviceID() (string, error) {
	id, err := s.store.Get(nameDeviceID)
	if err != nil {
		return "", apperror.ErrIOFailure(err)
	}
	if id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := s.store.Set(nameDeviceID, id); err != nil {
		return "", apperror.ErrIOFailure(err)
	}
	s.log.Info().Str("device_id", id).Msg("device identity provisioned")
	return id, nil
}

// ObjectKey returns the device-local object-at-rest key, generating a
// random one on first use. It is never transmitted or exported.
func (s *KeyServiceImpl) ObjectKey() ([]byte, error) {
	return s.loadOrCreateKey(nameObjectKey)
}

// SetExportPassphrase derives the export key from the operator passphrase
// with Argon2id and a per-device random salt, and stores it so unattended
// backups can run without re-entry.
func (s *KeyServiceImpl) SetExportPassphrase(passphrase string) error {
	if passphrase == "" {
		return apperror.ErrKeyMissing()
	}
	salt, err := s.loadOrCreateSalt()
	if err != nil {
		return err
	}
	key := argon2.IDKey([]byte(passphrase), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	if err := s.store.Set(nameExportKey, hex.EncodeToString(key)); err != nil {
		return apperror.ErrIOFailure(err)
	}
	s.log.Info().Msg("export key provisioned")
	return nil
}

// ExportKey returns the provisioned export key or a KeyMissing error.
func (s *KeyServiceImpl) ExportKey() ([]byte, error) {
	enc, err := s.store.Get(nameExportKey)
	if err != nil {
		return nil, apperror.ErrIOFailure(err)
	}
	if enc == "" {
		return nil, apperror.ErrKeyMissing()
	}
	key, err := hex.DecodeString(enc)
	if err != nil || len(key) != argon2KeyLen {
		return nil, apperror.ErrIntegrity(fmt.Errorf("stored export key malformed"))
	}
	return key, nil
}

// HasExportKey reports whether an export key is provisioned.
func (s *KeyServiceImpl) HasExportKey() bool {
	enc, err := s.store.Get(nameExportKey)
	return err == nil && enc != ""
}

func (s *KeyServiceImpl) loadOrCreateKey(name string) ([]byte, error) {
	enc, err := s.store.Get(name)
	if err != nil {
		return nil, apperror.ErrIOFailure(err)
	}
	if enc != "" {
		key, err := hex.DecodeString(enc)
		if err != nil || len(key) != argon2KeyLen {
			return nil, apperror.ErrIntegrity(fmt.Errorf("stored key %s malformed", name))
		}
		return key, nil
	}
	key := make([]byte, argon2KeyLen)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generating key: %w", err))
	}
	if err := s.store.Set(name, hex.EncodeToString(key)); err != nil {
		return nil, apperror.ErrIOFailure(err)
	}
	return key, nil
}

func (s *KeyServiceImpl) loadOrCreateSalt() ([]byte, error) {
	enc, err := s.store.Get(nameExportSalt)
	if err != nil {
		return nil, apperror.ErrIOFailure(err)
	}
	if enc != "" {
		salt, err := hex.DecodeString(enc)
		if err != nil || len(salt) != argon2SaltLen {
			return nil, apperror.ErrIntegrity(fmt.Errorf("stored salt malformed"))
		}
		return salt, nil
	}
	salt := make([]byte, argon2SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generating salt: %w", err))
	}
	if err := s.store.Set(nameExportSalt, hex.EncodeToString(salt)); err != nil {
		return nil, apperror.ErrIOFailure(err)
	}
	return salt, nil
}
