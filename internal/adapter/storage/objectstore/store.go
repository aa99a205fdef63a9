// Package objectstore is hash-addressed encrypted blob storage: one blob
// per content hash under objects/, a plaintext manifest of live hashes,
// and a single mutable encrypted snapshot slot. Blob contents are
// encrypted with the device-local object key; the manifest holds only
// hashes and stays plaintext.
package objectstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"bullionbook/internal/core/ports"
	"bullionbook/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	objectsDirName   = "objects"
	manifestFileName = "manifest.json"
	snapshotFileName = "snapshot.bin"
)

// Store implements ports.ObjectStore on a local directory. Export, import
// and garbage collection must be serialized by the caller; Store adds no
// internal locking.
type Store struct {
	root       string
	objectsDir string
	canon      ports.Canonicalizer
	hash       ports.HashService
	enc        ports.EncryptionService
	key        []byte
	manifest   map[string]struct{}
	log        zerolog.Logger
}

// Open loads (or initializes) the store rooted at dir.
func Open(dir string, canon ports.Canonicalizer, hash ports.HashService, enc ports.EncryptionService, objectKey []byte, log zerolog.Logger) (*Store, error) {
	objectsDir := filepath.Join(dir, objectsDirName)
	if err := os.MkdirAll(objectsDir, 0o700); err != nil {
		return nil, apperror.ErrIOFailure(fmt.Errorf("creating objects dir: %w", err))
	}
	s := &Store{
		root:       dir,
		objectsDir: objectsDir,
		canon:      canon,
		hash:       hash,
		enc:        enc,
		key:        objectKey,
		manifest:   make(map[string]struct{}),
		log:        log,
	}
	if err := s.loadManifest(); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveObject canonicalizes and hashes v, and persists the encrypted JSON
// form unless a blob with that hash already exists (write-once dedup).
// The hash is returned either way and recorded in the manifest.
func (s *Store) SaveObject(v any) (string, error) {
	canonical, err := s.canon.Canonicalize(v)
	if err != nil {
		return "", err
	}
	hash := s.hash.Digest(canonical)

	path := filepath.Join(s.objectsDir, hash)
	if _, err := os.Stat(path); err == nil {
		if _, ok := s.manifest[hash]; !ok {
			s.manifest[hash] = struct{}{}
			if err := s.persistManifest(); err != nil {
				return "", err
			}
		}
		return hash, nil
	}

	// The canonical form is hash input only; the stored representation is
	// plain JSON.
	plain, err := json.Marshal(v)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("marshaling object: %w", err))
	}
	sealed, err := s.enc.Encrypt(plain, s.key)
	if err != nil {
		return "", err
	}
	if err := writeAtomic(path, sealed); err != nil {
		return "", err
	}

	s.manifest[hash] = struct{}{}
	if err := s.persistManifest(); err != nil {
		return "", err
	}
	return hash, nil
}

// GetObject reads, decrypts and parses the blob for hash into out.
func (s *Store) GetObject(hash string, out any) error {
	sealed, err := os.ReadFile(filepath.Join(s.objectsDir, hash))
	if os.IsNotExist(err) {
		return apperror.ErrObjectNotFound(hash)
	}
	if err != nil {
		return apperror.ErrIOFailure(err)
	}
	plain, err := s.enc.Decrypt(sealed, s.key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plain, out); err != nil {
		return apperror.ErrStoreCorrupted(err)
	}
	return nil
}

// SaveSnapshot overwrites the single mutable encrypted snapshot slot.
// The slot is independent of the hash-addressed blobs.
func (s *Store) SaveSnapshot(v any) error {
	plain, err := json.Marshal(v)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("marshaling snapshot: %w", err))
	}
	sealed, err := s.enc.Encrypt(plain, s.key)
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.root, snapshotFileName), sealed)
}

// GetSnapshot loads the snapshot slot into out, reporting false when no
// snapshot was ever saved.
func (s *Store) GetSnapshot(out any) (bool, error) {
	sealed, err := os.ReadFile(filepath.Join(s.root, snapshotFileName))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, apperror.ErrIOFailure(err)
	}
	plain, err := s.enc.Decrypt(sealed, s.key)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(plain, out); err != nil {
		return false, apperror.ErrStoreCorrupted(err)
	}
	return true, nil
}

// LiveHashes returns a copy of the manifest.
func (s *Store) LiveHashes() map[string]struct{} {
	out := make(map[string]struct{}, len(s.manifest))
	for h := range s.manifest {
		out[h] = struct{}{}
	}
	return out
}

// SetLive rewrites the manifest to exactly the given set.
func (s *Store) SetLive(hashes map[string]struct{}) error {
	s.manifest = make(map[string]struct{}, len(hashes))
	for h := range hashes {
		s.manifest[h] = struct{}{}
	}
	return s.persistManifest()
}

// CleanupOrphanedObjects deletes every persisted blob whose hash is not in
// active and returns the count removed. Safe to repeat; an interrupted run
// leaves a superset of the required blobs. Per-file failures are logged
// and skipped so GC never aborts a broader backup flow.
func (s *Store) CleanupOrphanedObjects(active map[string]struct{}) int {
	entries, err := os.ReadDir(s.objectsDir)
	if err != nil {
		s.log.Warn().Err(err).Msg("gc: listing objects failed, reporting zero deleted")
		return 0
	}

	deleted := 0
	for _, e := range entries {
		name := e.Name()
		if _, ok := active[name]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(s.objectsDir, name)); err != nil {
			s.log.Warn().Err(err).Str("hash", name).Msg("gc: removing orphan failed")
			continue
		}
		delete(s.manifest, name)
		deleted++
	}
	if deleted > 0 {
		if err := s.persistManifest(); err != nil {
			s.log.Warn().Err(err).Msg("gc: persisting manifest failed")
		}
	}
	return deleted
}

func (s *Store) loadManifest() error {
	b, err := os.ReadFile(filepath.Join(s.root, manifestFileName))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return apperror.ErrIOFailure(err)
	}
	var hashes []string
	if err := json.Unmarshal(b, &hashes); err != nil {
		return apperror.ErrStoreCorrupted(err)
	}
	for _, h := range hashes {
		s.manifest[h] = struct{}{}
	}
	return nil
}

func (s *Store) persistManifest() error {
	hashes := make([]string, 0, len(s.manifest))
	for h := range s.manifest {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)
	b, err := json.Marshal(hashes)
	if err != nil {
		return apperror.InternalError(err)
	}
	return writeAtomic(filepath.Join(s.root, manifestFileName), b)
}

// writeAtomic writes via a temp file and rename so a crash mid-write never
// leaves a truncated file in place of a good one.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return apperror.ErrIOFailure(fmt.Errorf("writing %s: %w", filepath.Base(path), err))
	}
	if err := os.Rename(tmp, path); err != nil {
		return apperror.ErrIOFailure(fmt.Errorf("renaming %s: %w", filepath.Base(path), err))
	}
	return nil
}
