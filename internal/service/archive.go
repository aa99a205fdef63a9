package service

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"

	"bullionbook/internal/core/domain"
	"bullionbook/pkg/apperror"
)

// packArchive serializes the bundle as the single logical document of the
// export container and gzip-compresses it. Encryption of the whole
// container happens one layer up, keyed by the export key.
func packArchive(bundle *domain.BackupBundle) ([]byte, error) {
	doc, err := json.Marshal(bundle)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshaling bundle: %w", err))
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(doc); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("compressing bundle: %w", err))
	}
	if err := zw.Close(); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("flushing archive: %w", err))
	}
	return buf.Bytes(), nil
}

// unpackArchive decompresses and parses a decrypted export container.
// Truncated or non-archive input fails closed as MalformedArchive.
func unpackArchive(data []byte) (*domain.BackupBundle, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperror.ErrMalformedArchive(err)
	}
	defer zr.Close()

	var bundle domain.BackupBundle
	dec := json.NewDecoder(zr)
	if err := dec.Decode(&bundle); err != nil {
		return nil, apperror.ErrMalformedArchive(err)
	}
	if bundle.DeviceID == "" {
		return nil, apperror.ErrMalformedArchive(fmt.Errorf("bundle missing device id"))
	}
	return &bundle, nil
}
