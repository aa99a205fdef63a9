package service

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// SHA3HashService implements ports.HashService with SHA3-256. Pure
// function: the same input always yields the same 64-character hex digest.
type SHA3HashService struct{}

// NewSHA3HashService creates a new SHA3HashService.
func NewSHA3HashService() *SHA3HashService {
	return &SHA3HashService{}
}

// Digest computes the SHA3-256 digest of b, lowercase hex encoded.
func (s *SHA3HashService) Digest(b []byte) string {
	sum := sha3.Sum256(b)
	return hex.EncodeToString(sum[:])
}
