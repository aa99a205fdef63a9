package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error into the backup subsystem's failure taxonomy.
type Kind string

const (
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindKeyMissing       Kind = "KEY_MISSING"
	KindIntegrity        Kind = "INTEGRITY"
	KindNotFound         Kind = "NOT_FOUND"
	KindMalformedArchive Kind = "MALFORMED_ARCHIVE"
	KindMergeConflict    Kind = "MERGE_CONFLICT"
	KindIOFailure        Kind = "IO_FAILURE"
	KindInternal         Kind = "INTERNAL"
)

// AppError is a structured error carrying a stable code and a short,
// user-presentable message. Wrapped internal detail is never surfaced.
type AppError struct {
	Code    string `json:"error_code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"` // Wrapped internal error (not exposed to the operator)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, kind Kind, message string) *AppError {
	return &AppError{Code: code, Kind: kind, Message: message}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, kind Kind, message string, err error) *AppError {
	return &AppError{Code: code, Kind: kind, Message: message, Err: err}
}

// KindOf returns the taxonomy kind of err, or KindInternal for anything
// that is not an AppError.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// UserMessage returns the short operator-facing message for err.
func UserMessage(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Internal error"
}

// ---- Keys & Permissions (SEC) ----

func ErrPermissionDenied() *AppError {
	return New("SEC_001", KindPermissionDenied, "Backup location not granted")
}

func ErrKeyMissing() *AppError {
	return New("SEC_002", KindKeyMissing, "Backup key is not set")
}

// ErrIntegrity covers authentication-tag mismatches, wrong keys and
// truncated ciphertext. The message stays ambiguous between the causes.
func ErrIntegrity(err error) *AppError {
	return Wrap("SEC_003", KindIntegrity, "Invalid key or corrupted file", err)
}

// ---- Object store (STORE) ----

func ErrObjectNotFound(hash string) *AppError {
	return New("STORE_001", KindNotFound, fmt.Sprintf("Object %s not found", hash))
}

func ErrStoreCorrupted(err error) *AppError {
	return Wrap("STORE_002", KindIntegrity, "Stored object is corrupted", err)
}

// ---- Backup & merge (BKP) ----

func ErrMalformedArchive(err error) *AppError {
	return Wrap("BKP_001", KindMalformedArchive, "Backup file is not a valid archive", err)
}

func ErrMergeConflict(message string) *AppError {
	return New("BKP_002", KindMergeConflict, message)
}

// ---- System & Infrastructure (SYS) ----

func ErrIOFailure(err error) *AppError {
	return Wrap("SYS_001", KindIOFailure, "Filesystem operation failed", err)
}

// InternalError wraps an internal error as a SYS_002 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_002", KindInternal, "Internal error", err)
}
