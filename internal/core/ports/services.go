package ports

import (
	"context"
	"time"

	"bullionbook/internal/core/domain"
)

// Canonicalizer produces deterministic bytes for structurally equal values,
// used exclusively as hash input, never as the stored representation.
type Canonicalizer interface {
	Canonicalize(v any) ([]byte, error)
}

// HashService computes a collision-resistant digest of canonical bytes.
type HashService interface {
	Digest(b []byte) string
}

// EncryptionService is authenticated symmetric encryption. Decrypt fails
// with an integrity error on tag mismatch or wrong key; it never returns
// partially-decrypted data.
type EncryptionService interface {
	Encrypt(plaintext, key []byte) ([]byte, error)
	Decrypt(ciphertext, key []byte) ([]byte, error)
}

// SecureStore is a small key-value store for secrets and device identity.
// Get returns ("", nil) when the name is unset.
type SecureStore interface {
	Get(name string) (string, error)
	Set(name, value string) error
}

// KeyService provisions and serves the two independent key boundaries:
// the device-local object key (never transmitted) and the export key the
// operator manages.
type KeyService interface {
	DeviceID() (string, error)
	ObjectKey() ([]byte, error)
	// ExportKey returns the provisioned export key, or a KeyMissing error.
	ExportKey() ([]byte, error)
	SetExportPassphrase(passphrase string) error
	HasExportKey() bool
}

// ObjectStore is hash-addressed encrypted blob storage with a manifest of
// live hashes and one mutable snapshot slot. Callers must serialize
// SaveObject/SetLive/CleanupOrphanedObjects against each other.
type ObjectStore interface {
	// SaveObject canonicalizes, hashes and persists v, skipping the write
	// when the hash already exists. It always returns the hash.
	SaveObject(v any) (string, error)
	GetObject(hash string, out any) error
	SaveSnapshot(v any) error
	// GetSnapshot reports false when no snapshot was ever saved.
	GetSnapshot(out any) (bool, error)
	LiveHashes() map[string]struct{}
	// SetLive rewrites the manifest to exactly the given set.
	SetLive(hashes map[string]struct{}) error
	// CleanupOrphanedObjects deletes every blob outside active. The active
	// set must be complete and current; the caller owns that burden.
	// Failures are swallowed and reported as fewer deletions.
	CleanupOrphanedObjects(active map[string]struct{}) int
}

// BackupLocation is an operator-designated external destination. Grant
// performs the one-time permission/location handshake; the grant is cached
// for subsequent runs.
type BackupLocation interface {
	Grant(ctx context.Context) error
	Granted() bool
	// Write replaces any prior file of the same name, delete-then-create.
	Write(ctx context.Context, name string, data []byte) error
	Remove(ctx context.Context, name string) error
	// AppendLog appends one line to the append-only failure log,
	// best-effort: it never returns an error.
	AppendLog(line string)
}

// ConflictResolver decides merge conflicts that need an explicit operator
// call, currently only diverging base inventory.
type ConflictResolver interface {
	// AcceptInventory returns true to overwrite local values with the
	// incoming snapshot, false to leave them untouched.
	AcceptInventory(local domain.BaseInventory, incoming domain.InventorySnapshot) bool
}

// --- Service Ports (Business Logic) ---

// ExportOptions selects what an export covers.
type ExportOptions struct {
	Kind domain.ExportKind
	// Since restricts the export to activity at or after this time. A
	// since-filtered export never includes the base inventory.
	Since *time.Time
}

// ExportResult reports a completed export.
type ExportResult struct {
	FileName       string
	RecordCount    int
	CleanedObjects int
}

// BackupExporter packages, encrypts and writes a domain snapshot.
type BackupExporter interface {
	Export(ctx context.Context, opts ExportOptions) (*ExportResult, error)
}

// ImportState tracks the import state machine.
type ImportState string

const (
	ImportIdle       ImportState = "IDLE"
	ImportReading    ImportState = "READING"
	ImportDecrypting ImportState = "DECRYPTING"
	ImportParsing    ImportState = "PARSING"
	ImportMerging    ImportState = "MERGING"
	ImportDone       ImportState = "DONE"
	ImportFailed     ImportState = "FAILED"
)

// MergeResult reports what an import applied. On failure, State is
// ImportFailed and the accompanying error carries the taxonomy kind;
// counters reflect the steps that committed before the failure.
type MergeResult struct {
	State                ImportState
	CustomersAdded       int
	CustomersUpdated     int
	TransactionsApplied  int
	TransactionsRenamed  int
	LedgerRecreated      int
	StockRestored        int
	InventoryApplied     bool
	InventoryDeclined    bool
	InventoryConflictMet bool
}

// BackupImporter decrypts, unpacks and merges an incoming bundle.
type BackupImporter interface {
	ImportFile(ctx context.Context, path string, resolver ConflictResolver) (*MergeResult, error)
	Import(ctx context.Context, data []byte, resolver ConflictResolver) (*MergeResult, error)
}

// SchedulerResult reports one scheduler tick. A closed gate is a no-op
// with Skipped set, never an error.
type SchedulerResult struct {
	Ran     bool
	Skipped string // reason when !Ran and no attempt was made
	Result  *ExportResult
	Err     error // export failure; next eligible tick retries
}

// BackupScheduler time-gates unattended exports.
type BackupScheduler interface {
	RunIfDue(ctx context.Context) SchedulerResult
}
