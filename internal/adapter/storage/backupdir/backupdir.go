// Package backupdir adapts an operator-designated directory to the
// BackupLocation port. The one-time grant is cached in the secure store so
// later runs, including unattended ones, skip the handshake.
package backupdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bullionbook/internal/core/ports"
	"bullionbook/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	grantName   = "backup_dir_granted"
	logFileName = "backup.log"
)

// Location implements ports.BackupLocation on a local directory.
type Location struct {
	dir   string
	store ports.SecureStore
	log   zerolog.Logger
}

// New creates a Location for dir. The directory is not touched until
// Grant.
func New(dir string, store ports.SecureStore, log zerolog.Logger) *Location {
	return &Location{dir: dir, store: store, log: log}
}

// Grant performs the one-time permission handshake: create the directory,
// probe writability, cache the grant.
func (l *Location) Grant(_ context.Context) error {
	if l.dir == "" {
		return apperror.ErrPermissionDenied()
	}
	if err := os.MkdirAll(l.dir, 0o700); err != nil {
		return apperror.Wrap("SEC_001", apperror.KindPermissionDenied, "Backup location not granted", err)
	}
	probe := filepath.Join(l.dir, ".grant")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return apperror.Wrap("SEC_001", apperror.KindPermissionDenied, "Backup location not granted", err)
	}
	_ = os.Remove(probe)
	if err := l.store.Set(grantName, l.dir); err != nil {
		return apperror.ErrIOFailure(err)
	}
	return nil
}

// Granted reports whether this exact directory was previously granted.
func (l *Location) Granted() bool {
	v, err := l.store.Get(grantName)
	return err == nil && v != "" && v == l.dir
}

// Write replaces any prior file of the same name: delete first, then
// create, so two files for the same slot never coexist. A crash between
// the two leaves no file, which readers treat as absent, not corrupt.
func (l *Location) Write(ctx context.Context, name string, data []byte) error {
	if !l.Granted() {
		return apperror.ErrPermissionDenied()
	}
	if err := l.Remove(ctx, name); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(l.dir, name), data, 0o600); err != nil {
		return apperror.ErrIOFailure(err)
	}
	return nil
}

// Remove deletes the named file; a missing file is not an error.
func (l *Location) Remove(_ context.Context, name string) error {
	err := os.Remove(filepath.Join(l.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return apperror.ErrIOFailure(err)
	}
	return nil
}

// AppendLog appends one timestamped line to the append-only failure log.
// Best-effort: logging must never fail a backup flow.
func (l *Location) AppendLog(line string) {
	if l.dir == "" {
		return
	}
	f, err := os.OpenFile(filepath.Join(l.dir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		l.log.Debug().Err(err).Msg("backup log unavailable")
		return
	}
	defer f.Close()
	_, _ = fmt.Fprintf(f, "%s %s\n", time.Now().UTC().Format(time.RFC3339), line)
}
