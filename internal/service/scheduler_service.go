package service

import (
	"context"
	"strconv"
	"time"

	"bullionbook/internal/core/domain"
	"bullionbook/internal/core/ports"

	"github.com/rs/zerolog"
)

const nameLastAutoBackup = "last_auto_backup_ms"

// SchedulerServiceImpl implements ports.BackupScheduler: at most one
// unattended export per rolling window, gated on key presence, the enabled
// flag and a granted destination. The eligibility clock uses the last
// successful backup, so a failed run retries at the next eligible tick
// instead of waiting out a full window.
type SchedulerServiceImpl struct {
	exporter ports.BackupExporter
	keys     ports.KeyService
	location ports.BackupLocation
	store    ports.SecureStore
	enabled  bool
	interval time.Duration
	clock    func() time.Time
	log      zerolog.Logger
}

// NewSchedulerService creates a new SchedulerServiceImpl. interval <= 0
// defaults to 24h.
func NewSchedulerService(
	exporter ports.BackupExporter,
	keys ports.KeyService,
	location ports.BackupLocation,
	store ports.SecureStore,
	enabled bool,
	interval time.Duration,
	log zerolog.Logger,
) *SchedulerServiceImpl {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &SchedulerServiceImpl{
		exporter: exporter,
		keys:     keys,
		location: location,
		store:    store,
		enabled:  enabled,
		interval: interval,
		clock:    time.Now,
		log:      log,
	}
}

// RunIfDue exports the rolling auto backup when every gate is open. A
// closed gate is a no-op result, never an error.
func (s *SchedulerServiceImpl) RunIfDue(ctx context.Context) ports.SchedulerResult {
	if !s.enabled {
		return ports.SchedulerResult{Skipped: "auto backup disabled"}
	}
	if !s.keys.HasExportKey() {
		return ports.SchedulerResult{Skipped: "export key not set"}
	}
	if !s.location.Granted() {
		return ports.SchedulerResult{Skipped: "backup location not granted"}
	}
	if last, ok := s.lastSuccess(); ok && s.clock().Sub(last) < s.interval {
		return ports.SchedulerResult{Skipped: "not due"}
	}

	res, err := s.exporter.Export(ctx, ports.ExportOptions{Kind: domain.ExportAuto})
	if err != nil {
		// Last-success stays put; the next eligible tick retries.
		s.log.Warn().Str("reason", err.Error()).Msg("scheduled backup failed")
		return ports.SchedulerResult{Ran: true, Err: err}
	}

	now := s.clock().UnixMilli()
	if err := s.store.Set(nameLastAutoBackup, strconv.FormatInt(now, 10)); err != nil {
		s.log.Warn().Err(err).Msg("persisting last backup time failed")
	}
	return ports.SchedulerResult{Ran: true, Result: res}
}

func (s *SchedulerServiceImpl) lastSuccess() (time.Time, bool) {
	v, err := s.store.Get(nameLastAutoBackup)
	if err != nil || v == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
