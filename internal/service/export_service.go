package service

import (
	"context"
	"fmt"
	"time"

	"bullionbook/internal/core/domain"
	"bullionbook/internal/core/ports"
	"bullionbook/pkg/apperror"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// AutoBackupFileName is the single rolling slot the scheduler overwrites.
const AutoBackupFileName = "autobackup.encrypted"

const exportDateLayout = "2006-01-02"

// ExportServiceImpl implements ports.BackupExporter. One Export call is a
// single logical unit; callers must not run it concurrently with an import
// or with garbage collection.
type ExportServiceImpl struct {
	customers    ports.CustomerRepository
	transactions ports.TransactionRepository
	ledger       ports.LedgerRepository
	stock        ports.StockRepository
	inventory    ports.InventoryRepository
	objects      ports.ObjectStore
	enc          ports.EncryptionService
	keys         ports.KeyService
	location     ports.BackupLocation
	log          zerolog.Logger
	now          func() time.Time
}

// NewExportService creates a new ExportServiceImpl.
func NewExportService(
	customers ports.CustomerRepository,
	transactions ports.TransactionRepository,
	ledger ports.LedgerRepository,
	stock ports.StockRepository,
	inventory ports.InventoryRepository,
	objects ports.ObjectStore,
	enc ports.EncryptionService,
	keys ports.KeyService,
	location ports.BackupLocation,
	log zerolog.Logger,
) *ExportServiceImpl {
	return &ExportServiceImpl{
		customers:    customers,
		transactions: transactions,
		ledger:       ledger,
		stock:        stock,
		inventory:    inventory,
		objects:      objects,
		enc:          enc,
		keys:         keys,
		location:     location,
		log:          log,
		now:          time.Now,
	}
}

// Export collects a domain snapshot, packages and encrypts it, and writes
// it to the granted location. Failures come back as taxonomy errors and
// are also appended to the external failure log when a location exists.
func (s *ExportServiceImpl) Export(ctx context.Context, opts ports.ExportOptions) (*ports.ExportResult, error) {
	res, err := s.export(ctx, opts)
	if err != nil {
		s.log.Error().Str("kind", string(apperror.KindOf(err))).Msg("export failed")
		s.location.AppendLog(fmt.Sprintf("export failed: %s", apperror.KindOf(err)))
		return nil, err
	}
	s.log.Info().
		Str("file", res.FileName).
		Int("records", res.RecordCount).
		Msg("export completed")
	return res, nil
}

func (s *ExportServiceImpl) export(ctx context.Context, opts ports.ExportOptions) (*ports.ExportResult, error) {
	exportKey, err := s.keys.ExportKey()
	if err != nil {
		return nil, err
	}
	if !s.location.Granted() {
		// First invocation: one-time grant, cached afterwards.
		if err := s.location.Grant(ctx); err != nil {
			return nil, err
		}
	}
	deviceID, err := s.keys.DeviceID()
	if err != nil {
		return nil, err
	}

	bundle, err := s.collect(ctx, opts, deviceID)
	if err != nil {
		return nil, err
	}

	// Dedup every record into the object store. Soft-fail: the store is a
	// local redundancy layer, never a reason to abort the export itself.
	active := make(map[string]struct{})
	dedupOK := true
	save := func(v any) {
		h, err := s.objects.SaveObject(v)
		if err != nil {
			dedupOK = false
			s.log.Warn().Err(err).Msg("object dedup write failed")
			return
		}
		active[h] = struct{}{}
	}
	for i := range bundle.Records.Customers {
		save(bundle.Records.Customers[i])
	}
	for i := range bundle.Records.Transactions {
		save(bundle.Records.Transactions[i])
	}
	for i := range bundle.Records.Ledger {
		save(bundle.Records.Ledger[i])
	}
	for i := range bundle.Records.Stock {
		save(bundle.Records.Stock[i])
	}

	cleaned := 0
	if opts.Since == nil && dedupOK {
		// A full export defines the complete live set: rewrite the
		// manifest to exactly these hashes, refresh the snapshot slot and
		// collect orphans. GC is maintenance; its failures surface as
		// zero deletions.
		if err := s.objects.SetLive(active); err != nil {
			s.log.Warn().Err(err).Msg("manifest rewrite failed, skipping gc")
		} else {
			if err := s.objects.SaveSnapshot(bundle); err != nil {
				s.log.Warn().Err(err).Msg("snapshot save failed")
			}
			cleaned = s.objects.CleanupOrphanedObjects(active)
		}
	}

	archive, err := packArchive(bundle)
	if err != nil {
		return nil, err
	}
	sealed, err := s.enc.Encrypt(archive, exportKey)
	if err != nil {
		return nil, err
	}

	name := exportFileName(opts, s.now())
	if err := s.location.Write(ctx, name, sealed); err != nil {
		return nil, err
	}

	return &ports.ExportResult{
		FileName:       name,
		RecordCount:    bundle.RecordCount,
		CleanedObjects: cleaned,
	}, nil
}

// collect fetches the five independent record sets concurrently; they are
// read-only with no ordering requirement among them.
func (s *ExportServiceImpl) collect(ctx context.Context, opts ports.ExportOptions, deviceID string) (*domain.BackupBundle, error) {
	var (
		customers []domain.Customer
		txs       []domain.Transaction
		ledger    []domain.LedgerEntry
		stock     []domain.StockItem
		inv       *domain.BaseInventory
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		customers, err = s.customers.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		txs, err = s.transactions.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		ledger, err = s.ledger.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		stock, err = s.stock.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		inv, err = s.inventory.Get(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.ErrIOFailure(fmt.Errorf("collecting records: %w", err))
	}

	records := domain.BundleRecords{
		Customers:    customers,
		Transactions: txs,
		Ledger:       ledger,
		Stock:        stock, // always full, so sell-entry stock references resolve
	}
	if opts.Since != nil {
		sinceMs := opts.Since.UnixMilli()
		records.Customers = filterCustomers(customers, sinceMs)
		records.Transactions = filterTransactions(txs, sinceMs)
		records.Ledger = filterLedger(ledger, sinceMs)
		// Inventory stays out of partial exports entirely.
	} else {
		records.BaseInventory = domain.SnapshotOfInventory(*inv)
	}

	bundle := &domain.BackupBundle{
		ExportType: opts.Kind,
		Timestamp:  s.now().UnixMilli(),
		DeviceID:   deviceID,
		Records:    records,
	}
	bundle.RecordCount = bundle.CountRecords()
	return bundle, nil
}

func filterCustomers(in []domain.Customer, sinceMs int64) []domain.Customer {
	out := make([]domain.Customer, 0, len(in))
	for _, c := range in {
		if c.LastActivityAt >= sinceMs {
			out = append(out, c)
		}
	}
	return out
}

func filterTransactions(in []domain.Transaction, sinceMs int64) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(in))
	for _, t := range in {
		if t.UpdatedAt >= sinceMs {
			out = append(out, t)
		}
	}
	return out
}

func filterLedger(in []domain.LedgerEntry, sinceMs int64) []domain.LedgerEntry {
	out := make([]domain.LedgerEntry, 0, len(in))
	for _, e := range in {
		if e.Date >= sinceMs {
			out = append(out, e)
		}
	}
	return out
}

func exportFileName(opts ports.ExportOptions, now time.Time) string {
	if opts.Kind == domain.ExportAuto {
		return AutoBackupFileName
	}
	date := now.Format(exportDateLayout)
	if opts.Since != nil {
		return fmt.Sprintf("export_%s.encrypted", date)
	}
	return fmt.Sprintf("export_all_%s.encrypted", date)
}
