package service

import (
	"context"
	"fmt"
	"os"

	"bullionbook/internal/core/domain"
	"bullionbook/internal/core/ports"
	"bullionbook/pkg/apperror"

	"github.com/rs/zerolog"
)

// MergeServiceImpl implements ports.BackupImporter: a staged state machine
// that decrypts and parses before any merge step executes, then merges in
// a fixed dependency order. Every step is idempotent by key, so re-running
// the same import after a partial failure produces no duplicates.
type MergeServiceImpl struct {
	customers    ports.CustomerRepository
	transactions ports.TransactionRepository
	ledger       ports.LedgerRepository
	stock        ports.StockRepository
	inventory    ports.InventoryRepository
	enc          ports.EncryptionService
	keys         ports.KeyService
	location     ports.BackupLocation
	log          zerolog.Logger
}

// NewMergeService creates a new MergeServiceImpl.
func NewMergeService(
	customers ports.CustomerRepository,
	transactions ports.TransactionRepository,
	ledger ports.LedgerRepository,
	stock ports.StockRepository,
	inventory ports.InventoryRepository,
	enc ports.EncryptionService,
	keys ports.KeyService,
	location ports.BackupLocation,
	log zerolog.Logger,
) *MergeServiceImpl {
	return &MergeServiceImpl{
		customers:    customers,
		transactions: transactions,
		ledger:       ledger,
		stock:        stock,
		inventory:    inventory,
		enc:          enc,
		keys:         keys,
		location:     location,
		log:          log,
	}
}

// ImportFile reads the bundle file and imports it.
func (s *MergeServiceImpl) ImportFile(ctx context.Context, path string, resolver ports.ConflictResolver) (*ports.MergeResult, error) {
	res := &ports.MergeResult{State: ports.ImportReading}
	data, err := os.ReadFile(path)
	if err != nil {
		return s.fail(res, apperror.ErrIOFailure(err))
	}
	return s.importBytes(ctx, res, data, resolver)
}

// Import merges an already-read encrypted bundle.
func (s *MergeServiceImpl) Import(ctx context.Context, data []byte, resolver ports.ConflictResolver) (*ports.MergeResult, error) {
	return s.importBytes(ctx, &ports.MergeResult{State: ports.ImportReading}, data, resolver)
}

func (s *MergeServiceImpl) importBytes(ctx context.Context, res *ports.MergeResult, data []byte, resolver ports.ConflictResolver) (*ports.MergeResult, error) {
	res.State = ports.ImportDecrypting
	exportKey, err := s.keys.ExportKey()
	if err != nil {
		return s.fail(res, err)
	}
	plain, err := s.enc.Decrypt(data, exportKey)
	if err != nil {
		// Fail fast: nothing was merged, no partial damage from a bad file.
		return s.fail(res, err)
	}

	res.State = ports.ImportParsing
	bundle, err := unpackArchive(plain)
	if err != nil {
		return s.fail(res, err)
	}

	res.State = ports.ImportMerging
	if err := s.mergeCustomers(ctx, bundle, res); err != nil {
		return s.fail(res, err)
	}
	finalIDs, err := s.mergeTransactions(ctx, bundle, res)
	if err != nil {
		return s.fail(res, err)
	}
	if err := s.mergeLedger(ctx, bundle, finalIDs, res); err != nil {
		return s.fail(res, err)
	}
	if err := s.mergeInventory(ctx, bundle, resolver, res); err != nil {
		return s.fail(res, err)
	}
	if err := s.mergeStock(ctx, bundle, res); err != nil {
		return s.fail(res, err)
	}

	res.State = ports.ImportDone
	s.log.Info().
		Int("customers_added", res.CustomersAdded).
		Int("transactions_applied", res.TransactionsApplied).
		Int("transactions_renamed", res.TransactionsRenamed).
		Int("ledger_recreated", res.LedgerRecreated).
		Int("stock_restored", res.StockRestored).
		Msg("import completed")
	return res, nil
}

// mergeCustomers: keyed by id. Unseen ids insert; existing ids overwrite
// only when the incoming record's last activity is strictly newer —
// recency-based last-write-wins, not a field-count heuristic.
func (s *MergeServiceImpl) mergeCustomers(ctx context.Context, bundle *domain.BackupBundle, res *ports.MergeResult) error {
	for i := range bundle.Records.Customers {
		in := bundle.Records.Customers[i]
		local, err := s.customers.GetByID(ctx, in.ID)
		if err != nil {
			return apperror.ErrIOFailure(err)
		}
		switch {
		case local == nil:
			if err := s.customers.Save(ctx, &in); err != nil {
				return apperror.ErrIOFailure(err)
			}
			res.CustomersAdded++
		case in.LastActivityAt > local.LastActivityAt:
			if err := s.customers.Save(ctx, &in); err != nil {
				return apperror.ErrIOFailure(err)
			}
			res.CustomersUpdated++
		}
	}
	return nil
}

// mergeTransactions: keyed by (source id, origin device id). An id that
// collides locally under a different origin device is rewritten to a fresh
// synthetic id — two devices independently allocating the same counter id
// must never collapse into one record. Newly applied transactions replay
// the same side-effect path a live transaction takes.
//
// Returns the map from bundle transaction id to the id it carries locally,
// for ledger recreation.
func (s *MergeServiceImpl) mergeTransactions(ctx context.Context, bundle *domain.BackupBundle, res *ports.MergeResult) (map[string]string, error) {
	finalIDs := make(map[string]string, len(bundle.Records.Transactions))
	for i := range bundle.Records.Transactions {
		in := bundle.Records.Transactions[i]
		if in.SourceID == "" {
			in.SourceID = in.ID
		}
		if in.DeviceID == "" {
			in.DeviceID = bundle.DeviceID
		}

		existing, err := s.transactions.GetBySource(ctx, in.SourceID, in.DeviceID)
		if err != nil {
			return nil, apperror.ErrIOFailure(err)
		}
		if existing != nil {
			// Already merged on a previous run.
			finalIDs[bundle.Records.Transactions[i].ID] = existing.ID
			continue
		}

		colliding, err := s.transactions.GetByID(ctx, in.ID)
		if err != nil {
			return nil, apperror.ErrIOFailure(err)
		}
		if colliding != nil && colliding.DeviceID != in.DeviceID {
			in.ID = domain.SyntheticTransactionID(in.ID)
			res.TransactionsRenamed++
		}
		finalIDs[bundle.Records.Transactions[i].ID] = in.ID

		if err := s.applyTransaction(ctx, &in); err != nil {
			return nil, err
		}
		res.TransactionsApplied++
	}
	return finalIDs, nil
}

// applyTransaction persists the transaction with its entries and applies
// its balance side effects exactly once, the same path a live transaction
// takes. Cash settlement applies one signed money delta; metal settlement
// applies per-entry metal deltas and never touches the money balance.
func (s *MergeServiceImpl) applyTransaction(ctx context.Context, t *domain.Transaction) error {
	if err := s.transactions.Save(ctx, t); err != nil {
		return apperror.ErrIOFailure(err)
	}

	customer, err := s.customers.GetByID(ctx, t.CustomerID)
	if err != nil {
		return apperror.ErrIOFailure(err)
	}
	if customer == nil {
		// Customers merge first, so this means the bundle referenced a
		// customer it did not carry. Soft-fail: keep the transaction,
		// skip the delta.
		s.log.Warn().Str("customer_id", t.CustomerID).Msg("transaction for unknown customer, balance delta skipped")
		return nil
	}

	if t.IsMetalSettled() {
		for _, e := range t.Entries {
			if kind, delta, ok := e.MetalDelta(t.Settlement); ok {
				customer.ApplyMetalDelta(kind, delta)
			}
		}
	} else {
		customer.ApplyMoneyDelta(t.BalanceDelta())
	}
	if err := s.customers.Save(ctx, customer); err != nil {
		return apperror.ErrIOFailure(err)
	}
	return nil
}

// mergeLedger: entries absent locally are recreated by replaying their
// source transaction from the incoming batch, never inserted as opaque
// records, so every ledger entry stays derivable from its transaction.
func (s *MergeServiceImpl) mergeLedger(ctx context.Context, bundle *domain.BackupBundle, finalIDs map[string]string, res *ports.MergeResult) error {
	byID := make(map[string]domain.Transaction, len(bundle.Records.Transactions))
	for _, t := range bundle.Records.Transactions {
		byID[t.ID] = t
	}

	for _, in := range bundle.Records.Ledger {
		local, err := s.ledger.GetByID(ctx, in.ID)
		if err != nil {
			return apperror.ErrIOFailure(err)
		}
		if local != nil {
			continue
		}
		src, ok := byID[in.TransactionID]
		if !ok {
			s.log.Warn().Str("ledger_id", in.ID).Str("transaction_id", in.TransactionID).
				Msg("ledger entry without source transaction in bundle, skipped")
			continue
		}
		txID := finalIDs[in.TransactionID]
		if txID == "" {
			txID = in.TransactionID
		}
		entry := domain.RecreateLedgerEntry(in.ID, src, txID, in.Date)
		if err := s.ledger.Save(ctx, &entry); err != nil {
			return apperror.ErrIOFailure(err)
		}
		res.LedgerRecreated++
	}
	return nil
}

// mergeInventory: a differing base inventory is a conflict needing an
// explicit accept/decline decision. Declining leaves local values
// untouched; fields absent from a partial snapshot never touch their local
// counterparts.
func (s *MergeServiceImpl) mergeInventory(ctx context.Context, bundle *domain.BackupBundle, resolver ports.ConflictResolver, res *ports.MergeResult) error {
	snap := bundle.Records.BaseInventory
	if snap == nil {
		return nil
	}
	local, err := s.inventory.Get(ctx)
	if err != nil {
		return apperror.ErrIOFailure(err)
	}
	diff := snap.Diff(*local)
	if len(diff) == 0 {
		return nil
	}

	res.InventoryConflictMet = true
	if resolver == nil || !resolver.AcceptInventory(*local, *snap) {
		res.InventoryDeclined = true
		s.log.Info().Strs("fields", diff).Msg("inventory override declined, local values kept")
		return nil
	}
	snap.ApplyTo(local)
	if err := s.inventory.Save(ctx, local); err != nil {
		return apperror.ErrIOFailure(err)
	}
	res.InventoryApplied = true
	return nil
}

// mergeStock: items absent locally are restored under their original
// stock id, never reissued, so sell entries elsewhere keep resolving.
func (s *MergeServiceImpl) mergeStock(ctx context.Context, bundle *domain.BackupBundle, res *ports.MergeResult) error {
	for i := range bundle.Records.Stock {
		in := bundle.Records.Stock[i]
		local, err := s.stock.GetByID(ctx, in.StockID)
		if err != nil {
			return apperror.ErrIOFailure(err)
		}
		if local != nil {
			continue
		}
		if err := s.stock.Save(ctx, &in); err != nil {
			return apperror.ErrIOFailure(err)
		}
		res.StockRestored++
	}
	return nil
}

func (s *MergeServiceImpl) fail(res *ports.MergeResult, err error) (*ports.MergeResult, error) {
	res.State = ports.ImportFailed
	s.log.Error().Str("kind", string(apperror.KindOf(err))).Msg("import failed")
	s.location.AppendLog(fmt.Sprintf("import failed: %s", apperror.KindOf(err)))
	return res, err
}
