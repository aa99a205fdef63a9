package service

import (
	"context"
	"encoding/json"
	"fmt"

	"bullionbook/internal/core/domain"
	"bullionbook/internal/core/ports"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger { return zerolog.Nop() }

// In-memory fakes over the small port interfaces, shared by the export,
// merge and scheduler tests.

type fakeSecureStore struct {
	values map[string]string
}

func newFakeSecureStore() *fakeSecureStore {
	return &fakeSecureStore{values: map[string]string{}}
}

func (s *fakeSecureStore) Get(name string) (string, error) { return s.values[name], nil }
func (s *fakeSecureStore) Set(name, value string) error    { s.values[name] = value; return nil }

type fakeCustomerRepo struct {
	customers map[string]domain.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: map[string]domain.Customer{}}
}

func (r *fakeCustomerRepo) GetAll(context.Context) ([]domain.Customer, error) {
	out := make([]domain.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *fakeCustomerRepo) Save(_ context.Context, c *domain.Customer) error {
	r.customers[c.ID] = *c
	return nil
}

type fakeTransactionRepo struct {
	transactions map[string]domain.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: map[string]domain.Transaction{}}
}

func (r *fakeTransactionRepo) GetAll(context.Context) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, 0, len(r.transactions))
	for _, t := range r.transactions {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTransactionRepo) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	t, ok := r.transactions[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *fakeTransactionRepo) GetBySource(_ context.Context, sourceID, deviceID string) (*domain.Transaction, error) {
	for _, t := range r.transactions {
		if t.SourceID == sourceID && t.DeviceID == deviceID {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

func (r *fakeTransactionRepo) Save(_ context.Context, t *domain.Transaction) error {
	r.transactions[t.ID] = *t
	return nil
}

type fakeLedgerRepo struct {
	entries map[string]domain.LedgerEntry
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{entries: map[string]domain.LedgerEntry{}}
}

func (r *fakeLedgerRepo) GetAll(context.Context) ([]domain.LedgerEntry, error) {
	out := make([]domain.LedgerEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeLedgerRepo) GetByID(_ context.Context, id string) (*domain.LedgerEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *fakeLedgerRepo) Save(_ context.Context, e *domain.LedgerEntry) error {
	r.entries[e.ID] = *e
	return nil
}

type fakeStockRepo struct {
	items map[string]domain.StockItem
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{items: map[string]domain.StockItem{}}
}

func (r *fakeStockRepo) GetAll(context.Context) ([]domain.StockItem, error) {
	out := make([]domain.StockItem, 0, len(r.items))
	for _, s := range r.items {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeStockRepo) GetByID(_ context.Context, stockID string) (*domain.StockItem, error) {
	s, ok := r.items[stockID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *fakeStockRepo) Save(_ context.Context, s *domain.StockItem) error {
	r.items[s.StockID] = *s
	return nil
}

type fakeInventoryRepo struct {
	inv domain.BaseInventory
}

func (r *fakeInventoryRepo) Get(context.Context) (*domain.BaseInventory, error) {
	inv := r.inv
	return &inv, nil
}

func (r *fakeInventoryRepo) Save(_ context.Context, inv *domain.BaseInventory) error {
	r.inv = *inv
	return nil
}

// fakeObjectStore hashes with the real canonicalizer and hash service but
// keeps blobs in memory.
type fakeObjectStore struct {
	canon    *CanonicalService
	hash     *SHA3HashService
	blobs    map[string][]byte
	manifest map[string]struct{}
	snapshot []byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		canon:    NewCanonicalService(),
		hash:     NewSHA3HashService(),
		blobs:    map[string][]byte{},
		manifest: map[string]struct{}{},
	}
}

func (s *fakeObjectStore) SaveObject(v any) (string, error) {
	cb, err := s.canon.Canonicalize(v)
	if err != nil {
		return "", err
	}
	h := s.hash.Digest(cb)
	if _, ok := s.blobs[h]; !ok {
		b, _ := json.Marshal(v)
		s.blobs[h] = b
	}
	s.manifest[h] = struct{}{}
	return h, nil
}

func (s *fakeObjectStore) GetObject(hash string, out any) error {
	b, ok := s.blobs[hash]
	if !ok {
		return fmt.Errorf("missing %s", hash)
	}
	return json.Unmarshal(b, out)
}

func (s *fakeObjectStore) SaveSnapshot(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.snapshot = b
	return nil
}

func (s *fakeObjectStore) GetSnapshot(out any) (bool, error) {
	if s.snapshot == nil {
		return false, nil
	}
	return true, json.Unmarshal(s.snapshot, out)
}

func (s *fakeObjectStore) LiveHashes() map[string]struct{} {
	out := map[string]struct{}{}
	for h := range s.manifest {
		out[h] = struct{}{}
	}
	return out
}

func (s *fakeObjectStore) SetLive(hashes map[string]struct{}) error {
	s.manifest = map[string]struct{}{}
	for h := range hashes {
		s.manifest[h] = struct{}{}
	}
	return nil
}

func (s *fakeObjectStore) CleanupOrphanedObjects(active map[string]struct{}) int {
	deleted := 0
	for h := range s.blobs {
		if _, ok := active[h]; !ok {
			delete(s.blobs, h)
			deleted++
		}
	}
	return deleted
}

// fakeLocation is an in-memory BackupLocation.
type fakeLocation struct {
	granted bool
	files   map[string][]byte
	logs    []string
	writes  []string
}

func newFakeLocation(granted bool) *fakeLocation {
	return &fakeLocation{granted: granted, files: map[string][]byte{}}
}

func (l *fakeLocation) Grant(context.Context) error { l.granted = true; return nil }
func (l *fakeLocation) Granted() bool               { return l.granted }

func (l *fakeLocation) Write(_ context.Context, name string, data []byte) error {
	delete(l.files, name)
	l.files[name] = data
	l.writes = append(l.writes, name)
	return nil
}

func (l *fakeLocation) Remove(_ context.Context, name string) error {
	delete(l.files, name)
	return nil
}

func (l *fakeLocation) AppendLog(line string) { l.logs = append(l.logs, line) }

// fixedResolver answers every inventory conflict the same way.
type fixedResolver bool

func (r fixedResolver) AcceptInventory(domain.BaseInventory, domain.InventorySnapshot) bool {
	return bool(r)
}

// fakeExporter records scheduler-triggered exports.
type fakeExporter struct {
	calls int
	err   error
}

func (e *fakeExporter) Export(context.Context, ports.ExportOptions) (*ports.ExportResult, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return &ports.ExportResult{FileName: AutoBackupFileName, RecordCount: 1}, nil
}
