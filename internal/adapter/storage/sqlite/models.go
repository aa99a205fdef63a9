package sqlite

import (
	"encoding/json"
	"fmt"

	"bullionbook/internal/core/domain"
)

type customerModel struct {
	ID             string `gorm:"primaryKey"`
	Name           string
	Balance        float64
	MetalBalances  string // JSON map of metal kind -> signed weight
	LastActivityAt int64
}

func (customerModel) TableName() string { return "customers" }

func customerToModel(c *domain.Customer) (*customerModel, error) {
	balances, err := json.Marshal(c.MetalBalances)
	if err != nil {
		return nil, fmt.Errorf("encoding metal balances: %w", err)
	}
	return &customerModel{
		ID:             c.ID,
		Name:           c.Name,
		Balance:        c.Balance,
		MetalBalances:  string(balances),
		LastActivityAt: c.LastActivityAt,
	}, nil
}

func (m *customerModel) toDomain() (*domain.Customer, error) {
	c := &domain.Customer{
		ID:             m.ID,
		Name:           m.Name,
		Balance:        m.Balance,
		MetalBalances:  make(domain.MetalBalances),
		LastActivityAt: m.LastActivityAt,
	}
	if m.MetalBalances != "" {
		if err := json.Unmarshal([]byte(m.MetalBalances), &c.MetalBalances); err != nil {
			return nil, fmt.Errorf("decoding metal balances: %w", err)
		}
	}
	return c, nil
}

type transactionModel struct {
	ID                 string `gorm:"primaryKey"`
	SourceID           string `gorm:"index:idx_tx_source,unique"`
	DeviceID           string `gorm:"index:idx_tx_source,unique"`
	CustomerID         string `gorm:"index"`
	Entries            string // JSON array of transaction entries
	Total              float64
	AmountPaid         float64
	PreviousAmountPaid float64
	Settlement         string
	CreatedAt          int64
	UpdatedAt          int64
}

func (transactionModel) TableName() string { return "transactions" }

func transactionToModel(t *domain.Transaction) (*transactionModel, error) {
	entries, err := json.Marshal(t.Entries)
	if err != nil {
		return nil, fmt.Errorf("encoding entries: %w", err)
	}
	return &transactionModel{
		ID:                 t.ID,
		SourceID:           t.SourceID,
		DeviceID:           t.DeviceID,
		CustomerID:         t.CustomerID,
		Entries:            string(entries),
		Total:              t.Total,
		AmountPaid:         t.AmountPaid,
		PreviousAmountPaid: t.PreviousAmountPaid,
		Settlement:         string(t.Settlement),
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}, nil
}

func (m *transactionModel) toDomain() (*domain.Transaction, error) {
	t := &domain.Transaction{
		ID:                 m.ID,
		SourceID:           m.SourceID,
		DeviceID:           m.DeviceID,
		CustomerID:         m.CustomerID,
		Total:              m.Total,
		AmountPaid:         m.AmountPaid,
		PreviousAmountPaid: m.PreviousAmountPaid,
		Settlement:         domain.SettlementType(m.Settlement),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.Entries != "" {
		if err := json.Unmarshal([]byte(m.Entries), &t.Entries); err != nil {
			return nil, fmt.Errorf("decoding entries: %w", err)
		}
	}
	return t, nil
}

type ledgerModel struct {
	ID            string `gorm:"primaryKey"`
	TransactionID string `gorm:"index"`
	MoneyReceived float64
	MoneyGiven    float64
	Entries       string // JSON array of transaction entries
	Date          int64  `gorm:"index"`
}

func (ledgerModel) TableName() string { return "ledger_entries" }

func ledgerToModel(e *domain.LedgerEntry) (*ledgerModel, error) {
	entries, err := json.Marshal(e.Entries)
	if err != nil {
		return nil, fmt.Errorf("encoding entries: %w", err)
	}
	return &ledgerModel{
		ID:            e.ID,
		TransactionID: e.TransactionID,
		MoneyReceived: e.MoneyReceived,
		MoneyGiven:    e.MoneyGiven,
		Entries:       string(entries),
		Date:          e.Date,
	}, nil
}

func (m *ledgerModel) toDomain() (*domain.LedgerEntry, error) {
	e := &domain.LedgerEntry{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		MoneyReceived: m.MoneyReceived,
		MoneyGiven:    m.MoneyGiven,
		Date:          m.Date,
	}
	if m.Entries != "" {
		if err := json.Unmarshal([]byte(m.Entries), &e.Entries); err != nil {
			return nil, fmt.Errorf("decoding entries: %w", err)
		}
	}
	return e, nil
}

type stockModel struct {
	StockID string `gorm:"primaryKey;column:stock_id"`
	Metal   string
	Weight  float64
	Touch   float64
	Sold    bool
}

func (stockModel) TableName() string { return "stock_items" }

func stockToModel(s *domain.StockItem) *stockModel {
	return &stockModel{
		StockID: s.StockID,
		Metal:   string(s.Metal),
		Weight:  s.Weight,
		Touch:   s.Touch,
		Sold:    s.Sold,
	}
}

func (m *stockModel) toDomain() *domain.StockItem {
	return &domain.StockItem{
		StockID: m.StockID,
		Metal:   domain.MetalKind(m.Metal),
		Weight:  m.Weight,
		Touch:   m.Touch,
		Sold:    m.Sold,
	}
}

// inventoryModel is a singleton row, always id 1.
type inventoryModel struct {
	ID         int `gorm:"primaryKey"`
	Gold       float64
	Silver     float64
	FineGold   float64
	FineSilver float64
	Cash       float64
}

func (inventoryModel) TableName() string { return "base_inventory" }
