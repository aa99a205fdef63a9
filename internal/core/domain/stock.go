package domain

import "github.com/google/uuid"

// StockItem is a physical lot of impure metal held by the merchant.
// Created on purchase, flagged sold when a sell entry consumes it. A
// stock id, once allocated, is never reused: sell entries reference it by
// foreign key across devices.
type StockItem struct {
	StockID string    `json:"stock_id"`
	Metal   MetalKind `json:"metal"`
	Weight  float64   `json:"weight"`
	Touch   float64   `json:"touch"`
	Sold    bool      `json:"sold"`
}

// NewStockID allocates a fresh, never-reused stock id.
func NewStockID() string {
	return "stk_" + uuid.NewString()
}
