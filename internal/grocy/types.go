package grocy

import (
	"encoding/json"
	"strconv"
)

// ProductCandidate is a simplified product representation used for search
// results and grounding resources.
type ProductCandidate struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	LocationID   *int     `json:"location_id,omitempty"`
	QuIDStock    *int     `json:"qu_id_stock,omitempty"`
	QuIDPurchase *int     `json:"qu_id_purchase,omitempty"`
	StockAmount  *float64 `json:"stock_amount,omitempty"`
}

// Location is a storage location defined in Grocy.
type Location struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// StockItem describes a single purchase to book into stock.
type StockItem struct {
	ProductID      int      `json:"product_id"`
	Amount         float64  `json:"amount"`
	BestBeforeDate string   `json:"best_before_date,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	LocationID     *int     `json:"location_id,omitempty"`
	IdempotencyKey string   `json:"idempotency_key,omitempty"`
}

// ConsumeItem describes a consume or spoil booking for a single product.
type ConsumeItem struct {
	ProductID      int     `json:"product_id"`
	Amount         float64 `json:"amount"`
	Spoiled        bool    `json:"spoiled"`
	LocationID     *int    `json:"location_id,omitempty"`
	IdempotencyKey string  `json:"idempotency_key,omitempty"`
}

// InventoryItem describes an absolute stock correction for a product.
type InventoryItem struct {
	ProductID      int      `json:"product_id"`
	NewAmount      float64  `json:"new_amount"`
	BestBeforeDate string   `json:"best_before_date,omitempty"`
	LocationID     *int     `json:"location_id,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	Note           string   `json:"note,omitempty"`
	IdempotencyKey string   `json:"idempotency_key,omitempty"`
}

// Row is a generic Grocy object row passed through untouched.
type Row = map[string]interface{}

// decodeRows decodes a raw JSON array into generic rows.
func decodeRows(raw json.RawMessage) ([]Row, error) {
	if raw == nil {
		return nil, nil
	}
	var rows []Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// coerceInt converts Grocy's loosely typed numeric fields (numbers or
// numeric strings) to an int.
func coerceInt(v interface{}) (int, bool) {
	switch value := v.(type) {
	case float64:
		return int(value), true
	case int:
		return value, true
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		return int(parsed), true
	default:
		return 0, false
	}
}

// coerceFloat converts Grocy's loosely typed numeric fields to a float64.
func coerceFloat(v interface{}) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
