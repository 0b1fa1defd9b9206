package model

import (
	"encoding/json"
	"time"
)

// Operation types for journal entries
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpImport = "import"
)

// Collection names used in journal entries
const (
	CollectionInventory = "inventory"
	CollectionOrders    = "orders"
)

// JournalEntry records one mutation applied to the data source.
type JournalEntry struct {
	Op         string          `json:"op"`
	Collection string          `json:"collection"`
	RecordID   string          `json:"id"`
	Actor      string          `json:"actor"`
	At         time.Time       `json:"at"`
	Data       json.RawMessage `json:"data,omitempty"` // record state after the operation
}
