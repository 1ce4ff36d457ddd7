package models

import (
	"time"

	"gorm.io/datatypes"
)

// StoredResult is one slot of the persisted key-value result store.
type StoredResult struct {
	Key       string         `gorm:"primaryKey;size:191" json:"key"`
	Value     datatypes.JSON `json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}
