package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Measurement is one versioned set of body measurements for a product.
// Versions are 1-based and increase monotonically per product.
//
// Data holds the label->value mapping serialized as a JSON string; the
// database treats it as opaque text and callers go through DataMap/SetData.
type Measurement struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Version   int       `json:"version" gorm:"uniqueIndex:idx_measurement_product_version;not null"`
	Date      time.Time `json:"date"`
	Data      string    `json:"data" gorm:"not null"`
	ProductID string    `json:"productId" gorm:"uniqueIndex:idx_measurement_product_version;size:36;not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// BeforeCreate hook to auto-generate the ID and stamp the date
func (m *Measurement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Date.IsZero() {
		m.Date = time.Now()
	}
	return nil
}

// DataMap deserializes the stored measurement data
func (m *Measurement) DataMap() (map[string]string, error) {
	data := make(map[string]string)
	if err := json.Unmarshal([]byte(m.Data), &data); err != nil {
		return nil, err
	}
	return data, nil
}

// SetData serializes the measurement data for storage
func (m *Measurement) SetData(data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.Data = string(raw)
	return nil
}
