package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents a garment made for a client.
// The name is unique per client, not globally.
type Product struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"uniqueIndex:idx_product_client_name;not null"`
	ClientID  string    `json:"clientId" gorm:"uniqueIndex:idx_product_client_name;size:36;not null"`
	CreatedAt time.Time `json:"createdAt"`

	Client       *Client       `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Measurements []Measurement `json:"measurements,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate hook to auto-generate the ID and normalize the name
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Name = strings.TrimSpace(p.Name)
	return nil
}

// ProductWithCount is the API shape for product listings
type ProductWithCount struct {
	Product
	MeasurementCount int64 `json:"measurementCount"`
}
