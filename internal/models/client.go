package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client represents a customer in the tailor's notebook
type Client struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"createdAt"`

	// Deleting a client removes their products (and measurements) with them
	Products []Product `json:"products,omitempty" gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate hook to auto-generate the ID and normalize the name
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Name = strings.TrimSpace(c.Name)
	return nil
}

// ClientWithCount is the API shape for client listings
type ClientWithCount struct {
	Client
	ProductCount int64 `json:"productCount"`
}
