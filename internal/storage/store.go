package storage

import (
	"errors"

	"github.com/atelierbook/atelier-backend/internal/models"
)

// ErrNotFound is returned when a looked-up record does not exist.
// Callers should use errors.Is to distinguish this expected case from
// real failures.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a create violates a name-uniqueness
// constraint (client name globally, product name per client). Creating
// a duplicate is an expected outcome, not a fault.
var ErrDuplicate = errors.New("record already exists")

// Store defines the interface for storage operations
type Store interface {
	// Client operations
	CreateClient(name string) (*models.Client, error)
	GetClient(id string) (*models.Client, error)
	GetClientByName(name string) (*models.Client, error) // case-insensitive
	GetAllClients() ([]*models.Client, error)            // newest first
	CountProductsByClient(clientID string) (int64, error)
	DeleteClient(id string) error // cascades to products and measurements

	// Product operations
	CreateProduct(clientID, name string) (*models.Product, error)
	GetProduct(id string) (*models.Product, error)
	GetProductByName(name string) (*models.Product, error) // case-insensitive, with owning client
	GetProductsByClient(clientID string) ([]*models.Product, error) // newest first
	GetAllProducts() ([]*models.Product, error)                     // newest first, with owning client
	CountMeasurementsByProduct(productID string) (int64, error)
	DeleteProduct(id string) error // cascades to measurements

	// Measurement operations
	CreateMeasurement(productID string, version int, data string) (*models.Measurement, error)
	GetMeasurementsByProduct(productID string) ([]*models.Measurement, error) // version ascending
	GetAllMeasurements() ([]*models.Measurement, error)                       // by product, then version
	DeleteMeasurement(id string) error
}
