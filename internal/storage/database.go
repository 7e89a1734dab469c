package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/atelierbook/atelier-backend/internal/models"
)

// DatabaseStore implements Store on top of GORM/PostgreSQL
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given database handle
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// translate maps GORM errors onto the store sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// Client operations

func (d *DatabaseStore) CreateClient(name string) (*models.Client, error) {
	client := &models.Client{Name: name}
	if err := d.db.Create(client).Error; err != nil {
		return nil, translate(err)
	}
	return client, nil
}

func (d *DatabaseStore) GetClient(id string) (*models.Client, error) {
	var client models.Client
	if err := d.db.First(&client, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

func (d *DatabaseStore) GetClientByName(name string) (*models.Client, error) {
	var client models.Client
	err := d.db.Where("LOWER(name) = LOWER(?)", name).First(&client).Error
	if err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

func (d *DatabaseStore) GetAllClients() ([]*models.Client, error) {
	var clients []*models.Client
	if err := d.db.Order("created_at DESC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (d *DatabaseStore) CountProductsByClient(clientID string) (int64, error) {
	var count int64
	err := d.db.Model(&models.Product{}).Where("client_id = ?", clientID).Count(&count).Error
	return count, err
}

func (d *DatabaseStore) DeleteClient(id string) error {
	// The schema declares ON DELETE CASCADE, but AutoMigrate-created
	// constraints have varied across gorm versions, so cascade explicitly.
	return d.db.Transaction(func(tx *gorm.DB) error {
		var products []*models.Product
		if err := tx.Where("client_id = ?", id).Find(&products).Error; err != nil {
			return err
		}
		for _, p := range products {
			if err := tx.Where("product_id = ?", p.ID).Delete(&models.Measurement{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("client_id = ?", id).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Client{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Product operations

func (d *DatabaseStore) CreateProduct(clientID, name string) (*models.Product, error) {
	product := &models.Product{Name: name, ClientID: clientID}
	if err := d.db.Create(product).Error; err != nil {
		return nil, translate(err)
	}
	return product, nil
}

func (d *DatabaseStore) GetProduct(id string) (*models.Product, error) {
	var product models.Product
	if err := d.db.Preload("Client").First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (d *DatabaseStore) GetProductByName(name string) (*models.Product, error) {
	var product models.Product
	err := d.db.Preload("Client").Where("LOWER(name) = LOWER(?)", name).First(&product).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (d *DatabaseStore) GetProductsByClient(clientID string) ([]*models.Product, error) {
	var products []*models.Product
	err := d.db.Preload("Client").Where("client_id = ?", clientID).
		Order("created_at DESC").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (d *DatabaseStore) GetAllProducts() ([]*models.Product, error) {
	var products []*models.Product
	err := d.db.Preload("Client").Order("created_at DESC").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (d *DatabaseStore) CountMeasurementsByProduct(productID string) (int64, error) {
	var count int64
	err := d.db.Model(&models.Measurement{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

func (d *DatabaseStore) DeleteProduct(id string) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Measurement{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Measurement operations

func (d *DatabaseStore) CreateMeasurement(productID string, version int, data string) (*models.Measurement, error) {
	measurement := &models.Measurement{
		Version:   version,
		Data:      data,
		ProductID: productID,
	}
	if err := d.db.Create(measurement).Error; err != nil {
		return nil, translate(err)
	}
	return measurement, nil
}

func (d *DatabaseStore) GetMeasurementsByProduct(productID string) ([]*models.Measurement, error) {
	var measurements []*models.Measurement
	err := d.db.Where("product_id = ?", productID).Order("version ASC").Find(&measurements).Error
	if err != nil {
		return nil, err
	}
	return measurements, nil
}

func (d *DatabaseStore) GetAllMeasurements() ([]*models.Measurement, error) {
	var measurements []*models.Measurement
	err := d.db.Preload("Product").Preload("Product.Client").
		Order("product_id ASC, version ASC").Find(&measurements).Error
	if err != nil {
		return nil, err
	}
	return measurements, nil
}

func (d *DatabaseStore) DeleteMeasurement(id string) error {
	res := d.db.Delete(&models.Measurement{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
