package storage

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atelierbook/atelier-backend/internal/models"
)

// MemoryStore holds all records in process memory. Used for tests and
// local development (USE_MEMORY_STORE=true); not for production.
type MemoryStore struct {
	clients      map[string]*models.Client
	products     map[string]*models.Product
	measurements map[string]*models.Measurement

	// Mutexes for thread safety
	clientMu      sync.RWMutex
	productMu     sync.RWMutex
	measurementMu sync.RWMutex

	// Insertion counters to keep "newest first" stable when
	// timestamps collide
	seq     map[string]int64
	nextSeq int64
	seqMu   sync.Mutex
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients:      make(map[string]*models.Client),
		products:     make(map[string]*models.Product),
		measurements: make(map[string]*models.Measurement),
		seq:          make(map[string]int64),
	}
}

func (m *MemoryStore) stamp(id string) {
	m.seqMu.Lock()
	defer m.seqMu.Unlock()
	m.nextSeq++
	m.seq[id] = m.nextSeq
}

func (m *MemoryStore) newerFirst(aID, bID string) bool {
	m.seqMu.Lock()
	defer m.seqMu.Unlock()
	return m.seq[aID] > m.seq[bID]
}

// Client operations

func (m *MemoryStore) CreateClient(name string) (*models.Client, error) {
	m.clientMu.Lock()
	defer m.clientMu.Unlock()

	name = strings.TrimSpace(name)
	for _, c := range m.clients {
		if strings.EqualFold(c.Name, name) {
			return nil, ErrDuplicate
		}
	}

	client := &models.Client{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	m.clients[client.ID] = client
	m.stamp(client.ID)

	out := *client
	return &out, nil
}

func (m *MemoryStore) GetClient(id string) (*models.Client, error) {
	m.clientMu.RLock()
	defer m.clientMu.RUnlock()

	client, exists := m.clients[id]
	if !exists {
		return nil, ErrNotFound
	}
	out := *client
	return &out, nil
}

func (m *MemoryStore) GetClientByName(name string) (*models.Client, error) {
	m.clientMu.RLock()
	defer m.clientMu.RUnlock()

	name = strings.TrimSpace(name)
	for _, c := range m.clients {
		if strings.EqualFold(c.Name, name) {
			out := *c
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetAllClients() ([]*models.Client, error) {
	m.clientMu.RLock()
	defer m.clientMu.RUnlock()

	clients := make([]*models.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out := *c
		clients = append(clients, &out)
	}
	sort.Slice(clients, func(i, j int) bool {
		return m.newerFirst(clients[i].ID, clients[j].ID)
	})
	return clients, nil
}

func (m *MemoryStore) CountProductsByClient(clientID string) (int64, error) {
	m.productMu.RLock()
	defer m.productMu.RUnlock()

	var count int64
	for _, p := range m.products {
		if p.ClientID == clientID {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) DeleteClient(id string) error {
	m.clientMu.Lock()
	if _, exists := m.clients[id]; !exists {
		m.clientMu.Unlock()
		return ErrNotFound
	}
	delete(m.clients, id)
	m.clientMu.Unlock()

	// Cascade: products of the client and their measurements.
	// clientMu is released first; withClient takes productMu before
	// clientMu, so holding both here in the other order would deadlock.
	m.productMu.Lock()
	defer m.productMu.Unlock()
	m.measurementMu.Lock()
	defer m.measurementMu.Unlock()

	for pid, p := range m.products {
		if p.ClientID != id {
			continue
		}
		delete(m.products, pid)
		for mid, ms := range m.measurements {
			if ms.ProductID == pid {
				delete(m.measurements, mid)
			}
		}
	}
	return nil
}

// Product operations

func (m *MemoryStore) CreateProduct(clientID, name string) (*models.Product, error) {
	m.clientMu.RLock()
	_, exists := m.clients[clientID]
	m.clientMu.RUnlock()
	if !exists {
		return nil, ErrNotFound
	}

	m.productMu.Lock()
	defer m.productMu.Unlock()

	name = strings.TrimSpace(name)
	for _, p := range m.products {
		if p.ClientID == clientID && strings.EqualFold(p.Name, name) {
			return nil, ErrDuplicate
		}
	}

	product := &models.Product{
		ID:        uuid.NewString(),
		Name:      name,
		ClientID:  clientID,
		CreatedAt: time.Now(),
	}
	m.products[product.ID] = product
	m.stamp(product.ID)

	out := *product
	return &out, nil
}

func (m *MemoryStore) GetProduct(id string) (*models.Product, error) {
	m.productMu.RLock()
	defer m.productMu.RUnlock()

	product, exists := m.products[id]
	if !exists {
		return nil, ErrNotFound
	}
	return m.withClient(product), nil
}

func (m *MemoryStore) GetProductByName(name string) (*models.Product, error) {
	m.productMu.RLock()
	defer m.productMu.RUnlock()

	name = strings.TrimSpace(name)
	for _, p := range m.products {
		if strings.EqualFold(p.Name, name) {
			return m.withClient(p), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetProductsByClient(clientID string) ([]*models.Product, error) {
	m.productMu.RLock()
	defer m.productMu.RUnlock()

	products := make([]*models.Product, 0)
	for _, p := range m.products {
		if p.ClientID == clientID {
			products = append(products, m.withClient(p))
		}
	}
	sort.Slice(products, func(i, j int) bool {
		return m.newerFirst(products[i].ID, products[j].ID)
	})
	return products, nil
}

func (m *MemoryStore) GetAllProducts() ([]*models.Product, error) {
	m.productMu.RLock()
	defer m.productMu.RUnlock()

	products := make([]*models.Product, 0, len(m.products))
	for _, p := range m.products {
		products = append(products, m.withClient(p))
	}
	sort.Slice(products, func(i, j int) bool {
		return m.newerFirst(products[i].ID, products[j].ID)
	})
	return products, nil
}

// withClient attaches a copy of the owning client. Callers must hold
// at least a read lock on productMu.
func (m *MemoryStore) withClient(p *models.Product) *models.Product {
	out := *p
	m.clientMu.RLock()
	if c, exists := m.clients[p.ClientID]; exists {
		cc := *c
		out.Client = &cc
	}
	m.clientMu.RUnlock()
	return &out
}

func (m *MemoryStore) CountMeasurementsByProduct(productID string) (int64, error) {
	m.measurementMu.RLock()
	defer m.measurementMu.RUnlock()

	var count int64
	for _, ms := range m.measurements {
		if ms.ProductID == productID {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) DeleteProduct(id string) error {
	m.productMu.Lock()
	defer m.productMu.Unlock()

	if _, exists := m.products[id]; !exists {
		return ErrNotFound
	}
	delete(m.products, id)

	m.measurementMu.Lock()
	defer m.measurementMu.Unlock()
	for mid, ms := range m.measurements {
		if ms.ProductID == id {
			delete(m.measurements, mid)
		}
	}
	return nil
}

// Measurement operations

func (m *MemoryStore) CreateMeasurement(productID string, version int, data string) (*models.Measurement, error) {
	m.productMu.RLock()
	_, exists := m.products[productID]
	m.productMu.RUnlock()
	if !exists {
		return nil, ErrNotFound
	}

	m.measurementMu.Lock()
	defer m.measurementMu.Unlock()

	for _, ms := range m.measurements {
		if ms.ProductID == productID && ms.Version == version {
			return nil, ErrDuplicate
		}
	}

	measurement := &models.Measurement{
		ID:        uuid.NewString(),
		Version:   version,
		Date:      time.Now(),
		Data:      data,
		ProductID: productID,
	}
	m.measurements[measurement.ID] = measurement
	m.stamp(measurement.ID)

	out := *measurement
	return &out, nil
}

func (m *MemoryStore) GetMeasurementsByProduct(productID string) ([]*models.Measurement, error) {
	m.measurementMu.RLock()
	defer m.measurementMu.RUnlock()

	measurements := make([]*models.Measurement, 0)
	for _, ms := range m.measurements {
		if ms.ProductID == productID {
			out := *ms
			measurements = append(measurements, &out)
		}
	}
	sort.Slice(measurements, func(i, j int) bool {
		return measurements[i].Version < measurements[j].Version
	})
	return measurements, nil
}

func (m *MemoryStore) GetAllMeasurements() ([]*models.Measurement, error) {
	m.measurementMu.RLock()
	defer m.measurementMu.RUnlock()

	measurements := make([]*models.Measurement, 0, len(m.measurements))
	for _, ms := range m.measurements {
		out := *ms
		measurements = append(measurements, &out)
	}
	sort.Slice(measurements, func(i, j int) bool {
		if measurements[i].ProductID != measurements[j].ProductID {
			return measurements[i].ProductID < measurements[j].ProductID
		}
		return measurements[i].Version < measurements[j].Version
	})
	return measurements, nil
}

func (m *MemoryStore) DeleteMeasurement(id string) error {
	m.measurementMu.Lock()
	defer m.measurementMu.Unlock()

	if _, exists := m.measurements[id]; !exists {
		return ErrNotFound
	}
	delete(m.measurements, id)
	return nil
}
