package storage_test

import (
	"errors"
	"testing"

	"github.com/atelierbook/atelier-backend/internal/storage"
)

func TestMemoryStore_ClientUniqueness(t *testing.T) {
	store := storage.NewMemoryStore()

	if _, err := store.CreateClient("Вася"); err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if _, err := store.CreateClient("вася"); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("duplicate name err = %v, want ErrDuplicate", err)
	}

	// Lookup is case-insensitive
	client, err := store.GetClientByName("ВАСЯ")
	if err != nil {
		t.Fatalf("GetClientByName: %v", err)
	}
	if client.Name != "Вася" {
		t.Errorf("stored name = %q, want original casing", client.Name)
	}

	if _, err := store.GetClientByName("петя"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing client err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_ProductUniquePerClient(t *testing.T) {
	store := storage.NewMemoryStore()

	vasya, _ := store.CreateClient("вася")
	anya, _ := store.CreateClient("аня")

	if _, err := store.CreateProduct(vasya.ID, "куртка"); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if _, err := store.CreateProduct(vasya.ID, "Куртка"); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("same client duplicate err = %v, want ErrDuplicate", err)
	}
	// The same product name under another client is fine
	if _, err := store.CreateProduct(anya.ID, "куртка"); err != nil {
		t.Errorf("other client same name: %v", err)
	}

	if _, err := store.CreateProduct("no-such-client", "пальто"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing client err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_ProductLookupIncludesClient(t *testing.T) {
	store := storage.NewMemoryStore()

	vasya, _ := store.CreateClient("вася")
	if _, err := store.CreateProduct(vasya.ID, "куртка"); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	product, err := store.GetProductByName("КУРТКА")
	if err != nil {
		t.Fatalf("GetProductByName: %v", err)
	}
	if product.Client == nil || product.Client.Name != "вася" {
		t.Errorf("owning client not attached: %+v", product.Client)
	}
}

func TestMemoryStore_ClientListNewestFirst(t *testing.T) {
	store := storage.NewMemoryStore()

	store.CreateClient("первый")
	store.CreateClient("второй")
	store.CreateClient("третий")

	clients, err := store.GetAllClients()
	if err != nil {
		t.Fatalf("GetAllClients: %v", err)
	}
	if len(clients) != 3 {
		t.Fatalf("got %d clients", len(clients))
	}
	if clients[0].Name != "третий" || clients[2].Name != "первый" {
		t.Errorf("order = [%s %s %s], want newest first",
			clients[0].Name, clients[1].Name, clients[2].Name)
	}
}

func TestMemoryStore_DeleteClientCascades(t *testing.T) {
	store := storage.NewMemoryStore()

	vasya, _ := store.CreateClient("вася")
	product, _ := store.CreateProduct(vasya.ID, "куртка")
	if _, err := store.CreateMeasurement(product.ID, 1, `{"талия":"90"}`); err != nil {
		t.Fatalf("CreateMeasurement: %v", err)
	}

	if err := store.DeleteClient(vasya.ID); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}

	if _, err := store.GetProduct(product.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("product survived the cascade: err = %v", err)
	}
	measurements, _ := store.GetAllMeasurements()
	if len(measurements) != 0 {
		t.Errorf("measurements survived the cascade: %d left", len(measurements))
	}

	if err := store.DeleteClient(vasya.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_MeasurementVersions(t *testing.T) {
	store := storage.NewMemoryStore()

	vasya, _ := store.CreateClient("вася")
	product, _ := store.CreateProduct(vasya.ID, "куртка")

	if _, err := store.CreateMeasurement(product.ID, 1, `{"талия":"90"}`); err != nil {
		t.Fatalf("CreateMeasurement v1: %v", err)
	}
	if _, err := store.CreateMeasurement(product.ID, 2, `{"талия":"91"}`); err != nil {
		t.Fatalf("CreateMeasurement v2: %v", err)
	}
	// A version clash is a duplicate
	if _, err := store.CreateMeasurement(product.ID, 2, `{"талия":"92"}`); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("version clash err = %v, want ErrDuplicate", err)
	}

	count, err := store.CountMeasurementsByProduct(product.ID)
	if err != nil {
		t.Fatalf("CountMeasurementsByProduct: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	measurements, err := store.GetMeasurementsByProduct(product.ID)
	if err != nil {
		t.Fatalf("GetMeasurementsByProduct: %v", err)
	}
	if len(measurements) != 2 || measurements[0].Version != 1 || measurements[1].Version != 2 {
		t.Errorf("measurements not ordered by version: %+v", measurements)
	}
}

func TestMemoryStore_DeleteProductCascades(t *testing.T) {
	store := storage.NewMemoryStore()

	vasya, _ := store.CreateClient("вася")
	product, _ := store.CreateProduct(vasya.ID, "куртка")
	store.CreateMeasurement(product.ID, 1, `{"талия":"90"}`)

	if err := store.DeleteProduct(product.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	measurements, _ := store.GetAllMeasurements()
	if len(measurements) != 0 {
		t.Errorf("measurements survived the cascade: %d left", len(measurements))
	}

	// The client stays
	if _, err := store.GetClient(vasya.ID); err != nil {
		t.Errorf("client should survive product deletion: %v", err)
	}
}
