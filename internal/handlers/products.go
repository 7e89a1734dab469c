package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/atelierbook/atelier-backend/internal/models"
	"github.com/atelierbook/atelier-backend/internal/storage"
)

// ProductHandler handles product CRUD requests
type ProductHandler struct {
	store storage.Store
}

// NewProductHandler creates a new product handler
func NewProductHandler(store storage.Store) *ProductHandler {
	return &ProductHandler{store: store}
}

// GetProducts returns products with their owning client and measurement
// counts; ?clientId= narrows to one client
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	clientID := c.Query("clientId")

	var products []*models.Product
	var err error
	if clientID != "" {
		products, err = h.store.GetProductsByClient(clientID)
	} else {
		products, err = h.store.GetAllProducts()
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	result := make([]models.ProductWithCount, 0, len(products))
	for _, product := range products {
		count, err := h.store.CountMeasurementsByProduct(product.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		result = append(result, models.ProductWithCount{Product: *product, MeasurementCount: count})
	}
	return c.JSON(result)
}

// CreateProduct creates a product from a {"name", "clientId"} payload
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var body struct {
		Name     string `json:"name"`
		ClientID string `json:"clientId"`
	}
	if err := c.BodyParser(&body); err != nil || strings.TrimSpace(body.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Название изделия обязательно",
		})
	}
	if body.ClientID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID клиента обязательно",
		})
	}

	product, err := h.store.CreateProduct(body.ClientID, strings.TrimSpace(body.Name))
	if errors.Is(err, storage.ErrDuplicate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Такое изделие уже есть у этого клиента",
		})
	}
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Клиент не найден",
		})
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	// Echo the owning client the way the UI expects it
	if full, err := h.store.GetProduct(product.ID); err == nil {
		product = full
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// DeleteProduct deletes a product by ?id=, cascading to measurements
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID изделия обязательно",
		})
	}

	err := h.store.DeleteProduct(id)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Изделие не найдено",
		})
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true})
}
