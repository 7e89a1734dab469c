package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/atelierbook/atelier-backend/internal/models"
	"github.com/atelierbook/atelier-backend/internal/storage"
)

// ClientHandler handles client CRUD requests
type ClientHandler struct {
	store storage.Store
}

// NewClientHandler creates a new client handler
func NewClientHandler(store storage.Store) *ClientHandler {
	return &ClientHandler{store: store}
}

// GetClients returns all clients, newest first, with product counts
func (h *ClientHandler) GetClients(c *fiber.Ctx) error {
	clients, err := h.store.GetAllClients()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	result := make([]models.ClientWithCount, 0, len(clients))
	for _, client := range clients {
		count, err := h.store.CountProductsByClient(client.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		result = append(result, models.ClientWithCount{Client: *client, ProductCount: count})
	}
	return c.JSON(result)
}

// CreateClient creates a client from a {"name": ...} payload
func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil || strings.TrimSpace(body.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Имя клиента обязательно",
		})
	}

	client, err := h.store.CreateClient(strings.TrimSpace(body.Name))
	if errors.Is(err, storage.ErrDuplicate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Клиент с таким именем уже существует",
		})
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

// DeleteClient deletes a client by ?id=, cascading to products and
// measurements
func (h *ClientHandler) DeleteClient(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID клиента обязательно",
		})
	}

	err := h.store.DeleteClient(id)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Клиент не найден",
		})
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true})
}
