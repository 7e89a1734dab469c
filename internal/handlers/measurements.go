package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/atelierbook/atelier-backend/internal/models"
	"github.com/atelierbook/atelier-backend/internal/storage"
)

// MeasurementHandler handles measurement CRUD requests
type MeasurementHandler struct {
	store storage.Store
}

// NewMeasurementHandler creates a new measurement handler
func NewMeasurementHandler(store storage.Store) *MeasurementHandler {
	return &MeasurementHandler{store: store}
}

// measurementResponse is a measurement with its data deserialized for
// the API; the shadowed Data field replaces the stored opaque text
type measurementResponse struct {
	models.Measurement
	Data map[string]string `json:"data"`
}

func toResponse(m *models.Measurement) measurementResponse {
	data, err := m.DataMap()
	if err != nil {
		data = map[string]string{}
	}
	return measurementResponse{Measurement: *m, Data: data}
}

// GetMeasurements returns measurements ordered by product and version;
// ?productId= narrows to one product
func (h *MeasurementHandler) GetMeasurements(c *fiber.Ctx) error {
	productID := c.Query("productId")

	var measurements []*models.Measurement
	var err error
	if productID != "" {
		measurements, err = h.store.GetMeasurementsByProduct(productID)
	} else {
		measurements, err = h.store.GetAllMeasurements()
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	result := make([]measurementResponse, 0, len(measurements))
	for _, m := range measurements {
		result = append(result, toResponse(m))
	}
	return c.JSON(result)
}

// CreateMeasurement creates a measurement from a {"productId", "data"}
// payload; the version is assigned as count+1 for the product
func (h *MeasurementHandler) CreateMeasurement(c *fiber.Ctx) error {
	var body struct {
		ProductID string            `json:"productId"`
		Data      map[string]string `json:"data"`
	}
	if err := c.BodyParser(&body); err != nil || body.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID изделия обязательно",
		})
	}
	if len(body.Data) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Данные замера обязательны",
		})
	}

	count, err := h.store.CountMeasurementsByProduct(body.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	raw, err := json.Marshal(body.Data)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	measurement, err := h.store.CreateMeasurement(body.ProductID, int(count)+1, string(raw))
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Изделие не найдено",
		})
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if product, err := h.store.GetProduct(measurement.ProductID); err == nil {
		measurement.Product = product
	}
	return c.Status(fiber.StatusCreated).JSON(toResponse(measurement))
}

// DeleteMeasurement deletes a measurement by ?id=
func (h *MeasurementHandler) DeleteMeasurement(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID замера обязательно",
		})
	}

	err := h.store.DeleteMeasurement(id)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Замер не найден",
		})
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true})
}
