package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/liwei/stride-api/internal/models"
)

// AddRecord logs a progress increment against a goal. A zero or absent
// value falls back to the goal's configured increment ("record one").
func AddRecord(c *fiber.Ctx) error {
	goalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}

	var req models.AddRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	st, err := storeFor(c)
	if err != nil {
		return persistenceError(c, err)
	}

	value := req.Value
	if value == 0 {
		for _, g := range st.Goals() {
			if g.ID == goalID {
				value = g.IncrementValue
				break
			}
		}
	}

	record, err := st.AddRecord(goalID, value)
	if err != nil {
		return persistenceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"record": record,
		"today":  st.TodayRecords(goalID),
	})
}

func GetRecords(c *fiber.Ctx) error {
	st, err := storeFor(c)
	if err != nil {
		return persistenceError(c, err)
	}

	records := st.Records()
	if records == nil {
		records = []models.Record{}
	}
	return c.JSON(records)
}
