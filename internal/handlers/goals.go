package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/liwei/stride-api/internal/models"
)

// GetGoals returns the full overview the UI renders from: current goal,
// its recent records, the active/archived partitions and the
// onboarding flag.
func GetGoals(c *fiber.Ctx) error {
	st, err := storeFor(c)
	if err != nil {
		return persistenceError(c, err)
	}

	var currentGoalID *uuid.UUID
	if id := st.CurrentGoalID(); id != uuid.Nil {
		currentGoalID = &id
	}

	return c.JSON(fiber.Map{
		"currentGoal":         st.CurrentGoal(),
		"currentGoalId":       currentGoalID,
		"currentGoalRecords":  st.CurrentGoalRecords(),
		"activeGoals":         st.ActiveGoals(),
		"archivedGoals":       st.ArchivedGoals(),
		"onboardingCompleted": st.OnboardingCompleted(),
	})
}

func CreateGoal(c *fiber.Ctx) error {
	var req models.CreateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}
	if req.TargetAmount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Target amount must be positive",
		})
	}
	if req.Period == models.PeriodCustom {
		if req.StartDate == nil || req.EndDate == nil || !req.EndDate.After(*req.StartDate) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Custom period requires a start date and a later end date",
			})
		}
	}

	if req.Period == "" {
		req.Period = models.PeriodYear
	}
	if req.IncrementValue == 0 {
		req.IncrementValue = 1
	}

	st, err := storeFor(c)
	if err != nil {
		return persistenceError(c, err)
	}

	goal, err := st.AddGoal(models.Goal{
		Name:           req.Name,
		Unit:           req.Unit,
		TargetAmount:   req.TargetAmount,
		Period:         req.Period,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		IncrementValue: req.IncrementValue,
		Status:         req.Status,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		return persistenceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

func UpdateGoal(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}

	var update models.GoalUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	st, err := storeFor(c)
	if err != nil {
		return persistenceError(c, err)
	}

	goal, found, err := st.UpdateGoal(id, update)
	if err != nil {
		return persistenceError(c, err)
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found",
		})
	}
	return c.JSON(goal)
}

func ArchiveGoal(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}

	st, err := storeFor(c)
	if err != nil {
		return persistenceError(c, err)
	}

	goal, found, err := st.ArchiveGoal(id)
	if err != nil {
		return persistenceError(c, err)
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found",
		})
	}

	return c.JSON(fiber.Map{
		"goal":          goal,
		"currentGoalId": st.CurrentGoalID(),
	})
}

func RestoreFromArchive(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}

	st, err := storeFor(c)
	if err != nil {
		return persistenceError(c, err)
	}

	found, err := st.RestoreFromArchive(id)
	if err != nil {
		return persistenceError(c, err)
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found",
		})
	}
	return c.JSON(st.CurrentGoal())
}

// DeleteGoal hard-deletes a goal and its records and returns the
// removed snapshot so the client can offer an undo.
func DeleteGoal(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}

	st, err := storeFor(c)
	if err != nil {
		return persistenceError(c, err)
	}

	goal, records, found, err := st.DeleteGoal(id)
	if err != nil {
		return persistenceError(c, err)
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found",
		})
	}

	if records == nil {
		records = []models.Record{}
	}
	return c.JSON(fiber.Map{
		"goal":    goal,
		"records": records,
	})
}

// RestoreGoal re-inserts a deleted goal and its records (undo).
func RestoreGoal(c *fiber.Ctx) error {
	var req models.RestoreGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	st, err := storeFor(c)
	if err != nil {
		return persistenceError(c, err)
	}

	if !st.RestoreGoal(req.Goal, req.Records) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to restore goal",
		})
	}
	return c.JSON(st.CurrentGoal())
}

func GetGoalStats(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}

	st, err := storeFor(c)
	if err != nil {
		return persistenceError(c, err)
	}

	stats, found := st.GoalStats(id)
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found",
		})
	}
	return c.JSON(stats)
}

// GetTodayProgress returns the summed record values for a goal on
// today's calendar date.
func GetTodayProgress(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}

	st, err := storeFor(c)
	if err != nil {
		return persistenceError(c, err)
	}
	return c.JSON(fiber.Map{"today": st.TodayRecords(id)})
}
