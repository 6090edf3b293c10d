package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// CompleteOnboarding marks the first-run flow as finished.
func CompleteOnboarding(c *fiber.Ctx) error {
	st, err := storeFor(c)
	if err != nil {
		return persistenceError(c, err)
	}
	if err := st.CompleteOnboarding(); err != nil {
		return persistenceError(c, err)
	}
	return c.JSON(fiber.Map{"onboardingCompleted": true})
}

// ResetData clears all goals, records and the onboarding flag for the
// request's scope.
func ResetData(c *fiber.Ctx) error {
	st, err := storeFor(c)
	if err != nil {
		return persistenceError(c, err)
	}
	if err := st.ResetData(); err != nil {
		return persistenceError(c, err)
	}
	return c.JSON(fiber.Map{"reset": true})
}

// Backup returns the raw serialized blobs as a single JSON snapshot.
func Backup(c *fiber.Ctx) error {
	st, err := storeFor(c)
	if err != nil {
		return persistenceError(c, err)
	}
	snap, err := st.Backup()
	if err != nil {
		return persistenceError(c, err)
	}
	return c.JSON(snap)
}
