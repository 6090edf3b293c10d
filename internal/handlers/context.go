package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liwei/stride-api/internal/logger"
	"github.com/liwei/stride-api/internal/middleware"
	"github.com/liwei/stride-api/internal/store"
)

var (
	backend store.Backend
	log     *logger.Logger
)

// Init wires the persistence backend and logger used by all handlers.
func Init(b store.Backend, l *logger.Logger) {
	backend = b
	log = l
}

// storeFor builds and loads a store bound to the request's scope. In
// local driver mode there is no auth and the scope is uuid.Nil, which
// the local backend ignores.
func storeFor(c *fiber.Ctx) (*store.Store, error) {
	st := store.New(backend, middleware.GetUserID(c), log)
	if err := st.Load(); err != nil {
		return nil, err
	}
	return st, nil
}

func persistenceError(c *fiber.Ctx, err error) error {
	log.Error("persistence failure", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Storage operation failed",
	})
}
