package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zapedidos/zapedidos/core/config"
	"github.com/zapedidos/zapedidos/pkg/msgworker"
	"github.com/zapedidos/zapedidos/pkg/utils"
)

type Health struct {
	Pool *msgworker.Pool
}

func InitRestHealth(app fiber.Router, pool *msgworker.Pool) Health {
	rest := Health{Pool: pool}
	app.Get("/health", rest.Check)
	return rest
}

func (h *Health) Check(c *fiber.Ctx) error {
	results := fiber.Map{
		"version": config.Global.App.Version,
	}
	if h.Pool != nil {
		results["response_workers"] = h.Pool.Stats()
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "OK",
		Results: results,
	})
}
