package rest

import (
	"github.com/gofiber/fiber/v2"
	domainInstance "github.com/zapedidos/zapedidos/domains/instance"
	"github.com/zapedidos/zapedidos/pkg/utils"
)

type Instance struct {
	Service domainInstance.IInstanceUsecase
}

func InitRestInstance(app fiber.Router, service domainInstance.IInstanceUsecase) Instance {
	rest := Instance{Service: service}
	app.Get("/instances", rest.ListInstances)
	app.Post("/instances", rest.CreateInstance)
	app.Get("/instances/:id", rest.GetInstance)
	app.Put("/instances/:id", rest.UpdateInstance)
	return rest
}

func (h *Instance) ListInstances(c *fiber.Ctx) error {
	instances, err := h.Service.List(c.UserContext(), c.Query("company_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Instances fetched",
		Results: instances,
	})
}

func (h *Instance) CreateInstance(c *fiber.Ctx) error {
	var req domainInstance.CreateInstanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	inst, err := h.Service.Create(c.UserContext(), req)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Instance created",
		Results: inst,
	})
}

func (h *Instance) GetInstance(c *fiber.Ctx) error {
	inst, err := h.Service.GetByID(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Instance fetched",
		Results: inst,
	})
}

func (h *Instance) UpdateInstance(c *fiber.Ctx) error {
	var req domainInstance.UpdateInstanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	inst, err := h.Service.Update(c.UserContext(), c.Params("id"), req)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Instance updated",
		Results: inst,
	})
}
